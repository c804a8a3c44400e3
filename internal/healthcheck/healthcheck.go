package healthcheck

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/l3aro/go-decision-tree/internal/config"
	"github.com/l3aro/go-decision-tree/pkg/generate"
	"github.com/l3aro/go-decision-tree/pkg/render"
)

// Component statuses.
const (
	StatusReady   = "ready"
	StatusWarning = "warning"
	StatusError   = "error"
)

// probeSource is parsed and rendered to exercise the whole pipeline.
const probeSource = `if ready:
    return "ok"
else:
    report()
`

// ComponentStatus is the health of a single component.
type ComponentStatus struct {
	Name   string // "config", "parser", "renderer" or "output"
	Detail string // what was checked, e.g. the output directory
	Status string // "ready", "warning" or "error"
	Error  string
}

// HealthCheckResult contains the full health check output for display.
type HealthCheckResult struct {
	SavedPath      string
	SavedScope     string // "global" or "project"
	EffectivePath  string
	EffectiveScope string // "global" or "project"
	Components     []ComponentStatus
}

// OK reports whether no component is in error.
func (r *HealthCheckResult) OK() bool {
	for _, c := range r.Components {
		if c.Status == StatusError {
			return false
		}
	}
	return true
}

// Check performs a health check against the given config.
// savedPath is where the user saved config (may be empty outside init).
// effectivePath is the config file actually in use (considering priority).
func Check(ctx context.Context, cfg *config.Config, savedPath string, effectivePath string) (*HealthCheckResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	result := &HealthCheckResult{
		SavedPath:      savedPath,
		SavedScope:     scopeFromPath(savedPath),
		EffectivePath:  effectivePath,
		EffectiveScope: scopeFromPath(effectivePath),
	}

	result.Components = append(result.Components,
		checkConfig(cfg),
		checkParser(ctx),
		checkRenderer(ctx, cfg),
		checkOutputDir(cfg.OutputDir),
	)

	return result, nil
}

// scopeFromPath determines "global" or "project" scope from a config file path.
// Returns empty string if path is empty.
func scopeFromPath(path string) string {
	if path == "" {
		return ""
	}

	home, err := os.UserHomeDir()
	if err == nil {
		globalDir := filepath.Join(home, config.DirName)
		if strings.HasPrefix(path, globalDir) {
			return "global"
		}
	}

	return "project"
}

func checkConfig(cfg *config.Config) ComponentStatus {
	status := ComponentStatus{Name: "config", Detail: "format " + cfg.Format}
	if err := cfg.Validate(); err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}
	status.Status = StatusReady
	return status
}

// checkParser parses a small program and checks it yields a decision tree.
func checkParser(ctx context.Context) ComponentStatus {
	status := ComponentStatus{Name: "parser", Detail: "tree-sitter python"}

	g, err := generate.BuildSource(ctx, []byte(probeSource))
	if err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}
	if g.Len() != 3 {
		status.Status = StatusError
		status.Error = fmt.Sprintf("probe produced %d nodes, want 3", g.Len())
		return status
	}

	status.Status = StatusReady
	return status
}

// checkRenderer renders the probe graph in the configured format, in memory.
func checkRenderer(ctx context.Context, cfg *config.Config) ComponentStatus {
	opts := cfg.RenderOptions()
	status := ComponentStatus{Name: "renderer", Detail: string(opts.Format)}

	g, err := generate.BuildSource(ctx, []byte(probeSource))
	if err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}

	var buf bytes.Buffer
	if err := render.Render(ctx, g, opts, &buf); err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}
	if buf.Len() == 0 {
		status.Status = StatusError
		status.Error = "renderer produced no output"
		return status
	}

	status.Status = StatusReady
	return status
}

// checkOutputDir verifies the batch output directory can be written. A
// directory that does not exist yet is only a warning; it is created on the
// first batch run.
func checkOutputDir(dir string) ComponentStatus {
	status := ComponentStatus{Name: "output", Detail: dir}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		status.Status = StatusWarning
		status.Error = "directory does not exist yet"
		return status
	}
	if err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}
	if !info.IsDir() {
		status.Status = StatusError
		status.Error = "not a directory"
		return status
	}

	f, err := os.CreateTemp(dir, ".dtree-probe-*")
	if err != nil {
		status.Status = StatusError
		status.Error = fmt.Sprintf("not writable: %v", err)
		return status
	}
	name := f.Name()
	f.Close()
	os.Remove(name)

	status.Status = StatusReady
	return status
}
