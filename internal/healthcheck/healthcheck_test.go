package healthcheck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/l3aro/go-decision-tree/internal/config"
)

func component(t *testing.T, result *HealthCheckResult, name string) ComponentStatus {
	t.Helper()
	for _, c := range result.Components {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("component %q missing from result", name)
	return ComponentStatus{}
}

func TestCheckWithNilConfig(t *testing.T) {
	_, err := Check(context.Background(), nil, "", "")
	if err == nil {
		t.Error("Expected error for nil config, got nil")
	}
}

func TestCheckHealthy(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Format = "svg"
	cfg.OutputDir = t.TempDir()

	result, err := Check(context.Background(), cfg, "", "")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}

	for _, name := range []string{"config", "parser", "renderer", "output"} {
		c := component(t, result, name)
		if c.Status != StatusReady {
			t.Errorf("%s status = %q (%s), want ready", name, c.Status, c.Error)
		}
	}
	if !result.OK() {
		t.Error("OK() = false, want true")
	}

	entries, err := os.ReadDir(cfg.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("probe file left behind: %v", entries)
	}
}

func TestCheckInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RankDir = "diagonal"
	cfg.OutputDir = t.TempDir()

	result, err := Check(context.Background(), cfg, "", "")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}

	if c := component(t, result, "config"); c.Status != StatusError {
		t.Errorf("config status = %q, want error", c.Status)
	}
	if result.OK() {
		t.Error("OK() = true, want false")
	}
}

func TestCheckOutputDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"existing", dir, StatusReady},
		{"missing", filepath.Join(dir, "later"), StatusWarning},
		{"file", file, StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkOutputDir(tt.dir); got.Status != tt.want {
				t.Errorf("checkOutputDir(%s) = %q, want %q", tt.dir, got.Status, tt.want)
			}
		})
	}
}

func TestScopeFromPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{filepath.Join(home, ".dtree", "config.yaml"), "global"},
		{filepath.Join(".dtree", "config.yaml"), "project"},
	}

	for _, tt := range tests {
		if got := scopeFromPath(tt.path); got != tt.want {
			t.Errorf("scopeFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
