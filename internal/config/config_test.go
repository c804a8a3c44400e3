package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l3aro/go-decision-tree/internal/log"
	"github.com/l3aro/go-decision-tree/pkg/render"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DTREE_FORMAT", "DTREE_OUTPUT_DIR", "DTREE_WRAP_WIDTH", "DTREE_RANK_DIR",
		"DTREE_CONDITION_COLOR", "DTREE_TERMINAL_COLOR", "DTREE_EXPRESSION_COLOR",
		"DTREE_JOBS", "DTREE_IGNORE_FILE", "DTREE_VERBOSE", "DTREE_JSON_LOGS",
		"DTREE_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Format", cfg.Format, "png"},
		{"OutputDir", cfg.OutputDir, "decision_trees"},
		{"WrapWidth", cfg.WrapWidth, 40},
		{"RankDir", cfg.RankDir, "TB"},
		{"ConditionColor", cfg.ConditionColor, "lightblue"},
		{"TerminalColor", cfg.TerminalColor, "lightgreen"},
		{"ExpressionColor", cfg.ExpressionColor, "lightyellow"},
		{"IgnoreFile", cfg.IgnoreFile, ".dtreeignore"},
		{"Verbose", cfg.Verbose, false},
		{"JSONLogs", cfg.JSONLogs, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("DefaultConfig().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	if cfg.Jobs <= 0 {
		t.Errorf("DefaultConfig().Jobs = %d, want positive", cfg.Jobs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errContains string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "svg lower-case lr", mutate: func(c *Config) { c.Format = "svg"; c.RankDir = "lr" }},
		{name: "wrapping disabled", mutate: func(c *Config) { c.WrapWidth = 0 }},
		{name: "bad format", mutate: func(c *Config) { c.Format = "gif" }, wantErr: true, errContains: "invalid format"},
		{name: "bad rank dir", mutate: func(c *Config) { c.RankDir = "BT" }, wantErr: true, errContains: "rank_dir"},
		{name: "negative wrap", mutate: func(c *Config) { c.WrapWidth = -1 }, wantErr: true, errContains: "wrap_width"},
		{name: "zero jobs", mutate: func(c *Config) { c.Jobs = 0 }, wantErr: true, errContains: "jobs"},
		{name: "no output dir", mutate: func(c *Config) { c.OutputDir = "" }, wantErr: true, errContains: "output_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.errContains)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := "format: svg\nwrap_width: 25\nrank_dir: LR\ncondition_color: \"#aaccff\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Format != "svg" {
		t.Errorf("Format = %q, want svg", cfg.Format)
	}
	if cfg.WrapWidth != 25 {
		t.Errorf("WrapWidth = %d, want 25", cfg.WrapWidth)
	}
	if cfg.ConditionColor != "#aaccff" {
		t.Errorf("ConditionColor = %q, want #aaccff", cfg.ConditionColor)
	}
	// Unset fields keep their defaults.
	if cfg.TerminalColor != "lightgreen" {
		t.Errorf("TerminalColor = %q, want lightgreen", cfg.TerminalColor)
	}

	if _, err := LoadFromFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFromFile() on a missing file should fail")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("format: [unclosed\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(bad); err == nil {
		t.Error("LoadFromFile() on invalid YAML should fail")
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	global := filepath.Join(dir, "global.yaml")
	project := filepath.Join(dir, "project.yaml")
	if err := os.WriteFile(global, []byte("format: svg\njobs: 2\nverbose: true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(project, []byte("format: mermaid\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DTREE_JOBS", "7")

	cfg, err := load(global, project, filepath.Join(dir, "absent.yaml"))
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.Format != "mermaid" {
		t.Errorf("Format = %q, want project value mermaid", cfg.Format)
	}
	if !cfg.Verbose {
		t.Error("Verbose should come from the global file")
	}
	if cfg.Jobs != 7 {
		t.Errorf("Jobs = %d, want env value 7", cfg.Jobs)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DTREE_FORMAT", "dot")
	t.Setenv("DTREE_WRAP_WIDTH", "60")
	t.Setenv("DTREE_RANK_DIR", "LR")
	t.Setenv("DTREE_TERMINAL_COLOR", "palegreen")
	t.Setenv("DTREE_JSON_LOGS", "yes")

	cfg := DefaultConfig()
	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	if cfg.Format != "dot" || cfg.WrapWidth != 60 || cfg.RankDir != "LR" {
		t.Errorf("unexpected overrides: %+v", cfg)
	}
	if cfg.TerminalColor != "palegreen" {
		t.Errorf("TerminalColor = %q, want palegreen", cfg.TerminalColor)
	}
	if !cfg.JSONLogs {
		t.Error("JSONLogs should be enabled")
	}

	t.Setenv("DTREE_JOBS", "many")
	if err := applyEnvOverrides(cfg); err == nil {
		t.Error("non-numeric DTREE_JOBS should fail")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Format = "svg"
	cfg.Jobs = 3
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestRenderOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "mmd"
	cfg.RankDir = "lr"
	cfg.WrapWidth = 30
	cfg.ExpressionColor = ""

	opts := cfg.RenderOptions()
	if opts.Format != render.FormatMermaid {
		t.Errorf("Format = %q, want mermaid", opts.Format)
	}
	if opts.RankDir != render.RankLR {
		t.Errorf("RankDir = %q, want LR", opts.RankDir)
	}
	if opts.WrapWidth != 30 {
		t.Errorf("WrapWidth = %d, want 30", opts.WrapWidth)
	}
	if opts.Palette.Expression != "lightyellow" {
		t.Errorf("empty expression color should fall back, got %q", opts.Palette.Expression)
	}
}

func TestLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("DTREE_LOG_LEVEL", "warn")

	cfg := DefaultConfig()
	if got := cfg.Level(); got != log.InfoLevel {
		t.Errorf("default Level() = %v, want INFO", got)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}
	if got := cfg.Level(); got != log.WarnLevel {
		t.Errorf("Level() = %v, want WARN", got)
	}

	cfg.Verbose = true
	if got := cfg.Level(); got != log.DebugLevel {
		t.Errorf("verbose Level() = %v, want DEBUG", got)
	}

	cfg.LogLevel = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject an unknown log_level")
	}
}
