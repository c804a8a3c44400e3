package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/l3aro/go-decision-tree/internal/log"
	"github.com/l3aro/go-decision-tree/pkg/render"
	"gopkg.in/yaml.v3"
)

// DirName is the name of the global and project configuration directories.
const DirName = ".dtree"

// Config holds all configuration for dtree
type Config struct {
	// Output format used when --format is not given
	Format string `yaml:"format" env:"DTREE_FORMAT"`

	// Directory batch output is written to
	OutputDir string `yaml:"output_dir" env:"DTREE_OUTPUT_DIR"`

	// Label wrapping column; 0 disables wrapping
	WrapWidth int `yaml:"wrap_width" env:"DTREE_WRAP_WIDTH"`

	// Layout direction, TB or LR
	RankDir string `yaml:"rank_dir" env:"DTREE_RANK_DIR"`

	// Node fill colors
	ConditionColor  string `yaml:"condition_color" env:"DTREE_CONDITION_COLOR"`
	TerminalColor   string `yaml:"terminal_color" env:"DTREE_TERMINAL_COLOR"`
	ExpressionColor string `yaml:"expression_color" env:"DTREE_EXPRESSION_COLOR"`

	// Number of files rendered concurrently in batch mode
	Jobs int `yaml:"jobs" env:"DTREE_JOBS"`

	// Ignore file consulted when scanning directories
	IgnoreFile string `yaml:"ignore_file" env:"DTREE_IGNORE_FILE"`

	// Logging; Verbose forces debug regardless of LogLevel
	LogLevel string `yaml:"log_level" env:"DTREE_LOG_LEVEL"`
	Verbose  bool   `yaml:"verbose" env:"DTREE_VERBOSE"`
	JSONLogs bool   `yaml:"json_logs" env:"DTREE_JSON_LOGS"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	palette := render.DefaultPalette()
	return &Config{
		Format:          string(render.FormatPNG),
		OutputDir:       "decision_trees",
		WrapWidth:       render.DefaultWrapWidth,
		RankDir:         string(render.RankTB),
		ConditionColor:  palette.Condition,
		TerminalColor:   palette.Terminal,
		ExpressionColor: palette.Expression,
		Jobs:            runtime.NumCPU(),
		IgnoreFile:      ".dtreeignore",
		LogLevel:        "info",
		Verbose:         false,
		JSONLogs:        false,
	}
}

// GlobalConfigPath returns the global config file path (~/.dtree/config.yaml)
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(DirName, "config.yaml")
	}
	return filepath.Join(home, DirName, "config.yaml")
}

// ProjectConfigPath returns the project-level config file path (./.dtree/config.yaml)
func ProjectConfigPath() string {
	return filepath.Join(DirName, "config.yaml")
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.dtree/config.yaml)
// 3. Global config (~/.dtree/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	return load(GlobalConfigPath(), ProjectConfigPath())
}

func load(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return load(path)
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DTREE_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("DTREE_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("DTREE_WRAP_WIDTH"); v != "" {
		i, err := parseInt(v)
		if err != nil {
			return fmt.Errorf("DTREE_WRAP_WIDTH: %w", err)
		}
		cfg.WrapWidth = i
	}
	if v := os.Getenv("DTREE_RANK_DIR"); v != "" {
		cfg.RankDir = v
	}
	if v := os.Getenv("DTREE_CONDITION_COLOR"); v != "" {
		cfg.ConditionColor = v
	}
	if v := os.Getenv("DTREE_TERMINAL_COLOR"); v != "" {
		cfg.TerminalColor = v
	}
	if v := os.Getenv("DTREE_EXPRESSION_COLOR"); v != "" {
		cfg.ExpressionColor = v
	}
	if v := os.Getenv("DTREE_JOBS"); v != "" {
		i, err := parseInt(v)
		if err != nil {
			return fmt.Errorf("DTREE_JOBS: %w", err)
		}
		cfg.Jobs = i
	}
	if v := os.Getenv("DTREE_IGNORE_FILE"); v != "" {
		cfg.IgnoreFile = v
	}
	if v := os.Getenv("DTREE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DTREE_VERBOSE"); v != "" {
		cfg.Verbose = parseBool(v)
	}
	if v := os.Getenv("DTREE_JSON_LOGS"); v != "" {
		cfg.JSONLogs = parseBool(v)
	}
	return nil
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	if _, err := render.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("invalid format: %s", c.Format)
	}

	switch render.RankDir(strings.ToUpper(c.RankDir)) {
	case render.RankTB, render.RankLR:
		// Valid
	default:
		return fmt.Errorf("invalid rank_dir: %s (must be 'TB' or 'LR')", c.RankDir)
	}

	if c.WrapWidth < 0 {
		return fmt.Errorf("wrap_width must be non-negative")
	}
	if c.Jobs <= 0 {
		return fmt.Errorf("jobs must be positive")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	return nil
}

// Palette returns the configured node colors, falling back to the default
// color for any left empty.
func (c *Config) Palette() render.Palette {
	p := render.DefaultPalette()
	if c.ConditionColor != "" {
		p.Condition = c.ConditionColor
	}
	if c.TerminalColor != "" {
		p.Terminal = c.TerminalColor
	}
	if c.ExpressionColor != "" {
		p.Expression = c.ExpressionColor
	}
	return p
}

// RenderOptions returns the render options described by the configuration.
// The config must have passed Validate.
func (c *Config) RenderOptions() render.Options {
	format, err := render.ParseFormat(c.Format)
	if err != nil {
		format = render.FormatPNG
	}
	return render.Options{
		Format:    format,
		WrapWidth: c.WrapWidth,
		RankDir:   render.RankDir(strings.ToUpper(c.RankDir)),
		Palette:   c.Palette(),
	}
}

// Level returns the configured log level; Verbose means debug.
func (c *Config) Level() log.Level {
	if c.Verbose {
		return log.DebugLevel
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// parseInt parses a decimal integer setting
func parseInt(s string) (int, error) {
	var i int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &i); err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return i, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}
