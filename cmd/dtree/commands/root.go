// Package commands provides the CLI commands for the dtree tool.
package commands

import (
	"fmt"

	"github.com/l3aro/go-decision-tree/internal/config"
	"github.com/l3aro/go-decision-tree/internal/log"
	"github.com/l3aro/go-decision-tree/pkg/render"
	"github.com/spf13/cobra"
)

var (
	// cfg is the configuration loaded before every command runs.
	cfg *config.Config

	configPath string
	verbose    bool
	jsonLogs   bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "dtree",
	Short: "dtree - Decision tree diagrams from Python source",
	Long: `dtree turns the if/else structure of Python code into a decision tree diagram.

Commands:
  render      Render the decision tree of a Python file
  inspect     Print the decision tree graph as text or JSON
  batch       Render every changed Python file under a directory
  convert     Render a saved json or msgpack graph document
  init        Create a configuration file interactively
  doctor      Check configuration, parser and renderer

Use "dtree [command] --help" for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
		configureLogging(cmd)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return loaded, nil
	}
	loaded, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return loaded, nil
}

// configureLogging applies the logging flags over the config values.
func configureLogging(cmd *cobra.Command) {
	logger := log.Default()
	logger.SetOutput(cmd.ErrOrStderr())

	level := cfg.Level()
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	logger.SetJSONOutput(cfg.JSONLogs || jsonLogs)
}

// renderOptions starts from the configured options and applies the format
// flag when given.
func renderOptions(cmd *cobra.Command) (render.Options, error) {
	opts := cfg.RenderOptions()
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		format, err := render.ParseFormat(f)
		if err != nil {
			return opts, err
		}
		opts.Format = format
	}
	if cmd.Flags().Changed("rank-dir") {
		dir, _ := cmd.Flags().GetString("rank-dir")
		switch render.RankDir(dir) {
		case render.RankTB, render.RankLR:
			opts.RankDir = render.RankDir(dir)
		default:
			return opts, fmt.Errorf("invalid rank direction %q (must be TB or LR)", dir)
		}
	}
	return opts, nil
}

// addRenderFlags registers the flags read by renderOptions.
func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", "Output format: png, svg, jpg, dot, mermaid, ascii, json or msgpack (default from config)")
	cmd.Flags().String("rank-dir", "TB", "Layout direction: TB or LR")
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: project or global config)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Verbose logging")
	RootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Log as JSON lines")
}
