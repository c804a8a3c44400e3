package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/l3aro/go-decision-tree/internal/config"
	"github.com/l3aro/go-decision-tree/internal/healthcheck"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on configuration, parser and renderer",
	Long: `Checks the configuration, parses and renders a small probe program in the
configured format, and verifies that the output directory is writable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		effectivePath := effectiveConfigPath()

		result, err := healthcheck.Check(cmd.Context(), cfg, effectivePath, effectivePath)
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}

		displayDoctorResult(cmd.OutOrStdout(), result)

		if !result.OK() {
			return fmt.Errorf("health check failed: one or more components are not working")
		}
		return nil
	},
}

// effectiveConfigPath returns the config file in use: the --config flag, the
// project file, the global file, or "" when running on defaults.
func effectiveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if fileExists(config.ProjectConfigPath()) {
		return config.ProjectConfigPath()
	}
	if fileExists(config.GlobalConfigPath()) {
		return config.GlobalConfigPath()
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func displayDoctorResult(w io.Writer, result *healthcheck.HealthCheckResult) {
	if result.EffectivePath == "" {
		fmt.Fprintln(w, "Using config: built-in defaults (run 'dtree init' to create one)")
	} else {
		fmt.Fprintf(w, "Using config: %s (%s)\n", result.EffectivePath, result.EffectiveScope)
	}
	fmt.Fprintln(w)

	for _, c := range result.Components {
		fmt.Fprintf(w, "%s %-9s %s\n", formatStatusIcon(c.Status), c.Name, c.Detail)
		if c.Error != "" {
			fmt.Fprintf(w, "  %s: %s\n", c.Status, c.Error)
		}
	}
}

func formatStatusIcon(status string) string {
	switch status {
	case healthcheck.StatusReady:
		return "✓"
	case healthcheck.StatusWarning:
		return "◐"
	case healthcheck.StatusError:
		return "✗"
	default:
		return "?"
	}
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}
