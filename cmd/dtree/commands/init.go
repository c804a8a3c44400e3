package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/l3aro/go-decision-tree/internal/config"
	"github.com/l3aro/go-decision-tree/internal/healthcheck"
	"github.com/l3aro/go-decision-tree/pkg/render"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize dtree configuration interactively",
	Long: `Guides you through setting up dtree configuration step by step.
Creates a config file with the output format, layout and node colors.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd)
	},
}

func runInit(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	newCfg := config.DefaultConfig()

	// === SECTION 1: Output ===
	formatOptions := make([]huh.Option[string], 0, len(render.Formats))
	for _, f := range render.Formats {
		formatOptions = append(formatOptions, huh.NewOption(string(f), string(f)))
	}

	wrapWidth := strconv.Itoa(newCfg.WrapWidth)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Output format").
				Description("Used by render and batch when --format is not given").
				Options(formatOptions...).
				Value(&newCfg.Format),
			huh.NewSelect[string]().
				Title("Layout direction").
				Options(
					huh.NewOption("Top to bottom", string(render.RankTB)),
					huh.NewOption("Left to right", string(render.RankLR)),
				).
				Value(&newCfg.RankDir),
			huh.NewInput().
				Title("Wrap node labels at column (0 disables)").
				Value(&wrapWidth).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 0 {
						return fmt.Errorf("enter a non-negative number")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	newCfg.WrapWidth, _ = strconv.Atoi(wrapWidth)

	// === SECTION 2: Colors and batch output ===
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Condition node color").
				Placeholder(newCfg.ConditionColor).
				Value(&newCfg.ConditionColor),
			huh.NewInput().
				Title("Return node color").
				Placeholder(newCfg.TerminalColor).
				Value(&newCfg.TerminalColor),
			huh.NewInput().
				Title("Expression node color").
				Placeholder(newCfg.ExpressionColor).
				Value(&newCfg.ExpressionColor),
			huh.NewInput().
				Title("Batch output directory").
				Placeholder(newCfg.OutputDir).
				Value(&newCfg.OutputDir),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 3: Config Location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Global (~/.dtree/config.yaml)", "global"),
					huh.NewOption("Project (./.dtree/config.yaml)", "project"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	savePath := config.ProjectConfigPath()
	if saveLocationChoice == "global" {
		savePath = config.GlobalConfigPath()
	}

	if _, err := os.Stat(savePath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", savePath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := newCfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Fprintln(out, "\n=== Configuration Preview ===")
	fmt.Fprintf(out, "Config path: %s\n", savePath)
	fmt.Fprintf(out, "Format: %s\n", newCfg.Format)
	fmt.Fprintf(out, "Layout: %s, wrap at %d\n", newCfg.RankDir, newCfg.WrapWidth)
	fmt.Fprintf(out, "Colors: condition %s, return %s, expression %s\n",
		newCfg.ConditionColor, newCfg.TerminalColor, newCfg.ExpressionColor)
	fmt.Fprintf(out, "Batch output: %s\n", newCfg.OutputDir)
	fmt.Fprintln(out, "================================")

	if err := newCfg.Save(savePath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(out, "Configuration saved to: %s\n", savePath)

	// === SECTION 4: Health Check ===
	fmt.Fprintln(out, "\n=== Running Health Check ===")

	loadedCfg, err := config.LoadFromFile(savePath)
	if err != nil {
		return fmt.Errorf("loading saved config: %w", err)
	}

	result, err := healthcheck.Check(cmd.Context(), loadedCfg, savePath, effectiveConfigPath())
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	fmt.Fprintf(out, "\nConfig Scope: %s\n", result.SavedScope)
	if abs, err := filepath.Abs(savePath); err == nil {
		fmt.Fprintf(out, "Config Path: %s\n", abs)
	}
	if result.EffectivePath != "" && result.EffectivePath != savePath {
		fmt.Fprintf(out, "Note: %s takes precedence over the saved file\n", result.EffectivePath)
	}
	fmt.Fprintln(out)
	displayDoctorResult(out, result)

	fmt.Fprintln(out, "\n=== Initialization Complete ===")
	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}
