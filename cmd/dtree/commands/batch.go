package commands

import (
	"fmt"

	"github.com/l3aro/go-decision-tree/internal/log"
	"github.com/l3aro/go-decision-tree/pkg/generate"
	"github.com/spf13/cobra"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Render every changed Python file under a directory",
	Long: `Scans a directory for Python files, honoring .dtreeignore, and renders the
decision tree of each file that changed since the previous run. Outputs
mirror the source layout under the output directory.

A file that fails to parse is reported and the remaining files are still
rendered; the command exits non-zero when any file failed.`,
	Args: cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		opts, err := renderOptions(cmd)
		if err != nil {
			return err
		}

		outDir, _ := cmd.Flags().GetString("out")
		if outDir == "" {
			outDir = cfg.OutputDir
		}
		jobs, _ := cmd.Flags().GetInt("jobs")
		if jobs <= 0 {
			jobs = cfg.Jobs
		}
		force, _ := cmd.Flags().GetBool("force")

		logger := log.Default()
		batchOpts := generate.BatchOptions{
			Root:       root,
			OutDir:     outDir,
			Render:     opts,
			Jobs:       jobs,
			Force:      force,
			IgnoreFile: cfg.IgnoreFile,
			Logger:     logger,
		}

		total, err := generate.CountFiles(cmd.Context(), batchOpts)
		if err != nil {
			return err
		}
		if total == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No Python files found in %s\n", root)
			return nil
		}

		spinner := log.NewProgressSpinner("Rendering decision trees", total)
		batchOpts.Progress = spinner.Increment
		spinner.Start()
		result, err := generate.Batch(cmd.Context(), batchOpts)
		spinner.Stop()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, f := range result.Failed {
			fmt.Fprintf(out, "✗ %s: %v\n", f.Path, f.Err)
		}
		fmt.Fprintf(out, "Rendered %d, unchanged %d, failed %d (output in %s)\n",
			len(result.Rendered), len(result.Skipped), len(result.Failed), outDir)

		if len(result.Failed) > 0 {
			cmd.SilenceErrors = true
			return fmt.Errorf("%d of %d files failed", len(result.Failed), result.Total())
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().String("out", "", "Output directory (default from config)")
	batchCmd.Flags().IntP("jobs", "j", 0, "Files rendered concurrently (default from config)")
	batchCmd.Flags().Bool("force", false, "Render unchanged files too")
	addRenderFlags(batchCmd)
	RootCmd.AddCommand(batchCmd)
}
