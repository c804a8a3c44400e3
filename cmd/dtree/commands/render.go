package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/l3aro/go-decision-tree/internal/log"
	"github.com/l3aro/go-decision-tree/pkg/generate"
	"github.com/l3aro/go-decision-tree/pkg/pyparse"
	"github.com/spf13/cobra"
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render <file.py>",
	Short: "Render the decision tree of a Python file",
	Long: `Parses a Python file and draws its decision tree: each if statement becomes a
condition node with True and False branches, return statements and bare
expressions become the nodes that follow them.

The diagram is written to <output>.<ext>, decision_tree.png by default.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]

		info, err := os.Stat(input)
		if err == nil && info.IsDir() {
			return fmt.Errorf("path is a directory, expected a file: %s (use 'dtree batch' for directories)", input)
		}

		opts, err := renderOptions(cmd)
		if err != nil {
			return err
		}
		opts.Title, _ = cmd.Flags().GetString("title")
		output, _ := cmd.Flags().GetString("output")

		log.Default().Debug("rendering", "input", input, "output", output, "format", opts.Format)

		path, err := generate.GenerateFile(cmd.Context(), input, output, opts)
		if err != nil {
			return reportGenerateError(cmd, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Decision tree generated: %s\n", path)
		return nil
	},
}

// reportGenerateError prints parse and missing-file failures in their short
// form and silences cobra's own error line for them.
func reportGenerateError(cmd *cobra.Command, err error) error {
	var se *pyparse.SyntaxError
	switch {
	case errors.As(err, &se):
		cmd.SilenceErrors = true
		fmt.Fprintf(cmd.ErrOrStderr(), "Syntax error: %s\n", se)
	case errors.Is(err, generate.ErrNotFound):
		cmd.SilenceErrors = true
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err)
	}
	return err
}

func init() {
	renderCmd.Flags().StringP("output", "o", generate.DefaultOutput, "Output file name, without extension")
	renderCmd.Flags().String("title", "", "Diagram title (image formats)")
	addRenderFlags(renderCmd)
	RootCmd.AddCommand(renderCmd)
}
