package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/l3aro/go-decision-tree/pkg/generate"
	"github.com/spf13/cobra"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <graph.json|graph.msgpack>",
	Short: "Render a saved graph document",
	Long: `Reads a decision tree saved with --format json or --format msgpack and renders
it again in another format, without the Python source.

The output defaults to the input path without its extension.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]

		opts, err := renderOptions(cmd)
		if err != nil {
			return err
		}
		opts.Title, _ = cmd.Flags().GetString("title")

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = strings.TrimSuffix(input, filepath.Ext(input))
		}

		g, err := generate.LoadGraph(input)
		if err != nil {
			return reportGenerateError(cmd, err)
		}

		path, err := generate.Write(cmd.Context(), g, output, opts)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Decision tree generated: %s\n", path)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "Output file name, without extension")
	convertCmd.Flags().String("title", "", "Diagram title (image formats)")
	addRenderFlags(convertCmd)
	RootCmd.AddCommand(convertCmd)
}
