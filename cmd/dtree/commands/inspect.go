package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/l3aro/go-decision-tree/pkg/generate"
	"github.com/l3aro/go-decision-tree/pkg/graph"
	"github.com/l3aro/go-decision-tree/pkg/query"
	"github.com/l3aro/go-decision-tree/pkg/render"
	"github.com/l3aro/go-decision-tree/pkg/stmt"
	"github.com/spf13/cobra"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file.py>",
	Short: "Print the decision tree graph as text or JSON",
	Long: `Builds the decision tree of a Python file and prints it without rendering an
image. The default output is an indented tree; --json prints the graph
document and --query filters that document with a jq expression.

Examples:
  dtree inspect app.py
  dtree inspect app.py --json
  dtree inspect app.py --stats
  dtree inspect app.py --query '.nodes[] | select(.style == "condition") | .label'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		if stats, _ := cmd.Flags().GetBool("stats"); stats {
			s, err := generate.StatsFile(cmd.Context(), args[0])
			if err != nil {
				return reportGenerateError(cmd, err)
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), s)
			}
			printStats(cmd.OutOrStdout(), s)
			return nil
		}

		g, err := generate.BuildFile(cmd.Context(), args[0])
		if err != nil {
			return reportGenerateError(cmd, err)
		}

		out := cmd.OutOrStdout()

		if expr, _ := cmd.Flags().GetString("query"); expr != "" {
			results, err := query.Run(cmd.Context(), g, expr)
			if err != nil {
				return err
			}
			for _, r := range results {
				if s, ok := r.(string); ok {
					fmt.Fprintln(out, s)
					continue
				}
				if err := printJSON(out, r); err != nil {
					return err
				}
			}
			return nil
		}

		if jsonOutput {
			return render.EncodeJSON(g, out)
		}

		fmt.Fprint(out, render.RenderASCII(g))
		return nil
	},
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printStats(w io.Writer, s *generate.Stats) {
	fmt.Fprintf(w, "Statements: %d conditional, %d return, %d expression, %d other\n",
		s.Statements[stmt.KindConditional], s.Statements[stmt.KindTerminal],
		s.Statements[stmt.KindExpression], s.Statements[stmt.KindOther])
	fmt.Fprintf(w, "Nodes:      %d condition, %d return, %d expression\n",
		s.Nodes[graph.StyleCondition], s.Nodes[graph.StyleTerminal], s.Nodes[graph.StyleExpression])
	fmt.Fprintf(w, "Edges:      %d True, %d False, %d chain\n", s.TrueEdges, s.FalseEdges, s.ChainEdges)
	fmt.Fprintf(w, "Roots:      %d\n", s.Roots)
}

func init() {
	inspectCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	inspectCmd.Flags().Bool("stats", false, "Print statement and graph counts")
	inspectCmd.Flags().StringP("query", "q", "", "jq expression applied to the JSON document")
	RootCmd.AddCommand(inspectCmd)
}
