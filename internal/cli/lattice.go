package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pcfguess/pkg/errors"
	"github.com/matzehuels/pcfguess/pkg/guess"
)

// latticeCommand creates the lattice command for visualizing how a strategy
// covers one rule's lattice.
func (c *CLI) latticeCommand() *cobra.Command {
	var (
		rule      int
		algorithm string
		maxNodes  int
		format    string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "lattice [grammar-dir]",
		Short: "Render the generation tree of one rule (debug tool)",
		Long: `Render which point pushed which while enumerating one rule.

Every node is a guess with its probability, numbered in pop order; every
edge is labeled with the tag whose terminal was advanced. Under a correct
strategy the edges form a tree covering each point exactly once.`,
		Example: `  # First 30 points of rule 0 as DOT
  pcfguess lattice grammars/tiny --max-nodes 30

  # Compare strategies as SVG
  pcfguess lattice grammars/tiny -r 2 -f svg -o next.svg
  pcfguess lattice grammars/tiny -r 2 -f svg -a deadbeat -o deadbeat.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "dot" && format != "svg" && format != "json" {
				return errors.New(errors.ErrCodeInvalidConfig, "unknown format %q (must be dot, svg or json)", format)
			}
			strategy, err := guess.StrategyByName(algorithm)
			if err != nil {
				return err
			}
			ix, err := c.loadGrammar(cmd.Context(), args)
			if err != nil {
				return err
			}

			tree, err := guess.BuildTree(ix, rule, strategy, maxNodes)
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "dot":
				data = []byte(tree.ToDOT())
			case "svg":
				if data, err = tree.RenderSVG(cmd.Context()); err != nil {
					return fmt.Errorf("render: %w", err)
				}
			case "json":
				var buf bytes.Buffer
				if err := tree.WriteJSON(&buf); err != nil {
					return err
				}
				data = buf.Bytes()
			}
			if err := writeFile(data, output, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			printSuccess("Lattice tree generated")
			printKeyValue("Rule", tree.Rule.Structure)
			printKeyValue("Strategy", tree.Strategy)
			printNumber("Nodes", len(tree.Nodes))
			if tree.Truncated {
				printWarning("Truncated at %d nodes (raise --max-nodes)", len(tree.Nodes))
			}
			if output != "" {
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&rule, "rule", "r", 0, "rule index (line in rules.txt, from 0)")
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", guess.StrategyPivotForward, "expansion strategy")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", guess.DefaultTreeNodes, "stop after this many points")
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}
