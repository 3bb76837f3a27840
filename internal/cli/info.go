package cli

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"
)

// infoCommand creates the info command for grammar statistics.
func (c *CLI) infoCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info [grammar-dir]",
		Short: "Print grammar size and probability bounds",
		Long: `Print the number of rules, tags and terminals of a grammar, the total
number of guesses it describes (before case variants) and the
probabilities of its most and least probable guess.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := c.loadGrammar(cmd.Context(), args)
			if err != nil {
				return err
			}
			st := ix.Stats()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"rules":           st.Rules,
					"tags":            st.Tags,
					"terminals":       st.Terminals,
					"candidates":      st.Candidates.String(),
					"max_probability": st.MaxProbability,
					"min_probability": st.MinProbability,
				})
			}

			printSuccess("Grammar loaded")
			printNumber("Rules", st.Rules)
			printNumber("Tags", st.Tags)
			printNumber("Terminals", st.Terminals)
			printNumber("Guesses", st.Candidates.String())
			printNumber("Most probable", strconv.FormatFloat(st.MaxProbability, 'g', 6, 64))
			printNumber("Least probable", strconv.FormatFloat(st.MinProbability, 'g', 6, 64))
			printNextStep("Enumerate", appName+" generate "+argOr(args, "<grammar-dir>")+" --limit 10")
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON to stdout")

	return cmd
}

func argOr(args []string, def string) string {
	if len(args) > 0 {
		return args[0]
	}
	return def
}
