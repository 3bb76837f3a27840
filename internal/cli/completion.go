package cli

import (
	"github.com/spf13/cobra"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion {bash|zsh|fish|powershell}",
		Short: "Print a shell completion script",
		Long: `Print a completion script for the given shell to stdout.

  pcfguess completion bash > /etc/bash_completion.d/pcfguess
  pcfguess completion zsh > "${fpath[1]}/_pcfguess"
  pcfguess completion fish > ~/.config/fish/completions/pcfguess.fish
  pcfguess completion powershell | Out-String | Invoke-Expression`,
		// Needs no grammar, profile or .env.
		PersistentPreRunE:     func(*cobra.Command, []string) error { return nil },
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
