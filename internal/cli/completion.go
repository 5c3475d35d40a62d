package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// completionShells maps a shell name to the cobra generator for it.
var completionShells = map[string]func(*cobra.Command, io.Writer) error{
	"bash": (*cobra.Command).GenBashCompletion,
	"zsh":  (*cobra.Command).GenZshCompletion,
	"fish": func(cmd *cobra.Command, w io.Writer) error {
		return cmd.GenFishCompletion(w, true)
	},
	"powershell": (*cobra.Command).GenPowerShellCompletionWithDesc,
}

// completionCommand prints a completion script for the named shell.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for the given shell to stdout.

  source <(datamapper completion bash)
  datamapper completion zsh > "${fpath[1]}/_datamapper"
  datamapper completion fish | source
  datamapper completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionShells[args[0]](cmd.Root(), c.out)
		},
	}
}
