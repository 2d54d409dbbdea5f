package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for docsmith.

Bash:
  $ source <(docsmith completion bash)

Zsh:
  $ docsmith completion zsh > "${fpath[1]}/_docsmith"

Fish:
  $ docsmith completion fish | source

PowerShell:
  PS> docsmith completion powershell | Out-String | Invoke-Expression

Declaration paths complete for query and highlight.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeTargets completes declaration paths for "[dir] <id-or-path>"
// commands. With one argument given, it is taken as the dir.
func (c *CLI) completeTargets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	ws, err := c.openWorkspace(cmd.Context(), root)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer ws.runner.Close()

	seen := map[string]bool{}
	var out []string
	for _, d := range ws.docs {
		if seen[d.Path] || !strings.HasPrefix(d.Path, toComplete) {
			continue
		}
		seen[d.Path] = true
		out = append(out, d.Path+"\t"+d.Kind)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
