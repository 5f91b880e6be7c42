package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sysmlexport/pkg/model"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sysmlexport.

Besides commands and flags, completion offers node IDs for --root, read from
the model file given as the first argument.

To load completions:

Bash:
  $ source <(sysmlexport completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ sysmlexport completion bash > /etc/bash_completion.d/sysmlexport
  # macOS:
  $ sysmlexport completion bash > $(brew --prefix)/etc/bash_completion.d/sysmlexport

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ sysmlexport completion zsh > "${fpath[1]}/_sysmlexport"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ sysmlexport completion fish | source

  # To load completions for each session, execute once:
  $ sysmlexport completion fish > ~/.config/fish/completions/sysmlexport.fish

PowerShell:
  PS> sysmlexport completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> sysmlexport completion powershell > sysmlexport.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeRootFlag makes --root complete node IDs from the model named by
// the command's first argument.
func completeRootFlag(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("root", completeNodeIDs)
}

func completeNodeIDs(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	tree, err := model.ImportJSON(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var ids []string
	for _, n := range tree.Nodes() {
		if !strings.HasPrefix(n.ID, toComplete) {
			continue
		}
		ids = append(ids, n.ID+"\t"+n.Meta+" "+n.Label())
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
