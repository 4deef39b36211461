package commands

import (
	"github.com/spf13/cobra"
)

// Completion returns the completion command for shell autocompletion.
func Completion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for clusterwizard.

To load completions:

Bash:
  $ source <(clusterwizard completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ clusterwizard completion bash > /etc/bash_completion.d/clusterwizard
  # macOS:
  $ clusterwizard completion bash > $(brew --prefix)/etc/bash_completion.d/clusterwizard

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  # To load completions for each session, execute once:
  $ clusterwizard completion zsh > "${fpath[1]}/_clusterwizard"
  # You will need to start a new shell for this setup to take effect.

Fish:
  $ clusterwizard completion fish | source
  # To load completions for each session, execute once:
  $ clusterwizard completion fish > ~/.config/fish/completions/clusterwizard.fish

PowerShell:
  PS> clusterwizard completion powershell | Out-String | Invoke-Expression
  # To load completions for every new session, run:
  PS> clusterwizard completion powershell > clusterwizard.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}
	return cmd
}
