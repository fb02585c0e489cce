package cli

import "github.com/spf13/cobra"

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for drawtf.

To load completions:

Bash:
  $ source <(drawtf completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ drawtf completion bash > /etc/bash_completion.d/drawtf
  # macOS:
  $ drawtf completion bash > $(brew --prefix)/etc/bash_completion.d/drawtf

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ drawtf completion zsh > "${fpath[1]}/_drawtf"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ drawtf completion fish | source

  # To load completions for each session, execute once:
  $ drawtf completion fish > ~/.config/fish/completions/drawtf.fish

PowerShell:
  PS> drawtf completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> drawtf completion powershell > drawtf.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(c.Out)
			case "zsh":
				return cmd.Root().GenZshCompletion(c.Out)
			case "fish":
				return cmd.Root().GenFishCompletion(c.Out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(c.Out)
			}
			return nil
		},
	}

	return cmd
}
