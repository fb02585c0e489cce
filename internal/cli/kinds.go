package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/drawtf/pkg/pipeline"
)

// kindsCommand creates the "kinds" command listing drawable resource kinds.
func (c *CLI) kindsCommand() *cobra.Command {
	var platform string

	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "List the resource kinds a platform can draw",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pipeline.FindPlatform(platform)
			if err != nil {
				return err
			}
			reg := p.Registry()
			plan := p.Plan()

			owners := make(map[string]bool, len(plan.Passes))
			for _, k := range plan.Passes {
				owners[k] = true
			}

			fmt.Fprintln(c.Out, StyleTitle.Render(fmt.Sprintf("%s: %d kinds", p.Name, reg.Len())))
			kindStyle := lipgloss.NewStyle().Foreground(colorWhite).Width(44)
			for _, k := range reg.Kinds() {
				role := ""
				switch {
				case k == plan.Container:
					role = "container"
				case owners[k]:
					role = "groups children"
				}
				fmt.Fprintln(c.Out, "  "+kindStyle.Render(k)+StyleDim.Render(role))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", pipeline.DefaultPlatform, "cloud platform")
	return cmd
}
