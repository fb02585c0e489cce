package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/drawtf/pkg/pipeline"
)

type drawFlags struct {
	name      string
	state     string
	platform  string
	output    string
	config    string
	formats   string
	direction string
	noCache   bool
	redisURL  string
}

// drawCommand creates the "draw" command.
func (c *CLI) drawCommand() *cobra.Command {
	var f drawFlags

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Draw a diagram from terraform state and/or a diagram config",
		Long: `Draw reads a terraform state file and an optional diagram config, groups the
resources and renders one file per requested format.

Flags win over config values. The output path defaults to the config path
without extension, then the state path without extension, then the name.`,
		Example: `  drawtf draw --state terraform.tfstate
  drawtf draw -c diagram.json -f svg,png
  drawtf draw --state prod.tfstate --name Production -o docs/prod -f dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDraw(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.name, "name", "", "diagram name (default \"Design\")")
	cmd.Flags().StringVar(&f.state, "state", "", "terraform state file")
	cmd.Flags().StringVar(&f.platform, "platform", pipeline.DefaultPlatform, "cloud platform")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output path without extension")
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "diagram config file (.json, .yaml, .toml)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", pipeline.DefaultFormat, "output formats, comma separated: dot, svg, png, jpg, pdf")
	cmd.Flags().StringVar(&f.direction, "direction", pipeline.DefaultDirection, "layout direction: TB, BT, LR, RL")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().StringVar(&f.redisURL, "redis-url", "", "use a shared Redis artifact cache")

	_ = cmd.RegisterFlagCompletionFunc("platform", cobra.FixedCompletions(pipeline.Platforms(), cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("direction", cobra.FixedCompletions(pipeline.Directions, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runDraw(cmd *cobra.Command, f drawFlags) error {
	runner, err := c.newRunner(f.noCache, f.redisURL)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := pipeline.Options{
		Name:       f.name,
		Platform:   f.platform,
		Direction:  f.direction,
		Formats:    parseFormats(f.formats),
		StatePath:  f.state,
		ConfigPath: f.config,
		OutputPath: f.output,
		Logger:     c.Logger,
	}

	prog := newProgress(c.Logger)
	result, err := runner.Execute(cmd.Context(), opts)
	if err != nil {
		return err
	}

	paths, err := pipeline.WriteArtifacts(result.Options.OutputPath, result.Options.Formats, result.Artifacts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Drew %d components", result.Stats.Components))

	out := printer{c.Out}
	out.success("Diagram written")
	for _, p := range paths {
		out.file(p)
	}
	out.stats(result.Stats.Components, result.Stats.Nodes, result.Stats.Edges, result.RenderHit())
	if n := len(result.Report.Links.Skipped); n > 0 {
		out.warning("%d link(s) skipped, endpoints not in diagram", n)
	}
	if n := len(result.Report.Duplicates); n > 0 {
		out.warning("%d duplicate component key(s), last one drawn", n)
	}
	return nil
}
