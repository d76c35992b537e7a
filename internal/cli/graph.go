package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/depscout/depscout/pkg/analysis"
	"github.com/depscout/depscout/pkg/render"
	"github.com/depscout/depscout/pkg/requirements"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output   string
		format   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph [file]",
		Short: "Render the dependency graph of a requirements file",
		Long: `Graph resolves each requirement's first-level dependencies and renders
them as an image. Reads stdin when the file is "-" or omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, source, err := readInput(args)
			if err != nil {
				return err
			}
			reqs := requirements.ParseAll(text)
			if len(reqs) == 0 {
				return fmt.Errorf("%s: %w", source, analysis.ErrNoPackages)
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			engine, err := c.newEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			spin := newSpinner(cmd.Context(), "Resolving dependencies")
			spin.Start()
			tree := analysis.BuildTree(cmd.Context(), engine.Provider, reqs)
			spin.Stop()

			dot := render.ToDOT(tree, render.Options{Detailed: detailed})

			var data []byte
			switch format {
			case "dot":
				data = []byte(dot)
			case "svg":
				data, err = render.SVG(cmd.Context(), dot)
			case "png":
				data, err = render.PNG(cmd.Context(), dot)
			default:
				return fmt.Errorf("unknown format %q (want dot, svg or png)", format)
			}
			if err != nil {
				return fmt.Errorf("render graph: %w", err)
			}

			if output == "" {
				output = "dependencies." + format
			}
			if output == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write graph: %w", err)
			}

			printSuccess("Rendered %d packages", len(tree))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file ("-" for stdout)`)
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: dot, svg or png")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include dependency counts in node labels")

	cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return filterPrefix([]string{"dot", "svg", "png"}, toComplete), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func filterPrefix(options []string, prefix string) []string {
	var out []string
	for _, o := range options {
		if strings.HasPrefix(o, prefix) {
			out = append(out, o)
		}
	}
	return out
}
