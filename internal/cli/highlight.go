package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/docsmith/pkg/pipeline"
)

func (c *CLI) highlightCommand() *cobra.Command {
	var (
		from   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "highlight [dir] <id-or-path>",
		Short: "Show the tags of a declaration's source doc",
		Long: `Show the source doc of one declaration with its tags colored the way
editors highlight them. --json prints the highlight ranges instead.`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: c.completeTargets,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, target := ".", args[0]
			if len(args) == 2 {
				root, target = args[0], args[1]
			}
			return c.runHighlight(cmd.Context(), cmd.OutOrStdout(), root, target, from, asJSON)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "resolve the path relative to this documentable ID")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print highlight ranges as JSON")
	return cmd
}

func (c *CLI) runHighlight(ctx context.Context, out io.Writer, root, target, from string, asJSON bool) error {
	ws, err := c.openWorkspace(ctx, root)
	if err != nil {
		return err
	}
	defer ws.runner.Close()

	ix, err := ws.index()
	if err != nil {
		return err
	}
	d, err := lookup(ix, target, from)
	if err != nil {
		return err
	}
	p, err := pipeline.Build(c.options(ws), nil)
	if err != nil {
		return err
	}
	hs := p.Highlights(d.SourceDoc)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(hs)
	}
	fmt.Fprintln(out, StyleTitle.Render(d.Path)+" "+StyleDim.Render(d.ID))
	fmt.Fprintln(out, renderHighlights(d.SourceDoc, hs))
	return nil
}

// tagsCommand lists the tags of the configured pipeline.
func (c *CLI) tagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the tags the configured processors understand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(".")
			if err != nil {
				return err
			}
			opts := cfg.PipelineOptions()
			opts.Logger = c.Logger
			p, err := pipeline.Build(opts, nil)
			if err != nil {
				return err
			}

			rows := [][]string{}
			for _, ci := range p.Completions() {
				rows = append(rows, []string{ci.Tag, ci.PresentableBlockText, ci.PresentableInlineText, ci.TailText})
			}
			headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("Tag", "Block", "Inline", "Description").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					switch {
					case row == -1:
						return headerStyle
					case col == 0:
						return lipgloss.NewStyle().Foreground(colorCyan)
					}
					return lipgloss.NewStyle()
				})
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}
