package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/docsmith/pkg/dag"
	pkgio "github.com/matzehuels/docsmith/pkg/io"
	"github.com/matzehuels/docsmith/pkg/pipeline"
	"github.com/matzehuels/docsmith/pkg/processors"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output      string
	formats     string
	detailed    bool
	leftToRight bool
	resolved    bool
	input       string
}

func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph [dir]",
		Short: "Render the include graph of a source tree",
		Long: `Render the include graph of a source tree.

By default the graph is read from the @include tags of the source docs, and
circular includes are drawn in red. --resolved processes the tree first and
draws the references that actually resolved. --input re-renders a graph saved
earlier with -f json, without loading any sources.

Rendered graphs are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(opts.formats)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			if opts.input != "" {
				if opts.resolved || len(args) > 0 {
					return fmt.Errorf("--input takes neither a directory nor --resolved")
				}
				return c.runGraphFile(cmd.Context(), formats, opts)
			}
			return c.runGraph(cmd.Context(), rootArg(args), formats, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with their IDs")
	cmd.Flags().BoolVar(&opts.leftToRight, "lr", false, "lay the graph out left to right")
	cmd.Flags().BoolVar(&opts.resolved, "resolved", false, "draw resolved references instead of declared includes")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "render a graph JSON file instead of a source tree")
	return cmd
}

func (c *CLI) runGraph(ctx context.Context, root string, formats []string, gopts graphOpts) error {
	ws, err := c.openWorkspace(ctx, root)
	if err != nil {
		return err
	}
	defer ws.runner.Close()

	opts := c.options(ws)
	opts.Formats = formats
	opts.Detailed = gopts.detailed
	opts.LeftToRight = gopts.leftToRight

	var g *dag.DAG
	if gopts.resolved {
		// Failing docs still appear in the graph.
		opts.Recover = true
		ix, _, err := c.process(ctx, ws, opts)
		if err != nil {
			return err
		}
		g = ws.store.Graph(ix)
	} else {
		ix, err := ws.index()
		if err != nil {
			return err
		}
		g = processors.IncludeGraph(ix)
	}

	return c.renderGraph(ctx, ws.runner, g, opts, gopts)
}

// runGraphFile renders a graph saved with -f json.
func (c *CLI) runGraphFile(ctx context.Context, formats []string, gopts graphOpts) error {
	g, err := pkgio.ImportGraph(gopts.input)
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig(filepath.Dir(gopts.input))
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := cfg.PipelineOptions()
	opts.Refresh = c.refresh
	opts.Formats = formats
	opts.Detailed = gopts.detailed
	opts.LeftToRight = gopts.leftToRight
	return c.renderGraph(ctx, runner, g, opts, gopts)
}

func (c *CLI) renderGraph(ctx context.Context, runner *pipeline.Runner, g *dag.DAG, opts pipeline.Options, gopts graphOpts) error {
	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %d nodes...", g.NodeCount())).Start()
	artifacts, cacheHit, err := runner.RenderGraph(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return fmt.Errorf("render graph: %w", err)
	}
	spinner.StopWithSuccess("Graph rendered")

	base := basePath(gopts.output)
	for _, format := range opts.Formats {
		path := base + "." + format
		if len(opts.Formats) == 1 && gopts.output != "" {
			path = gopts.output
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	status := iconFresh
	if cacheHit {
		status = iconCached
	}
	printDetail("%d nodes · %d edges · %s", g.NodeCount(), g.EdgeCount(), status)
	if cycles := g.Cycles(); len(cycles) > 0 {
		printWarning("%d include cycles", len(cycles))
		for _, cycle := range cycles {
			printDetail("%s", strings.Join(cycle, " → "))
		}
	}
	return nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// basePath strips a known format extension from output. The default base
// is "docsmith-graph".
func basePath(output string) string {
	if output == "" {
		return appName + "-graph"
	}
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
