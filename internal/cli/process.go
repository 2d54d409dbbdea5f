package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/docsmith/pkg/corpus"
	pkgio "github.com/matzehuels/docsmith/pkg/io"
	"github.com/matzehuels/docsmith/pkg/pipeline"
)

// processOpts holds the command-line flags for the process command.
type processOpts struct {
	outDir  string // write rewritten files under this directory
	write   bool   // rewrite files in place
	asJSON  bool   // print per-documentable results as JSON
	all     bool   // with outDir, also copy unchanged files
	recover bool   // isolate errors in batch mode
	mode    string // batch or interactive
}

func (c *CLI) processCommand() *cobra.Command {
	var opts processOpts

	cmd := &cobra.Command{
		Use:   "process [dir]",
		Short: "Resolve doc tags and rewrite the source files",
		Long: `Resolve every doc tag under dir (default: the current directory).

Without --write or --out the command is a dry run and prints the unified diff
of the changes it would make. Unchanged documentables are restored from the
snapshot cache, so repeated runs only reprocess what changed.

Examples:
  docsmith process                  # show the diff
  docsmith process --write          # rewrite files in place
  docsmith process -o build/docs    # write rewritten copies
  docsmith process --json           # per-documentable results`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.write && opts.outDir != "" {
				return fmt.Errorf("--write and --out are mutually exclusive")
			}
			if opts.mode != "" {
				if err := pipeline.ValidateMode(opts.mode); err != nil {
					return err
				}
			}
			return c.runProcess(cmd.Context(), cmd.OutOrStdout(), rootArg(args), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "write rewritten files under this directory")
	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "rewrite files in place")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&opts.all, "all", false, "with --out, also copy unchanged files")
	cmd.Flags().BoolVar(&opts.recover, "recover", false, "render failing docs as error blocks instead of aborting")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "processing mode: batch (default), interactive")

	return cmd
}

func (c *CLI) runProcess(ctx context.Context, out io.Writer, root string, po processOpts) error {
	ws, err := c.openWorkspace(ctx, root)
	if err != nil {
		return err
	}
	defer ws.runner.Close()

	opts := c.options(ws)
	opts.Recover = po.recover
	if po.mode != "" {
		opts.Mode = po.mode
	}

	ix, res, err := c.process(ctx, ws, opts)
	if err != nil {
		return err
	}

	switch {
	case po.asJSON:
		return pkgio.WriteResults(out, ix, res.Errors)
	case po.write || po.outDir != "":
		changed, err := pkgio.Rewrite(ws.root, ix, pkgio.RewriteOptions{OutDir: po.outDir, All: po.all})
		if err != nil {
			return err
		}
		if len(changed) == 0 {
			printSuccess("All docs up to date")
		} else {
			printSuccess("Rewrote %d files", len(changed))
			for _, f := range changed {
				printFile(f)
			}
		}
	default:
		diff, err := pkgio.Diff(ws.root, ix)
		if err != nil {
			return err
		}
		if diff == "" {
			printSuccess("All docs up to date")
		} else {
			writeDiff(out, diff)
		}
	}
	printStats(res)
	printErrors(res.Errors)
	return nil
}

// process runs the pipeline over the workspace, reusing and then updating
// the cached snapshot of its root.
func (c *CLI) process(ctx context.Context, ws *workspace, opts pipeline.Options) (*corpus.Index, *pipeline.Result, error) {
	ix, err := ws.index()
	if err != nil {
		return nil, nil, err
	}
	logger := loggerFromContext(ctx)

	spinner := newSpinner(ctx, "Loading snapshot...").Start()
	if _, err := ws.runner.LoadSnapshot(ctx, ws.store, ws.root, opts); err != nil {
		logger.Warn("snapshot unavailable", "err", err)
	}

	prog := newProgress(logger)
	spinner.Update(fmt.Sprintf("Processing %d documentables...", ix.Len()))
	res, err := ws.runner.Update(ctx, ws.store, ix, opts)
	spinner.Stop()
	if err != nil {
		return nil, nil, err
	}
	prog.done("processed corpus", "documentables", res.Stats.Documentables, "affected", res.CacheInfo.Affected)

	if err := ws.runner.SaveSnapshot(ctx, ws.store, ws.root, opts); err != nil {
		logger.Warn("snapshot not saved", "err", err)
	}
	return ix, res, nil
}
