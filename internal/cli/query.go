package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/errors"
)

// queryOpts holds the command-line flags for the query command.
type queryOpts struct {
	from   string // resolve the target relative to this documentable ID
	asJSON bool
}

func (c *CLI) queryCommand() *cobra.Command {
	var opts queryOpts

	cmd := &cobra.Command{
		Use:   "query [dir] <id-or-path>",
		Short: "Print the processed doc of one declaration",
		Long: `Print the processed doc of one declaration.

The target is a documentable ID (file#path#ordinal) or a path. A path is
looked up absolutely, or relative to --from the way tags resolve it. Only the
declarations the target depends on are reprocessed; failures are shown as
inline error blocks.

Examples:
  docsmith query com.example.Cart.add
  docsmith query ./src --from 'Cart.kt#com.example.Cart#0' add`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: c.completeTargets,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, target := ".", args[0]
			if len(args) == 2 {
				root, target = args[0], args[1]
			}
			return c.runQuery(cmd.Context(), cmd.OutOrStdout(), root, target, opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "resolve the path relative to this documentable ID")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	return cmd
}

func (c *CLI) runQuery(ctx context.Context, out io.Writer, root, target string, qo queryOpts) error {
	ws, err := c.openWorkspace(ctx, root)
	if err != nil {
		return err
	}
	defer ws.runner.Close()

	ix, err := ws.index()
	if err != nil {
		return err
	}
	d, err := lookup(ix, target, qo.from)
	if err != nil {
		return err
	}

	opts := c.options(ws)
	if _, err := ws.runner.LoadSnapshot(ctx, ws.store, ws.root, opts); err != nil {
		c.Logger.Warn("snapshot unavailable", "err", err)
	}
	content, err := ws.runner.Query(ctx, ws.store, ix, d.ID, opts)
	if err != nil {
		return err
	}
	if err := ws.runner.SaveSnapshot(ctx, ws.store, ws.root, opts); err != nil {
		c.Logger.Warn("snapshot not saved", "err", err)
	}

	if qo.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{"id": d.ID, "path": d.Path, "doc": string(content)})
	}
	s := string(content)
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err = fmt.Fprint(out, s)
	return err
}

// lookup finds the documentable named by target: an ID, a path relative to
// the documentable from, or an absolute path.
func lookup(ix *corpus.Index, target, from string) (*corpus.Documentable, error) {
	if d, ok := ix.Get(target); ok {
		return d, nil
	}
	if from != "" {
		src, ok := ix.Get(from)
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "no documentable with id %q", from)
		}
		if d := ix.Query(src, target, nil); d != nil {
			return d, nil
		}
		return nil, errors.New(errors.ErrCodeReferenceNotFound, "%q not found; tried %s",
			target, strings.Join(ix.AttemptedPaths(src, target), ", "))
	}
	if docs := ix.ByPath(target); len(docs) > 0 {
		return docs[0], nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "no documentable with id or path %q", target)
}
