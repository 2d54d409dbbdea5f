package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/docsmith/pkg/io"
)

// errOutOfDate is returned by check when processing would change files.
var errOutOfDate = errors.New("docs are out of date")

func (c *CLI) checkCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Fail if processing would change any source file",
		Long: `Process dir like 'process' without writing anything, and fail when the
processed docs differ from the files. Use it in CI to keep generated docs in
sync with their sources.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), cmd.OutOrStdout(), rootArg(args), quiet)
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the diff")
	return cmd
}

func (c *CLI) runCheck(ctx context.Context, out io.Writer, root string, quiet bool) error {
	ws, err := c.openWorkspace(ctx, root)
	if err != nil {
		return err
	}
	defer ws.runner.Close()

	ix, _, err := c.process(ctx, ws, c.options(ws))
	if err != nil {
		return err
	}
	diff, err := pkgio.Diff(ws.root, ix)
	if err != nil {
		return err
	}
	if diff == "" {
		printSuccess("Docs are up to date")
		return nil
	}
	if !quiet {
		writeDiff(out, diff)
	}
	files := strings.Count(diff, "\n+++ b/")
	printError("%d files out of date", files)
	printNextStep("Update them", appName+" process --write")
	return errOutOfDate
}
