package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve point queries over HTTP",
		Long: `Serve processed docs of a source tree over HTTP.

Routes:
  GET  /v1/docs/{id}          processed doc of one declaration
  GET  /v1/query?path=&from=  resolve a path
  GET  /v1/highlights?id=     tag highlights of a source doc
  GET  /v1/completions        completion entries
  GET  /v1/graph?format=      reference graph
  POST /v1/reload             reread the sources
  GET  /metrics               Prometheus metrics

The address defaults to [server].addr of the config.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), rootArg(args), addr, metrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (host:port)")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "serve Prometheus metrics at /metrics")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, root, addr string, metrics bool) error {
	ws, err := c.openWorkspace(ctx, root)
	if err != nil {
		return err
	}
	defer ws.runner.Close()
	if addr == "" {
		addr = ws.cfg.Server.Addr
	}

	opts := c.options(ws)
	if _, err := ws.runner.LoadSnapshot(ctx, ws.store, ws.root, opts); err != nil {
		c.Logger.Warn("snapshot unavailable", "err", err)
	}

	cfg := server.Config{
		Runner:  ws.runner,
		Store:   ws.store,
		Options: opts,
		Logger:  c.Logger,
		Load: func(ctx context.Context) ([]*corpus.Documentable, error) {
			return ws.read(ctx, c.Logger)
		},
	}
	if metrics {
		cfg.Metrics = server.NewMetrics()
	}
	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	res, err := srv.Reload(ctx)
	if err != nil {
		return fmt.Errorf("initial load: %w", err)
	}
	prog.done("corpus ready", "documentables", res.Stats.Documentables, "failed", res.Stats.Failed)
	if err := ws.runner.SaveSnapshot(ctx, ws.store, ws.root, opts); err != nil {
		c.Logger.Warn("snapshot not saved", "err", err)
	}

	printSuccess("Serving %s", ws.root)
	printKeyValue("Address", "http://"+addr)
	if metrics {
		printKeyValue("Metrics", "http://"+addr+"/metrics")
	}
	return srv.ListenAndServe(ctx, addr)
}
