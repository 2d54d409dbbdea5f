package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/docsmith/pkg/cache"
	"github.com/matzehuels/docsmith/pkg/dag"
	pkgio "github.com/matzehuels/docsmith/pkg/io"
	"github.com/matzehuels/docsmith/pkg/observability"
	"github.com/matzehuels/docsmith/pkg/render/nodelink"
)

// Render renders a reference graph in every format of opts.
func Render(ctx context.Context, g *dag.DAG, opts Options) (map[string][]byte, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed, LeftToRight: opts.LeftToRight})
	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, 2.0)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case FormatJSON:
			data, err = pkgio.MarshalGraph(g)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		out[format] = data
	}
	return out, nil
}

// RenderGraph renders g with caching and reports whether every format came
// from the cache.
func (r *Runner) RenderGraph(ctx context.Context, g *dag.DAG, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}

	graphData, err := pkgio.MarshalGraph(g)
	if err != nil {
		return nil, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	graphHash := cache.Hash(graphData)
	hooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.GraphKey(graphHash, opts.GraphKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				hooks.OnCacheMiss(ctx, "graph")
				break
			}
			hooks.OnCacheHit(ctx, "graph")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, g, opts)
	if err != nil {
		return nil, false, err
	}
	for _, format := range opts.Formats {
		key := r.Keyer.GraphKey(graphHash, opts.GraphKeyOpts(format))
		if err := r.Cache.Set(ctx, key, rendered[format], DefaultGraphTTL); err != nil {
			r.Logger.Warn("cache graph", "format", format, "err", err)
			continue
		}
		hooks.OnCacheSet(ctx, "graph", len(rendered[format]))
	}
	r.Logger.Debug("rendered graph", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "formats", opts.Formats)
	return rendered, false, nil
}
