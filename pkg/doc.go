// Package pkg provides the libraries behind docsmith, a preprocessor that
// resolves documentation tags in Go, Java and Kotlin doc comments.
//
// # Overview
//
// A doc comment may pull in text from another declaration, a file or a
// variable:
//
//	/**
//	 * Adds an item.
//	 * @include [CartNote]
//	 * @set operation add
//	 */
//
// docsmith loads every documentable declaration of a source tree, runs a
// chain of tag processors over their docs and writes the results back.
//
// # Architecture
//
//	Source tree or manifest
//	         ↓
//	    [source] (discover files, extract documentables)
//	         ↓
//	    [corpus] (index by ID and path, resolve relative references)
//	         ↓
//	    [processors] (include, includeFile, arg, comment, exportAsHtml, ...)
//	         ↓
//	    [snapshot] (incremental reprocessing of affected docs)
//	         ↓
//	    [io] (splice docs into files, diff, JSON results)
//
// [pipeline] drives the chain for the CLI, the HTTP server and the watcher,
// with [cache] persisting snapshots and rendered reference graphs between
// runs.
//
// # Quick Start
//
//	docs, _ := source.Load(ctx, "./src", source.Options{})
//	ix, _ := corpus.NewIndex(docs)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, _ := runner.Process(ctx, ix, pipeline.Options{})
//	for id, err := range res.Errors {
//	    fmt.Println(id, errors.UserMessage(err))
//	}
//	changed, _ := io.Rewrite("./src", ix, io.RewriteOptions{})
//
// # Main Packages
//
// [doc] - Doc content: comment parsing, rendering and line/tag helpers.
//
// [tags] - Block and inline tag scanning, argument splitting and highlight
// ranges for editors.
//
// [processor] - The processor contract, per-run state and the pipeline that
// iterates processors until no tag is left.
//
// [processors] - The built-in tag processors.
//
// [dag] - The reference graph between documentables, with cycle detection.
//
// [render/nodelink] - Graphviz diagrams of the reference graph.
//
// [server] - The HTTP API over a loaded corpus.
//
// [config] - docsmith.toml.
//
// [source]: https://pkg.go.dev/github.com/matzehuels/docsmith/pkg/source
// [corpus]: https://pkg.go.dev/github.com/matzehuels/docsmith/pkg/corpus
// [processors]: https://pkg.go.dev/github.com/matzehuels/docsmith/pkg/processors
// [processor]: https://pkg.go.dev/github.com/matzehuels/docsmith/pkg/processor
// [snapshot]: https://pkg.go.dev/github.com/matzehuels/docsmith/pkg/snapshot
// [io]: https://pkg.go.dev/github.com/matzehuels/docsmith/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/docsmith/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/docsmith/pkg/cache
// [doc]: https://pkg.go.dev/github.com/matzehuels/docsmith/pkg/doc
// [tags]: https://pkg.go.dev/github.com/matzehuels/docsmith/pkg/tags
// [dag]: https://pkg.go.dev/github.com/matzehuels/docsmith/pkg/dag
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/docsmith/pkg/render/nodelink
// [server]: https://pkg.go.dev/github.com/matzehuels/docsmith/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/docsmith/pkg/config
package pkg
