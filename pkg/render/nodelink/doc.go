// Package nodelink renders reference graphs as node-link diagrams.
//
// Nodes are documentables, labeled by path, and an arrow points from a doc
// to every doc it includes. Documentables taking part in a reference cycle
// are drawn in red, so the "Circular references detected" error can be
// traced visually.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0) // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
