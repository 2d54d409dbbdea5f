// Package render turns reference graphs into images.
//
// The [nodelink] subpackage produces Graphviz diagrams of the include graph.
// [ToPDF] and [ToPNG] convert any SVG to other formats using the external
// rsvg-convert tool (from librsvg):
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [nodelink]: github.com/matzehuels/docsmith/pkg/render/nodelink
package render
