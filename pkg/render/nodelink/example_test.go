package nodelink_test

import (
	"fmt"

	"github.com/matzehuels/docsmith/pkg/dag"
	"github.com/matzehuels/docsmith/pkg/render/nodelink"
)

func ExampleToDOT() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "update", Meta: dag.Metadata{"path": "p.update"}})
	_ = g.AddNode(dag.Node{ID: "note", Meta: dag.Metadata{"path": "p.ApiNote"}})
	_ = g.AddEdge(dag.Edge{From: "update", To: "note"})

	fmt.Print(nodelink.ToDOT(g, nodelink.Options{}))
	// Output:
	// digraph G {
	//   rankdir=TB;
	//   bgcolor="transparent";
	//   node [shape=box, style="rounded,filled", fillcolor=white, fontname="monospace", fontsize=14, margin="0.2,0.1"];
	//   ranksep=0.5;
	//   nodesep=0.3;
	//
	//   "update" [label="p.update"];
	//   "note" [label="p.ApiNote"];
	//
	//   "update" -> "note";
	// }
}
