package dag_test

import (
	"errors"
	"fmt"

	"github.com/matzehuels/docsmith/pkg/dag"
)

func ExampleDAG_basic() {
	// a.Foo includes a.Bar, which includes a.Baz
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a.Foo"})
	_ = g.AddNode(dag.Node{ID: "a.Bar"})
	_ = g.AddNode(dag.Node{ID: "a.Baz"})
	_ = g.AddEdge(dag.Edge{From: "a.Foo", To: "a.Bar"})
	_ = g.AddEdge(dag.Edge{From: "a.Bar", To: "a.Baz"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	// Output:
	// Nodes: 3
	// Edges: 2
}

func ExampleDAG_TopologicalSort() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "app"})
	_ = g.AddNode(dag.Node{ID: "shared"})
	_ = g.AddNode(dag.Node{ID: "base"})
	_ = g.AddEdge(dag.Edge{From: "app", To: "shared"})
	_ = g.AddEdge(dag.Edge{From: "shared", To: "base"})

	order, err := g.TopologicalSort()
	fmt.Println(order, err)
	// Output:
	// [base shared app] <nil>
}

func ExampleDAG_Cycles() {
	// A includes B and B includes A
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "A"})
	_ = g.AddNode(dag.Node{ID: "B"})
	_ = g.AddNode(dag.Node{ID: "C"})
	_ = g.AddEdge(dag.Edge{From: "A", To: "B"})
	_ = g.AddEdge(dag.Edge{From: "B", To: "A"})
	_ = g.AddEdge(dag.Edge{From: "C", To: "A"})

	_, err := g.TopologicalSort()
	fmt.Println("Sortable:", !errors.Is(err, dag.ErrGraphHasCycle))
	fmt.Println("Cycles:", g.Cycles())
	// Output:
	// Sortable: false
	// Cycles: [[A B]]
}

func ExampleDAG_Ancestors() {
	// Which docs must be rebuilt when "base" changes?
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "app"})
	_ = g.AddNode(dag.Node{ID: "cli"})
	_ = g.AddNode(dag.Node{ID: "shared"})
	_ = g.AddNode(dag.Node{ID: "base"})
	_ = g.AddEdge(dag.Edge{From: "app", To: "shared"})
	_ = g.AddEdge(dag.Edge{From: "cli", To: "shared"})
	_ = g.AddEdge(dag.Edge{From: "shared", To: "base"})

	fmt.Println(g.Ancestors("base"))
	// Output:
	// [shared app cli]
}
