// Package dag provides the reference graph used to order dependency-sensitive
// doc processing.
//
// # Overview
//
// Nodes are documentable IDs and an edge From → To means "From's doc
// references To's doc", for example through an include tag. Handlers that
// resolve references build a graph for the documentables that still carry
// their tags, then ask for a [DAG.TopologicalSort] so referenced docs are
// processed before the docs that include them.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "a.Foo"})
//	g.AddNode(dag.Node{ID: "a.Bar"})
//	g.AddEdge(dag.Edge{From: "a.Foo", To: "a.Bar"}) // Foo includes Bar
//	order, err := g.TopologicalSort()                // [a.Bar a.Foo]
//
// # Cycles
//
// A graph with a directed cycle cannot be ordered. [DAG.TopologicalSort]
// then returns [ErrGraphHasCycle] and never a partial order; the caller falls
// back to its input order and reports the cycle later. [DAG.Cycles] lists
// the strongly connected components that hold a cycle, which is what
// diagnostics print.
//
// # Invalidation
//
// The snapshot store keeps the edges recorded during the last run in a DAG
// and uses [DAG.Ancestors] to find every documentable that transitively
// includes a changed one.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Callers must synchronize access
// if multiple goroutines read or modify the same graph.
package dag
