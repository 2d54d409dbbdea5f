package dag

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [DAG.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrGraphHasCycle is returned by [DAG.Validate] and [DAG.TopologicalSort]
	// when the graph contains a directed cycle. It is a plain status, callers
	// decide how to fall back.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes, edges or the
// graph. Reference graphs store the documentable path under "path".
type Metadata map[string]any

// Node is a vertex of the reference graph, usually a documentable ID.
type Node struct {
	ID   string   // Unique identifier
	Meta Metadata // Arbitrary key-value metadata (never nil after AddNode)
}

// Label returns the "path" metadata if present, otherwise the ID.
func (n Node) Label() string {
	if p, ok := n.Meta["path"].(string); ok && p != "" {
		return p
	}
	return n.ID
}

// Edge is a directed reference: From's doc references To's doc.
type Edge struct {
	From string   // Referencing node ID
	To   string   // Referenced node ID
	Meta Metadata // Arbitrary key-value metadata (never nil after AddEdge)
}

// DAG is a directed graph of references between documentables. Despite the
// name it may temporarily hold cycles; [DAG.Validate], [DAG.TopologicalSort]
// and [DAG.Cycles] report them.
//
// Node iteration order is insertion order, which keeps every algorithm in
// this package deterministic.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	outgoing map[string][]string // nodeID -> referenced IDs
	incoming map[string][]string // nodeID -> referencing IDs
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
// The metadata parameter can be nil, in which case an empty map is created.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	d.nodes[n.ID] = &n
	d.order = append(d.order, n.ID)
	return nil
}

// EnsureNode adds a node with the given ID unless it already exists.
func (d *DAG) EnsureNode(id string, meta Metadata) {
	if _, ok := d.nodes[id]; ok || id == "" {
		return
	}
	_ = d.AddNode(Node{ID: id, Meta: meta})
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode if the From node doesn't exist, or
// ErrUnknownTargetNode if the To node doesn't exist. Duplicate edges are
// ignored.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if slices.Contains(d.outgoing[e.From], e.To) {
		return nil
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes the edge from→to if it exists.
func (d *DAG) RemoveEdge(from, to string) {
	d.edges = slices.DeleteFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to })
	d.outgoing[from] = slices.DeleteFunc(d.outgoing[from], func(s string) bool { return s == to })
	d.incoming[to] = slices.DeleteFunc(d.incoming[to], func(s string) bool { return s == from })
}

// RemoveOutgoing removes every edge starting at id. It is used when a
// documentable is reprocessed and its references are recorded anew.
func (d *DAG) RemoveOutgoing(id string) {
	for _, to := range slices.Clone(d.outgoing[id]) {
		d.RemoveEdge(id, to)
	}
}

// RemoveNode removes a node and all edges touching it.
func (d *DAG) RemoveNode(id string) {
	if _, ok := d.nodes[id]; !ok {
		return
	}
	d.RemoveOutgoing(id)
	for _, from := range slices.Clone(d.incoming[id]) {
		d.RemoveEdge(from, id)
	}
	delete(d.nodes, id)
	delete(d.outgoing, id)
	delete(d.incoming, id)
	d.order = slices.DeleteFunc(d.order, func(s string) bool { return s == id })
}

// Nodes returns all nodes in insertion order. The returned slice contains
// pointers to the actual node structs, so modifications affect the graph.
func (d *DAG) Nodes() []*Node {
	nodes := make([]*Node, 0, len(d.order))
	for _, id := range d.order {
		nodes = append(nodes, d.nodes[id])
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the IDs referenced by id. The returned slice should not
// be modified.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the IDs referencing id. The returned slice should not be
// modified.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Sources returns nodes that nothing references, in insertion order.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			sources = append(sources, d.nodes[id])
		}
	}
	return sources
}

// Sinks returns nodes that reference nothing, in insertion order.
func (d *DAG) Sinks() []*Node {
	var sinks []*Node
	for _, id := range d.order {
		if len(d.outgoing[id]) == 0 {
			sinks = append(sinks, d.nodes[id])
		}
	}
	return sinks
}

// Ancestors returns every node that transitively references one of ids,
// excluding ids themselves unless they lie on a cycle through another seed.
// The result is in breadth-first discovery order.
func (d *DAG) Ancestors(ids ...string) []string {
	seen := make(map[string]bool, len(ids))
	queue := slices.Clone(ids)
	var out []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, p := range d.incoming[id] {
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
			queue = append(queue, p)
		}
	}
	return out
}

// Validate checks graph integrity and returns nil if valid.
//
// Returns ErrInvalidEdgeEndpoint if an edge references a missing node, or
// ErrGraphHasCycle if a cycle is detected.
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		_, okS := d.nodes[e.From]
		_, okD := d.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
	}
	if len(d.Cycles()) > 0 {
		return ErrGraphHasCycle
	}
	return nil
}

// TopologicalSort orders nodes so that every referenced node comes before
// the nodes referencing it (targets before referrers). Ties are broken by
// insertion order. A cyclic graph yields ErrGraphHasCycle and no partial
// order.
func (d *DAG) TopologicalSort() ([]string, error) {
	// Kahn's algorithm over reversed edges: a node is ready once all of
	// its references are emitted.
	pending := make(map[string]int, len(d.nodes))
	for _, id := range d.order {
		pending[id] = len(d.outgoing[id])
	}

	var ready []string
	for _, id := range d.order {
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}

	pos := PosMap(d.order)
	out := make([]string, 0, len(d.order))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		out = append(out, id)

		var unlocked []string
		for _, p := range d.incoming[id] {
			pending[p]--
			if pending[p] == 0 {
				unlocked = append(unlocked, p)
			}
		}
		slices.SortFunc(unlocked, func(a, b string) int { return pos[a] - pos[b] })
		ready = append(ready, unlocked...)
	}

	if len(out) != len(d.order) {
		return nil, ErrGraphHasCycle
	}
	return out, nil
}

// Cycles returns the strongly connected components that contain a cycle,
// each listed in insertion order. Self-loops count as cycles.
func (d *DAG) Cycles() [][]string {
	index := 0
	indices := make(map[string]int, len(d.nodes))
	lowlink := make(map[string]int, len(d.nodes))
	onStack := make(map[string]bool, len(d.nodes))
	var stack []string
	var comps [][]string

	var strongConnect func(id string)
	strongConnect = func(id string) {
		indices[id] = index
		lowlink[id] = index
		index++
		stack = append(stack, id)
		onStack[id] = true

		for _, child := range d.outgoing[id] {
			if _, visited := indices[child]; !visited {
				strongConnect(child)
				lowlink[id] = min(lowlink[id], lowlink[child])
			} else if onStack[child] {
				lowlink[id] = min(lowlink[id], indices[child])
			}
		}

		if lowlink[id] != indices[id] {
			return
		}
		var comp []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			comp = append(comp, top)
			if top == id {
				break
			}
		}
		if len(comp) > 1 || slices.Contains(d.outgoing[id], id) {
			comps = append(comps, comp)
		}
	}

	for _, id := range d.order {
		if _, visited := indices[id]; !visited {
			strongConnect(id)
		}
	}

	pos := PosMap(d.order)
	for _, c := range comps {
		slices.SortFunc(c, func(a, b string) int { return pos[a] - pos[b] })
	}
	slices.SortFunc(comps, func(a, b []string) int { return pos[a[0]] - pos[b[0]] })
	return comps
}

// Subgraph returns a copy holding only the given nodes and the edges
// between them.
func (d *DAG) Subgraph(keep func(id string) bool) *DAG {
	sub := New(d.meta)
	for _, id := range d.order {
		if keep(id) {
			_ = sub.AddNode(Node{ID: id, Meta: d.nodes[id].Meta})
		}
	}
	for _, e := range d.edges {
		if keep(e.From) && keep(e.To) {
			_ = sub.AddEdge(e)
		}
	}
	return sub
}

// PosMap creates a position lookup map from a slice of node IDs.
// The returned map maps each ID to its index in the slice.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
