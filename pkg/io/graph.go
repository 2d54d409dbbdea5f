package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/matzehuels/docsmith/pkg/dag"
)

// graphJSON is the on-disk form of a reference graph. The documentable path
// is lifted out of the metadata so readers need not know the meta keys.
type graphJSON struct {
	Nodes  []nodeJSON `json:"nodes"`
	Edges  []edgeJSON `json:"edges"`
	Cycles [][]string `json:"cycles,omitempty"`
}

type nodeJSON struct {
	ID   string       `json:"id"`
	Path string       `json:"path,omitempty"`
	Meta dag.Metadata `json:"meta,omitempty"`
}

type edgeJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
}

const pathKey = "path"

// WriteGraph encodes a reference graph as indented JSON. Cycles are listed
// for readers; ReadGraph ignores them.
func WriteGraph(g *dag.DAG, w io.Writer) error {
	out := graphJSON{
		Nodes:  make([]nodeJSON, 0, g.NodeCount()),
		Edges:  make([]edgeJSON, 0, g.EdgeCount()),
		Cycles: g.Cycles(),
	}
	for _, n := range g.Nodes() {
		nd := nodeJSON{ID: n.ID}
		if p, ok := n.Meta[pathKey].(string); ok {
			nd.Path = p
		}
		if rest := maps.Clone(n.Meta); len(rest) > 0 {
			delete(rest, pathKey)
			if len(rest) > 0 {
				nd.Meta = rest
			}
		}
		out.Nodes = append(out.Nodes, nd)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edgeJSON{From: e.From, To: e.To})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}

// MarshalGraph returns the JSON encoding of g.
func MarshalGraph(g *dag.DAG) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadGraph decodes a JSON reference graph. Edges must name known nodes.
func ReadGraph(r io.Reader) (*dag.DAG, error) {
	var in graphJSON
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}

	g := dag.New(nil)
	for _, n := range in.Nodes {
		meta := maps.Clone(n.Meta)
		if n.Path != "" {
			if meta == nil {
				meta = dag.Metadata{}
			}
			meta[pathKey] = n.Path
		}
		if err := g.AddNode(dag.Node{ID: n.ID, Meta: meta}); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range in.Edges {
		if err := g.AddEdge(dag.Edge{From: e.From, To: e.To}); err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

// ImportGraph reads a graph file written by `docsmith graph -f json`.
func ImportGraph(path string) (*dag.DAG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := ReadGraph(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
