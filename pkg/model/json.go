package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type document struct {
	Nodes []node `json:"nodes"`
}

type node struct {
	ID     string   `json:"id"`
	Parent string   `json:"parent,omitempty"`
	Name   string   `json:"name,omitempty"`
	Meta   string   `json:"meta"`
	Src    string   `json:"src,omitempty"`
	Dst    string   `json:"dst,omitempty"`
	Attrs  Metadata `json:"attrs,omitempty"`
}

// ReadJSON decodes a JSON model from r into a Tree.
//
// ReadJSON returns an error if the JSON is malformed, a node ID is invalid or
// duplicated, a parent is unknown or listed after its child, or the model has
// zero or more than one root. Errors name the offending node.
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Tree, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	t := NewTree()
	for _, n := range doc.Nodes {
		nd := &Node{
			ID:    n.ID,
			Name:  n.Name,
			Meta:  n.Meta,
			Src:   n.Src,
			Dst:   n.Dst,
			Attrs: n.Attrs,
		}
		if err := t.Add(nd, n.Parent); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	if t.Root() == nil {
		return nil, fmt.Errorf("model has no root node")
	}
	return t, nil
}

// ImportJSON reads a JSON model file at path.
func ImportJSON(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteJSON encodes t as JSON in insertion order. The output can be read back
// with [ReadJSON].
func WriteJSON(t *Tree, w io.Writer) error {
	nodes := t.Nodes()
	out := document{Nodes: make([]node, len(nodes))}
	for i, n := range nodes {
		nd := node{
			ID:     n.ID,
			Parent: n.ParentID(),
			Name:   n.Name,
			Meta:   n.Meta,
			Src:    n.Src,
			Dst:    n.Dst,
		}
		if len(n.Attrs) > 0 {
			nd.Attrs = n.Attrs
		}
		out.Nodes[i] = nd
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
