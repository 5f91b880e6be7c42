package model

import (
	"context"
	"slices"

	"github.com/matzehuels/sysmlexport/pkg/errors"
)

// Metadata stores arbitrary key-value attributes attached to nodes.
type Metadata map[string]any

// Node is a handle into the model tree.
//
// The zero value is not usable - ID must be set and the node must be added
// to a [Tree], which also sets Parent.
type Node struct {
	ID     string   // Unique path identifier (e.g. "/1/4")
	Name   string   // Display name
	Meta   string   // Meta-type name (e.g. "Actor")
	Src    string   // Source endpoint ID (relationship nodes only)
	Dst    string   // Destination endpoint ID (relationship nodes only)
	Attrs  Metadata // Arbitrary attributes (never nil after Tree.Add)
	Parent *Node    // Structural parent (nil for the root)
}

// Label returns the node name, falling back to its ID.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// ParentID returns the parent's identifier, or "" for the root.
func (n *Node) ParentID() string {
	if n.Parent == nil {
		return ""
	}
	return n.Parent.ID
}

// Attr returns the string form of an attribute, or "" if it is not set.
func (n *Node) Attr(key string) string {
	v, ok := n.Attrs[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// ChildLoader returns the ordered children of a node.
type ChildLoader interface {
	LoadChildren(ctx context.Context, n *Node) ([]*Node, error)
}

// ChildLoaderFunc adapts a function to [ChildLoader].
type ChildLoaderFunc func(ctx context.Context, n *Node) ([]*Node, error)

// LoadChildren calls f(ctx, n).
func (f ChildLoaderFunc) LoadChildren(ctx context.Context, n *Node) ([]*Node, error) {
	return f(ctx, n)
}

// Tree is an in-memory model store.
//
// Tree is not safe for concurrent mutation, but once built it is safe for
// concurrent use by any number of readers.
type Tree struct {
	root     *Node
	order    []*Node
	nodes    map[string]*Node
	children map[string][]*Node
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{
		nodes:    make(map[string]*Node),
		children: make(map[string][]*Node),
	}
}

// Add inserts n under the node identified by parentID. An empty parentID
// makes n the root; a tree has exactly one root.
func (t *Tree) Add(n *Node, parentID string) error {
	if err := errors.ValidateNodeID(n.ID); err != nil {
		return err
	}
	if _, exists := t.nodes[n.ID]; exists {
		return errors.New(errors.ErrCodeInvalidModel, "duplicate node id %q", n.ID)
	}
	if parentID == "" {
		if t.root != nil {
			return errors.New(errors.ErrCodeInvalidModel, "node %q has no parent but root %q already exists", n.ID, t.root.ID)
		}
		n.Parent = nil
		t.root = n
	} else {
		parent, ok := t.nodes[parentID]
		if !ok {
			return errors.New(errors.ErrCodeInvalidModel, "node %q references unknown parent %q", n.ID, parentID)
		}
		n.Parent = parent
		t.children[parentID] = append(t.children[parentID], n)
	}
	if n.Attrs == nil {
		n.Attrs = Metadata{}
	}
	t.nodes[n.ID] = n
	t.order = append(t.order, n)
	return nil
}

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() *Node { return t.root }

// Node returns the node with the given ID.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (t *Tree) Nodes() []*Node { return slices.Clone(t.order) }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.order) }

// Children returns the ordered children of the node with the given ID.
func (t *Tree) Children(id string) []*Node { return slices.Clone(t.children[id]) }

// LoadChildren implements [ChildLoader]. It fails for nodes that do not
// belong to the tree and when ctx is done.
func (t *Tree) LoadChildren(ctx context.Context, n *Node) ([]*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil node")
	}
	if _, ok := t.nodes[n.ID]; !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %q is not part of the model", n.ID)
	}
	return t.Children(n.ID), nil
}

// Lookup resolves a node by ID.
func (t *Tree) Lookup(ctx context.Context, id string) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, ok := t.nodes[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
	}
	return n, nil
}

// Ensure Tree implements ChildLoader.
var _ ChildLoader = (*Tree)(nil)
