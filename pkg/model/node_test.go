package model

import (
	"context"
	"testing"

	"github.com/matzehuels/sysmlexport/pkg/errors"
)

func buildTree(t *testing.T) *Tree {
	t.Helper()
	tr := NewTree()
	add := func(n *Node, parent string) {
		if err := tr.Add(n, parent); err != nil {
			t.Fatalf("Add(%s) error: %v", n.ID, err)
		}
	}
	add(&Node{ID: "/", Meta: TypeFCO}, "")
	add(&Node{ID: "/1", Name: "Pkg", Meta: TypePackage}, "/")
	add(&Node{ID: "/1/a", Name: "Driver", Meta: TypeActor}, "/1")
	add(&Node{ID: "/1/u", Name: "Drive", Meta: TypeUseCase}, "/1")
	return tr
}

func TestTreeAdd(t *testing.T) {
	tr := buildTree(t)

	if tr.Len() != 4 {
		t.Errorf("Len() = %d, want 4", tr.Len())
	}
	if tr.Root() == nil || tr.Root().ID != "/" {
		t.Fatalf("Root() = %v, want /", tr.Root())
	}

	a, ok := tr.Node("/1/a")
	if !ok {
		t.Fatal("node /1/a not found")
	}
	if a.ParentID() != "/1" {
		t.Errorf("ParentID() = %q, want /1", a.ParentID())
	}
	if a.Attrs == nil {
		t.Error("Attrs should be initialized")
	}
	if tr.Root().ParentID() != "" {
		t.Errorf("root ParentID() = %q, want empty", tr.Root().ParentID())
	}
}

func TestTreeAddErrors(t *testing.T) {
	tr := buildTree(t)

	tests := []struct {
		name   string
		node   *Node
		parent string
	}{
		{"duplicate", &Node{ID: "/1"}, "/"},
		{"unknown parent", &Node{ID: "/9/x"}, "/9"},
		{"second root", &Node{ID: "/other"}, ""},
		{"empty id", &Node{ID: ""}, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tr.Add(tt.node, tt.parent)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidModel) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidModel)
			}
		})
	}
}

func TestTreeLoadChildren(t *testing.T) {
	tr := buildTree(t)
	ctx := context.Background()

	pkg, _ := tr.Node("/1")
	children, err := tr.LoadChildren(ctx, pkg)
	if err != nil {
		t.Fatalf("LoadChildren() error: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("len(children) = %d, want 2", len(children))
	}
	if children[0].ID != "/1/a" || children[1].ID != "/1/u" {
		t.Errorf("children = [%s %s], want insertion order", children[0].ID, children[1].ID)
	}

	leaf, _ := tr.Node("/1/a")
	children, err = tr.LoadChildren(ctx, leaf)
	if err != nil {
		t.Fatalf("LoadChildren(leaf) error: %v", err)
	}
	if len(children) != 0 {
		t.Errorf("leaf children = %d, want 0", len(children))
	}
}

func TestTreeLoadChildrenErrors(t *testing.T) {
	tr := buildTree(t)

	_, err := tr.LoadChildren(context.Background(), &Node{ID: "/elsewhere"})
	if !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("foreign node: code = %v, want %v", errors.GetCode(err), errors.ErrCodeNodeNotFound)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tr.LoadChildren(ctx, tr.Root()); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestTreeLookup(t *testing.T) {
	tr := buildTree(t)

	n, err := tr.Lookup(context.Background(), "/1/u")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if n.Label() != "Drive" {
		t.Errorf("Label() = %q, want Drive", n.Label())
	}

	if _, err := tr.Lookup(context.Background(), "/missing"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("missing: code = %v, want %v", errors.GetCode(err), errors.ErrCodeNodeNotFound)
	}
}

func TestNodeHelpers(t *testing.T) {
	n := &Node{ID: "/1/r", Attrs: Metadata{"text": "shall stop", "priority": 3}}

	if n.Label() != "/1/r" {
		t.Errorf("Label() = %q, want ID fallback", n.Label())
	}
	if n.Attr("text") != "shall stop" {
		t.Errorf("Attr(text) = %q", n.Attr("text"))
	}
	if n.Attr("priority") != "" {
		t.Errorf("Attr(priority) = %q, want empty for non-string", n.Attr("priority"))
	}
	if n.Attr("missing") != "" {
		t.Errorf("Attr(missing) = %q, want empty", n.Attr("missing"))
	}
}
