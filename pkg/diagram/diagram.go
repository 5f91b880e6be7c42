package diagram

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/matzehuels/sysmlexport/pkg/classify"
	"github.com/matzehuels/sysmlexport/pkg/errors"
	"github.com/matzehuels/sysmlexport/pkg/model"
)

// Component is a registered diagram element.
type Component struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Kind  string         `json:"kind"`
	Attrs model.Metadata `json:"attrs,omitempty"`
}

// Connection is a registered relationship between two elements.
type Connection struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Kind    string `json:"kind"`
	Src     string `json:"src"`
	Dst     string `json:"dst"`
	SrcName string `json:"src_name"`
	DstName string `json:"dst_name"`
}

// Diagram groups the components and connections found under one container.
type Diagram struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Category    classify.Category `json:"category"`
	Components  []Component       `json:"components"`
	Connections []Connection      `json:"connections"`
}

// EndpointResolver resolves a node by ID. [model.Tree] implements it.
type EndpointResolver interface {
	Lookup(ctx context.Context, id string) (*model.Node, error)
}

// kind maps a meta-type to a record kind.
type kind struct {
	typ  string
	name string
}

// registry is the state shared by all collector variants.
type registry struct {
	category classify.Category
	oracle   classify.Oracle
	resolver EndpointResolver

	mu       sync.Mutex
	diagrams map[string]*Diagram
	members  map[string]struct{}
}

func newRegistry(c classify.Category, o classify.Oracle, r EndpointResolver) registry {
	return registry{
		category: c,
		oracle:   o,
		resolver: r,
		diagrams: make(map[string]*Diagram),
		members:  make(map[string]struct{}),
	}
}

// Category returns the category this collector accepts.
func (r *registry) Category() classify.Category { return r.category }

// Has reports whether a component or connection with id was registered.
func (r *registry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[id]
	return ok
}

// Len returns the number of registered components and connections.
func (r *registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Diagrams returns a snapshot of all diagrams sorted by container ID, with
// components and connections sorted by ID. Registration order depends on
// goroutine scheduling, so snapshots are sorted for stable output.
func (r *registry) Diagrams() []*Diagram {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Diagram, 0, len(r.diagrams))
	for _, d := range r.diagrams {
		cp := *d
		cp.Components = slices.SortedFunc(slices.Values(d.Components), func(a, b Component) int {
			return cmp.Compare(a.ID, b.ID)
		})
		cp.Connections = slices.SortedFunc(slices.Values(d.Connections), func(a, b Connection) int {
			return cmp.Compare(a.ID, b.ID)
		})
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *Diagram) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// diagramFor returns the diagram of n's container. Callers hold r.mu.
func (r *registry) diagramFor(n *model.Node) *Diagram {
	id, name := "", ""
	if n.Parent != nil {
		id, name = n.Parent.ID, n.Parent.Label()
	}
	d, ok := r.diagrams[id]
	if !ok {
		d = &Diagram{
			ID:          id,
			Name:        name,
			Category:    r.category,
			Components:  []Component{},
			Connections: []Connection{},
		}
		r.diagrams[id] = d
	}
	return d
}

func (r *registry) addComponent(n *model.Node, c Component) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[n.ID]; ok {
		return
	}
	r.members[n.ID] = struct{}{}
	d := r.diagramFor(n)
	d.Components = append(d.Components, c)
}

// addConnection resolves both endpoints of n and records the connection.
// Endpoint lookups happen outside the lock.
func (r *registry) addConnection(ctx context.Context, n *model.Node, k string) error {
	if n.Src == "" || n.Dst == "" {
		return errors.New(errors.ErrCodeInvalidModel, "connection %s has malformed endpoints (src=%q, dst=%q)", n.ID, n.Src, n.Dst)
	}
	src, err := r.resolver.Lookup(ctx, n.Src)
	if err != nil {
		return fmt.Errorf("resolve src of %s: %w", n.ID, err)
	}
	dst, err := r.resolver.Lookup(ctx, n.Dst)
	if err != nil {
		return fmt.Errorf("resolve dst of %s: %w", n.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[n.ID]; ok {
		return nil
	}
	r.members[n.ID] = struct{}{}
	d := r.diagramFor(n)
	d.Connections = append(d.Connections, Connection{
		ID:      n.ID,
		Name:    n.Name,
		Kind:    k,
		Src:     src.ID,
		Dst:     dst.ID,
		SrcName: src.Label(),
		DstName: dst.Label(),
	})
	return nil
}

// kindOf returns the name of the first kind n derives from, or fallback.
func (r *registry) kindOf(n *model.Node, kinds []kind, fallback string) string {
	typ := r.oracle.MetaType(n)
	for _, k := range kinds {
		if r.oracle.IsMetaTypeOf(typ, k.typ) {
			return k.name
		}
	}
	return fallback
}
