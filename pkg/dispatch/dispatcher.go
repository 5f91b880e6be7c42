// Package dispatch routes classified model nodes to diagram collectors.
//
// A [Dispatcher] is the visitor of one export run. For every visited node it
// asks the classifier for a category and role, then either registers the node
// as a component (at most once per identifier, tracked in the dispatcher's
// lookup table) or forwards it to the collector as a connection.
//
// Dispatchers are safe for concurrent use; create a new one per run so the
// lookup table starts empty.
package dispatch

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/sysmlexport/pkg/classify"
	"github.com/matzehuels/sysmlexport/pkg/diagram"
	"github.com/matzehuels/sysmlexport/pkg/errors"
	"github.com/matzehuels/sysmlexport/pkg/model"
)

// Outcome describes what Dispatch did with a node.
type Outcome int

const (
	Skipped       Outcome = iota // Unclassified, or no collector for the category
	Registered                   // Added as a component
	Duplicate                    // Component identifier already registered
	Connected                    // Added as a connection
	ConnectFailed                // Connection rejected by the collector
)

var outcomeNames = [...]string{"skipped", "registered", "duplicate", "connected", "connect_failed"}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// Stats counts dispatch outcomes.
type Stats struct {
	Skipped       int
	Registered    int
	Duplicate     int
	Connected     int
	ConnectFailed int
}

// Total returns the number of dispatched nodes.
func (s Stats) Total() int {
	return s.Skipped + s.Registered + s.Duplicate + s.Connected + s.ConnectFailed
}

// Dispatcher classifies nodes and hands them to the collector of their
// category.
type Dispatcher struct {
	oracle     classify.Oracle
	collectors map[classify.Category]diagram.Collector

	mu    sync.Mutex
	ids   map[string]struct{}
	stats Stats
}

// New creates a dispatcher over the given collectors. Categories without a
// collector are skipped.
func New(oracle classify.Oracle, collectors map[classify.Category]diagram.Collector) *Dispatcher {
	return &Dispatcher{
		oracle:     oracle,
		collectors: collectors,
		ids:        make(map[string]struct{}),
	}
}

// Dispatch classifies node under parent and routes it. The returned error is
// non-nil only for ConnectFailed and carries CONNECTION_FAILED.
func (d *Dispatcher) Dispatch(ctx context.Context, node, parent *model.Node) (Outcome, error) {
	res := classify.Classify(d.oracle, node, parent)
	c, ok := d.collectors[res.Category]
	if !res.Matched() || !ok {
		d.count(Skipped)
		return Skipped, nil
	}

	if res.Role == classify.Connection {
		if err := c.AddConnection(ctx, node); err != nil {
			d.count(ConnectFailed)
			return ConnectFailed, errors.Wrap(errors.ErrCodeConnection, err, "add connection %s", node.ID)
		}
		d.count(Connected)
		return Connected, nil
	}

	d.mu.Lock()
	if _, seen := d.ids[node.ID]; seen {
		d.stats.Duplicate++
		d.mu.Unlock()
		return Duplicate, nil
	}
	d.ids[node.ID] = struct{}{}
	d.stats.Registered++
	d.mu.Unlock()

	c.AddComponent(node)
	return Registered, nil
}

// Visit adapts Dispatch to the traversal visitor signature.
func (d *Dispatcher) Visit(ctx context.Context, node, parent *model.Node) error {
	_, err := d.Dispatch(ctx, node, parent)
	return err
}

// IDs returns the registered component identifiers in sorted order.
func (d *Dispatcher) IDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, 0, len(d.ids))
	for id := range d.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Has reports whether id was registered as a component.
func (d *Dispatcher) Has(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.ids[id]
	return ok
}

// Stats returns the outcome counters so far.
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *Dispatcher) count(o Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch o {
	case Skipped:
		d.stats.Skipped++
	case Connected:
		d.stats.Connected++
	case ConnectFailed:
		d.stats.ConnectFailed++
	}
}
