package traverse

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/sysmlexport/pkg/errors"
	"github.com/matzehuels/sysmlexport/pkg/model"
	"github.com/matzehuels/sysmlexport/pkg/observability"
)

// DefaultConcurrency is the default number of concurrent child loads.
const DefaultConcurrency = 16

// Visitor is called once per visited node, before the node's children are
// loaded. parent is the node the child was loaded from.
type Visitor interface {
	Visit(ctx context.Context, node, parent *model.Node) error
}

// VisitFunc adapts a function to [Visitor].
type VisitFunc func(ctx context.Context, node, parent *model.Node) error

// Visit calls f(ctx, node, parent).
func (f VisitFunc) Visit(ctx context.Context, node, parent *model.Node) error {
	return f(ctx, node, parent)
}

// Options configures a Walker.
type Options struct {
	Concurrency int                  // Maximum concurrent child loads (default: 16)
	Logger      func(string, ...any) // Branch failure callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Op names the step of a branch that failed.
type Op string

const (
	OpLoad  Op = "load"
	OpVisit Op = "visit"
)

// BranchError records a failure confined to one branch.
type BranchError struct {
	NodeID string
	Op     Op
	Err    error
}

// Error returns the message of the underlying error, which already names
// the node.
func (e *BranchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s failed", e.Op, e.NodeID)
	}
	return e.Err.Error()
}

func (e *BranchError) Unwrap() error { return e.Err }

// Stats summarizes a walk.
type Stats struct {
	Visited int // Nodes passed to the visitor (the root is not visited)
	Loaded  int // Successful child loads, including the root's
	Failed  int // Branch errors recorded
}

// Walker drives the traversal. A Walker holds no per-walk state and may run
// several walks concurrently.
type Walker struct {
	loader  model.ChildLoader
	visitor Visitor
	opts    Options
}

// New creates a Walker that loads children from loader and hands every
// visited node to visitor.
func New(loader model.ChildLoader, visitor Visitor, opts Options) *Walker {
	return &Walker{loader: loader, visitor: visitor, opts: opts.WithDefaults()}
}

// Walk visits every node reachable from root, excluding root itself, and
// returns once all branches have finished.
//
// A nil root fails with NO_STARTING_NODE and a failed root child load fails
// with CHILD_LOAD_FAILED; in both cases nothing is visited. Otherwise the
// returned error is nil or a *multierror.Error of *BranchError, and Stats
// describes the completed walk.
func (w *Walker) Walk(ctx context.Context, root *model.Node) (Stats, error) {
	if root == nil {
		return Stats{}, errors.New(errors.ErrCodeNoStartingNode, "no starting node supplied")
	}
	children, err := w.loader.LoadChildren(ctx, root)
	if err != nil {
		return Stats{}, errors.Wrap(errors.ErrCodeChildLoad, err, "load children of %s", root.ID)
	}

	wk := &walk{
		Walker: w,
		ctx:    ctx,
		sem:    semaphore.NewWeighted(int64(w.opts.Concurrency)),
	}
	wk.loaded.Add(1)
	for _, c := range children {
		wk.spawn(root, c)
	}
	_ = wk.group.Wait()

	wk.mu.Lock()
	defer wk.mu.Unlock()
	stats := Stats{
		Visited: int(wk.visited.Load()),
		Loaded:  int(wk.loaded.Load()),
	}
	if wk.errs != nil {
		stats.Failed = len(wk.errs.Errors)
	}
	return stats, wk.errs.ErrorOrNil()
}

// walk is the state of one Walk call. Every branch is a task in group;
// group.Wait is the join.
type walk struct {
	*Walker
	ctx   context.Context
	sem   *semaphore.Weighted
	group errgroup.Group

	visited atomic.Int64
	loaded  atomic.Int64

	mu   sync.Mutex
	errs *multierror.Error
}

// spawn starts the branch rooted at node. Branch tasks never return an error
// so the group never short-circuits; failures go to w.errs.
func (w *walk) spawn(parent, node *model.Node) {
	w.group.Go(func() error {
		w.branch(parent, node)
		return nil
	})
}

func (w *walk) branch(parent, node *model.Node) {
	if err := w.visitor.Visit(w.ctx, node, parent); err != nil {
		w.fail(&BranchError{NodeID: node.ID, Op: OpVisit, Err: err})
	}
	w.visited.Add(1)

	children, err := w.load(node)
	if err != nil {
		w.fail(&BranchError{NodeID: node.ID, Op: OpLoad, Err: errors.Wrap(errors.ErrCodeChildLoad, err, "load children of %s", node.ID)})
		return
	}
	for _, c := range children {
		w.spawn(node, c)
	}
}

func (w *walk) load(n *model.Node) ([]*model.Node, error) {
	if err := w.sem.Acquire(w.ctx, 1); err != nil {
		return nil, err
	}
	defer w.sem.Release(1)

	children, err := w.loader.LoadChildren(w.ctx, n)
	if err != nil {
		return nil, err
	}
	w.loaded.Add(1)
	return children, nil
}

func (w *walk) fail(e *BranchError) {
	w.opts.Logger("branch failed: %v", e)
	observability.Export().OnBranchFailed(w.ctx, e.NodeID, e.Err)

	w.mu.Lock()
	w.errs = multierror.Append(w.errs, e)
	w.mu.Unlock()
}
