package traverse

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/matzehuels/sysmlexport/pkg/errors"
	"github.com/matzehuels/sysmlexport/pkg/model"
	"github.com/matzehuels/sysmlexport/pkg/observability"
)

// buildTree creates a complete tree of the given depth and fan-out below "/".
func buildTree(t *testing.T, depth, fanout int) *model.Tree {
	t.Helper()
	tr := model.NewTree()
	if err := tr.Add(&model.Node{ID: "/", Meta: model.TypeFCO}, ""); err != nil {
		t.Fatal(err)
	}
	var grow func(parent string, level int)
	grow = func(parent string, level int) {
		if level == depth {
			return
		}
		for i := range fanout {
			id := fmt.Sprintf("%s/%d", strings.TrimSuffix(parent, "/"), i)
			if err := tr.Add(&model.Node{ID: id, Meta: model.TypeFCO}, parent); err != nil {
				t.Fatal(err)
			}
			grow(id, level+1)
		}
	}
	grow("/", 0)
	return tr
}

// recorder is a concurrency-safe visitor that remembers visit order.
type recorder struct {
	mu     sync.Mutex
	order  []string
	counts map[string]int
	fail   map[string]error
}

func newRecorder() *recorder {
	return &recorder{counts: make(map[string]int), fail: make(map[string]error)}
}

func (r *recorder) Visit(_ context.Context, node, parent *model.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if node.Parent != parent {
		return fmt.Errorf("visit %s: parent mismatch", node.ID)
	}
	r.order = append(r.order, node.ID)
	r.counts[node.ID]++
	return r.fail[node.ID]
}

func (r *recorder) index(id string) int {
	for i, v := range r.order {
		if v == id {
			return i
		}
	}
	return -1
}

// failingLoader fails LoadChildren for the listed node IDs.
func failingLoader(tr *model.Tree, failIDs ...string) model.ChildLoader {
	fail := make(map[string]bool)
	for _, id := range failIDs {
		fail[id] = true
	}
	return model.ChildLoaderFunc(func(ctx context.Context, n *model.Node) ([]*model.Node, error) {
		if fail[n.ID] {
			return nil, stderrors.New("store unavailable")
		}
		return tr.LoadChildren(ctx, n)
	})
}

func TestWalkVisitsEveryNodeOnce(t *testing.T) {
	tr := buildTree(t, 4, 4) // 4 + 16 + 64 + 256 = 340 non-root nodes
	rec := newRecorder()

	stats, err := New(tr, rec, Options{}).Walk(context.Background(), tr.Root())
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	want := tr.Len() - 1
	if stats.Visited != want {
		t.Errorf("Visited = %d, want %d", stats.Visited, want)
	}
	if stats.Loaded != tr.Len() {
		t.Errorf("Loaded = %d, want %d", stats.Loaded, tr.Len())
	}
	if stats.Failed != 0 {
		t.Errorf("Failed = %d, want 0", stats.Failed)
	}
	if len(rec.counts) != want {
		t.Errorf("distinct visits = %d, want %d", len(rec.counts), want)
	}
	for id, c := range rec.counts {
		if c != 1 {
			t.Errorf("%s visited %d times", id, c)
		}
	}
	if rec.counts["/"] != 0 {
		t.Error("root must not be visited")
	}
}

func TestWalkParentVisitedBeforeChild(t *testing.T) {
	tr := buildTree(t, 5, 3)
	rec := newRecorder()

	if _, err := New(tr, rec, Options{Concurrency: 4}).Walk(context.Background(), tr.Root()); err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	for _, n := range tr.Nodes() {
		if n.Parent == nil || n.Parent == tr.Root() {
			continue
		}
		if rec.index(n.Parent.ID) > rec.index(n.ID) {
			t.Errorf("%s visited before its parent %s", n.ID, n.Parent.ID)
		}
	}
}

func TestWalkEmptyRoot(t *testing.T) {
	tr := model.NewTree()
	_ = tr.Add(&model.Node{ID: "/", Meta: model.TypeFCO}, "")
	rec := newRecorder()

	stats, err := New(tr, rec, Options{}).Walk(context.Background(), tr.Root())
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if stats != (Stats{Loaded: 1}) {
		t.Errorf("Stats = %+v, want {Loaded:1}", stats)
	}
}

func TestWalkNilRoot(t *testing.T) {
	rec := newRecorder()
	_, err := New(model.NewTree(), rec, Options{}).Walk(context.Background(), nil)
	if !errors.Is(err, errors.ErrCodeNoStartingNode) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeNoStartingNode)
	}
	if len(rec.order) != 0 {
		t.Error("nothing should be visited")
	}
}

func TestWalkRootLoadFailure(t *testing.T) {
	tr := buildTree(t, 2, 2)
	rec := newRecorder()

	stats, err := New(failingLoader(tr, "/"), rec, Options{}).Walk(context.Background(), tr.Root())
	if !errors.Is(err, errors.ErrCodeChildLoad) {
		t.Fatalf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeChildLoad)
	}
	var merr *multierror.Error
	if stderrors.As(err, &merr) {
		t.Error("root failure should not be a branch aggregate")
	}
	if len(rec.order) != 0 {
		t.Errorf("visited %d nodes, want 0", len(rec.order))
	}
	if stats != (Stats{}) {
		t.Errorf("Stats = %+v, want zero", stats)
	}
}

func TestWalkBranchLoadFailure(t *testing.T) {
	// /0 and /1 each have children /x/0, /x/1; loading /0 fails.
	tr := buildTree(t, 2, 2)
	rec := newRecorder()

	stats, err := New(failingLoader(tr, "/0"), rec, Options{}).Walk(context.Background(), tr.Root())
	if err == nil {
		t.Fatal("expected branch error")
	}

	var merr *multierror.Error
	if !stderrors.As(err, &merr) {
		t.Fatalf("error type = %T, want *multierror.Error", err)
	}
	if len(merr.Errors) != 1 {
		t.Fatalf("branch errors = %d, want 1", len(merr.Errors))
	}
	var be *BranchError
	if !stderrors.As(merr.Errors[0], &be) {
		t.Fatalf("branch error type = %T", merr.Errors[0])
	}
	if be.NodeID != "/0" || be.Op != OpLoad {
		t.Errorf("BranchError = %+v", be)
	}
	if !errors.Is(be, errors.ErrCodeChildLoad) {
		t.Errorf("branch code = %v, want %v", errors.GetCode(be), errors.ErrCodeChildLoad)
	}
	if !strings.Contains(err.Error(), "store unavailable") {
		t.Errorf("error text %q should carry the cause", err.Error())
	}

	// /0 itself was visited; its children were abandoned; the sibling
	// branch completed.
	for _, id := range []string{"/0", "/1", "/1/0", "/1/1"} {
		if rec.counts[id] != 1 {
			t.Errorf("%s visits = %d, want 1", id, rec.counts[id])
		}
	}
	for _, id := range []string{"/0/0", "/0/1"} {
		if rec.counts[id] != 0 {
			t.Errorf("%s should not be visited", id)
		}
	}
	if stats.Visited != 4 || stats.Failed != 1 {
		t.Errorf("Stats = %+v, want Visited=4 Failed=1", stats)
	}
}

func TestWalkCollectsAllBranchErrors(t *testing.T) {
	tr := buildTree(t, 3, 3)
	rec := newRecorder()
	rec.fail["/2/2"] = stderrors.New("bad link")

	_, err := New(failingLoader(tr, "/0", "/1/1"), rec, Options{}).Walk(context.Background(), tr.Root())

	var merr *multierror.Error
	if !stderrors.As(err, &merr) {
		t.Fatalf("error type = %T, want *multierror.Error", err)
	}
	got := make(map[string]Op)
	for _, e := range merr.Errors {
		var be *BranchError
		if !stderrors.As(e, &be) {
			t.Fatalf("error type = %T", e)
		}
		got[be.NodeID] = be.Op
	}
	want := map[string]Op{"/0": OpLoad, "/1/1": OpLoad, "/2/2": OpVisit}
	if len(got) != len(want) {
		t.Fatalf("branch errors = %v, want %v", got, want)
	}
	for id, op := range want {
		if got[id] != op {
			t.Errorf("%s op = %q, want %q", id, got[id], op)
		}
	}

	// A visit failure does not stop descent.
	for _, id := range []string{"/2/2/0", "/2/2/1", "/2/2/2"} {
		if rec.counts[id] != 1 {
			t.Errorf("%s visits = %d, want 1", id, rec.counts[id])
		}
	}
}

func TestWalkBoundsConcurrentLoads(t *testing.T) {
	tr := buildTree(t, 3, 6)
	const limit = 3

	var inflight, peak atomic.Int64
	loader := model.ChildLoaderFunc(func(ctx context.Context, n *model.Node) ([]*model.Node, error) {
		cur := inflight.Add(1)
		defer inflight.Add(-1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		return tr.LoadChildren(ctx, n)
	})

	stats, err := New(loader, newRecorder(), Options{Concurrency: limit}).Walk(context.Background(), tr.Root())
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if stats.Visited != tr.Len()-1 {
		t.Errorf("Visited = %d, want %d", stats.Visited, tr.Len()-1)
	}
	// The root load runs before the bound applies, so peak counts branch loads only.
	if peak.Load() > limit {
		t.Errorf("peak concurrent loads = %d, want <= %d", peak.Load(), limit)
	}
}

func TestWalkCancelledContext(t *testing.T) {
	tr := buildTree(t, 2, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(tr, newRecorder(), Options{}).Walk(ctx, tr.Root())
	if !errors.Is(err, errors.ErrCodeChildLoad) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeChildLoad)
	}
	if !stderrors.Is(err, context.Canceled) {
		t.Error("error should wrap context.Canceled")
	}
}

type countingHooks struct {
	observability.NoopExportHooks
	failed atomic.Int64
}

func (h *countingHooks) OnBranchFailed(context.Context, string, error) { h.failed.Add(1) }

func TestWalkReportsBranchFailures(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetExportHooks(hooks)
	defer observability.Reset()

	var logged atomic.Int64
	tr := buildTree(t, 2, 2)
	opts := Options{Logger: func(string, ...any) { logged.Add(1) }}

	_, _ = New(failingLoader(tr, "/0", "/1"), newRecorder(), opts).Walk(context.Background(), tr.Root())

	if hooks.failed.Load() != 2 {
		t.Errorf("OnBranchFailed calls = %d, want 2", hooks.failed.Load())
	}
	if logged.Load() != 2 {
		t.Errorf("logger calls = %d, want 2", logged.Load())
	}
}

func TestVisitFunc(t *testing.T) {
	var called bool
	f := VisitFunc(func(context.Context, *model.Node, *model.Node) error {
		called = true
		return nil
	})
	_ = f.Visit(context.Background(), &model.Node{ID: "/a"}, nil)
	if !called {
		t.Error("VisitFunc.Visit should call the function")
	}
}

func TestBranchErrorMessage(t *testing.T) {
	e := &BranchError{NodeID: "/1", Op: OpVisit, Err: stderrors.New("add connection /1: missing dst")}
	if e.Error() != "add connection /1: missing dst" {
		t.Errorf("Error() = %q", e.Error())
	}
	if (&BranchError{NodeID: "/1", Op: OpLoad}).Error() != "load /1 failed" {
		t.Error("Error() without cause should name op and node")
	}
}
