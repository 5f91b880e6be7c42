// Package exporter runs one diagram export over a model tree.
//
// An [Exporter] wires the traversal engine to a fresh dispatcher and a fresh
// set of collectors for every run, so identifiers registered by one run never
// leak into the next. When the walk completes without errors the populated
// [Result] is handed to the configured [Saver]; when it fails the error is
// returned together with whatever the run managed to register.
//
// # Usage
//
//	tree, _ := model.ImportJSON("vehicle.json")
//	meta := model.DefaultMetaModel()
//	ex := &exporter.Exporter{
//	    Loader:   tree,
//	    Resolver: tree,
//	    Oracle:   meta,
//	    Saver:    exporter.SaverFunc(save),
//	}
//	result, err := ex.Run(ctx, tree.Root())
package exporter

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/sysmlexport/pkg/classify"
	"github.com/matzehuels/sysmlexport/pkg/diagram"
	"github.com/matzehuels/sysmlexport/pkg/dispatch"
	"github.com/matzehuels/sysmlexport/pkg/errors"
	"github.com/matzehuels/sysmlexport/pkg/model"
	"github.com/matzehuels/sysmlexport/pkg/observability"
	"github.com/matzehuels/sysmlexport/pkg/traverse"
)

// Saver receives the result of a successful run.
type Saver interface {
	Save(ctx context.Context, r *Result) error
}

// SaverFunc adapts a function to [Saver].
type SaverFunc func(ctx context.Context, r *Result) error

// Save calls f(ctx, r).
func (f SaverFunc) Save(ctx context.Context, r *Result) error { return f(ctx, r) }

// Result holds everything one run registered.
type Result struct {
	RunID    string                                   `json:"run_id"`
	Root     string                                   `json:"root"`
	Diagrams map[classify.Category][]*diagram.Diagram `json:"diagrams"`
	IDs      []string                                 `json:"ids"`
	Walk     traverse.Stats                           `json:"walk"`
	Dispatch dispatch.Stats                           `json:"dispatch"`
	Duration time.Duration                            `json:"duration"`
}

// All returns the diagrams of every category in precedence order.
func (r *Result) All() []*diagram.Diagram {
	var out []*diagram.Diagram
	for _, c := range classify.Categories {
		out = append(out, r.Diagrams[c]...)
	}
	return out
}

// Exporter runs exports. The zero value is not usable; Loader, Resolver and
// Oracle are required.
type Exporter struct {
	Loader      model.ChildLoader        // Node Access Gateway
	Resolver    diagram.EndpointResolver // Connection endpoint lookup
	Oracle      classify.Oracle          // Meta-type hierarchy
	Saver       Saver                    // Called on success (optional)
	Logger      *log.Logger              // Optional; discards output when nil
	Concurrency int                      // Concurrent child loads (default: traverse.DefaultConcurrency)
}

// Run walks the tree below start and registers every classified node.
//
// A nil start fails with NO_STARTING_NODE before anything is loaded. A failed
// root child load fails with CHILD_LOAD_FAILED. Branch failures are returned
// as a *multierror.Error alongside the partial result, and the Saver is not
// called. A Saver failure is returned as SAVE_FAILED.
func (e *Exporter) Run(ctx context.Context, start *model.Node) (*Result, error) {
	result := &Result{
		RunID:    uuid.NewString(),
		Diagrams: make(map[classify.Category][]*diagram.Diagram),
	}
	if start == nil {
		return result, errors.New(errors.ErrCodeNoStartingNode, "no starting node supplied")
	}
	result.Root = start.ID

	logger := e.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	logger = logger.With("run", result.RunID[:8])

	begin := time.Now()
	observability.Export().OnExportStart(ctx, start.ID)

	collectors := diagram.NewSet(e.Oracle, e.Resolver)
	d := dispatch.New(e.Oracle, collectors)
	w := traverse.New(e.Loader, d, traverse.Options{
		Concurrency: e.Concurrency,
		Logger: func(format string, args ...any) {
			logger.Warnf(format, args...)
		},
	})

	logger.Debug("export started", "root", start.ID)
	stats, err := w.Walk(ctx, start)

	result.Walk = stats
	result.Dispatch = d.Stats()
	result.IDs = d.IDs()
	for _, c := range classify.Categories {
		result.Diagrams[c] = collectors[c].Diagrams()
	}
	result.Duration = time.Since(begin)

	if err == nil && e.Saver != nil {
		if serr := e.Saver.Save(ctx, result); serr != nil {
			err = errors.Wrap(errors.ErrCodeSave, serr, "save export of %s", start.ID)
		}
	}

	observability.Export().OnExportComplete(ctx, start.ID, stats.Visited, result.Duration, err)
	if err != nil {
		logger.Debug("export failed", "root", start.ID, "visited", stats.Visited, "failed", stats.Failed)
		return result, err
	}
	logger.Info("export complete",
		"root", start.ID,
		"visited", stats.Visited,
		"components", result.Dispatch.Registered,
		"connections", result.Dispatch.Connected,
		"duration", result.Duration)
	return result, nil
}
