package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sysmlexport/pkg/cache"
	"github.com/matzehuels/sysmlexport/pkg/errors"
	"github.com/matzehuels/sysmlexport/pkg/exporter"
	"github.com/matzehuels/sysmlexport/pkg/model"
	"github.com/matzehuels/sysmlexport/pkg/observability"
)

// cacheKeyType labels export entries in cache hooks.
const cacheKeyType = "export"

// Runner executes pipelines against a cache.
//
// A Runner holds no per-run state; several goroutines may call Execute with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration // Artifact lifetime (default: cache.TTLArtifact)
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer uses
// [cache.DefaultKeyer] and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLArtifact,
	}
}

// Execute loads the model, exports it and renders the requested formats.
//
// Artifacts are cached only when the export succeeds. When the export fails
// the returned Result still carries the partial export and no artifacts.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	begin := time.Now()
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	data, err := opts.readModel()
	if err != nil {
		return nil, err
	}
	result := &Result{ModelHash: cache.Hash(data)}
	key := r.Keyer.ExportKey(result.ModelHash, opts.keyOpts())

	if !opts.Refresh {
		if artifacts, ok := r.lookup(ctx, key); ok {
			result.Artifacts = artifacts
			result.CacheHit = true
			result.Duration = time.Since(begin)
			r.Logger.Debug("artifacts from cache", "key", key, "count", len(artifacts))
			return result, nil
		}
	}

	tree, meta, err := Load(data, opts.MetaTypes)
	if err != nil {
		return result, err
	}
	start, err := ResolveRoot(tree, opts.Root)
	if err != nil {
		return result, err
	}

	ex := &exporter.Exporter{
		Loader:      tree,
		Resolver:    tree,
		Oracle:      meta,
		Logger:      opts.Logger,
		Concurrency: opts.Concurrency,
		Saver: exporter.SaverFunc(func(ctx context.Context, res *exporter.Result) error {
			artifacts, err := Render(ctx, res, opts.Formats)
			if err != nil {
				return err
			}
			result.Artifacts = artifacts
			return nil
		}),
	}
	result.Export, err = ex.Run(ctx, start)
	result.Duration = time.Since(begin)
	if err != nil {
		return result, err
	}

	r.store(ctx, key, result.Artifacts)
	r.Logger.Debug("rendered artifacts", "formats", opts.Formats, "count", len(result.Artifacts))
	return result, nil
}

// Load parses model JSON and builds the meta-model with extra types.
func Load(data []byte, metaTypes map[string]string) (*model.Tree, *model.MetaModel, error) {
	tree, err := model.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "load model")
	}
	meta := model.DefaultMetaModel()
	if err := meta.DefineAll(metaTypes); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "meta types")
	}
	return tree, meta, nil
}

// ResolveRoot returns the node with id, or the tree root when id is empty.
func ResolveRoot(tree *model.Tree, id string) (*model.Node, error) {
	if id == "" {
		return tree.Root(), nil
	}
	n, ok := tree.Node(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "start node %q not found", id)
	}
	return n, nil
}

// lookup returns cached artifacts for key. Undecodable entries are misses.
func (r *Runner) lookup(ctx context.Context, key string) (map[string][]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	var artifacts map[string][]byte
	if err := json.Unmarshal(data, &artifacts); err != nil {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	return artifacts, true
}

// store caches artifacts under key. Failures are logged, not returned.
func (r *Runner) store(ctx context.Context, key string, artifacts map[string][]byte) {
	data, err := json.Marshal(artifacts)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
