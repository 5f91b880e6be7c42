// Package pipeline runs the load → export → render pipeline with caching.
//
// The CLI goes through a [Runner] so that model loading, root resolution,
// artifact rendering and cache handling behave the same for every command.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    ModelPath: "vehicle.json",
//	    Formats:   []string{"json", "svg"},
//	})
//	if err != nil {
//	    // result.Export holds whatever the run registered
//	}
//	svg := result.Artifacts["internalblock_ibd.svg"]
package pipeline

import (
	"io"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sysmlexport/pkg/cache"
	"github.com/matzehuels/sysmlexport/pkg/errors"
	"github.com/matzehuels/sysmlexport/pkg/exporter"
	"github.com/matzehuels/sysmlexport/pkg/traverse"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// Formats lists the supported output formats.
var Formats = []string{FormatJSON, FormatDOT, FormatSVG}

// DefaultFormats is used when Options.Formats is empty.
var DefaultFormats = []string{FormatJSON}

// DefaultConcurrency is the default number of concurrent child loads.
const DefaultConcurrency = traverse.DefaultConcurrency

// Options configures one pipeline run.
type Options struct {
	Model     []byte            `json:"-"`                    // JSON model; read from ModelPath when nil
	ModelPath string            `json:"model_path,omitempty"` // Model file
	Root      string            `json:"root,omitempty"`       // Start node ID (default: model root)
	Formats   []string          `json:"formats,omitempty"`
	MetaTypes map[string]string `json:"meta_types,omitempty"` // Extra meta-types, name → base
	Refresh   bool              `json:"refresh,omitempty"`    // Skip the cache lookup

	Concurrency int         `json:"-"`
	Logger      *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Model == nil && o.ModelPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "model or model path is required")
	}
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if err := errors.ValidateFormats(o.Formats, Formats); err != nil {
		return err
	}
	o.Formats = slices.Compact(slices.Sorted(slices.Values(o.Formats)))
	for name := range o.MetaTypes {
		if err := errors.ValidateTypeName(name); err != nil {
			return err
		}
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// readModel returns the model bytes.
func (o *Options) readModel() ([]byte, error) {
	if o.Model != nil {
		return o.Model, nil
	}
	data, err := os.ReadFile(o.ModelPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "model %s", o.ModelPath)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read model %s", o.ModelPath)
	}
	return data, nil
}

// keyOpts returns the cache key options of o.
func (o *Options) keyOpts() cache.ExportKeyOpts {
	return cache.ExportKeyOpts{
		Root:      o.Root,
		Formats:   o.Formats,
		MetaTypes: o.MetaTypes,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Export is the export result. It is nil when artifacts came from the
	// cache or the model could not be loaded.
	Export *exporter.Result

	// ModelHash is the SHA-256 of the model bytes.
	ModelHash string

	// Artifacts maps artifact file names to their content.
	Artifacts map[string][]byte

	// CacheHit reports whether Artifacts came from the cache.
	CacheHit bool

	// Duration is the wall time of Execute.
	Duration time.Duration
}

// ArtifactNames returns the artifact names in sorted order.
func (r *Result) ArtifactNames() []string {
	names := make([]string, 0, len(r.Artifacts))
	for name := range r.Artifacts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
