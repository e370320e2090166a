package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/journeyline/journeyline/pkg/cache"
	"github.com/journeyline/journeyline/pkg/graph"
	pkgio "github.com/journeyline/journeyline/pkg/io"
	"github.com/journeyline/journeyline/pkg/observability"
	"github.com/journeyline/journeyline/pkg/render/flow"
	"github.com/journeyline/journeyline/pkg/store"
	"github.com/journeyline/journeyline/pkg/timeline"
	"github.com/journeyline/journeyline/pkg/timeline/transform"
)

// ErrNoInput is returned when options name no record source.
var ErrNoInput = errors.New("no records: set Records, UserID or Input")

// Runner encapsulates pipeline execution with caching.
// CLI, browser and API all use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, store and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store
	Logger *log.Logger

	// TTL overrides the layout and artifact lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
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
	}
}

// WithStore attaches a record store for options that name a UserID.
func (r *Runner) WithStore(s store.Store) *Runner {
	r.Store = s
	return r
}

// WithTTL sets the lifetime of cached layouts and artifacts.
func (r *Runner) WithTTL(ttl time.Duration) *Runner {
	r.TTL = ttl
	return r
}

// ForUser returns a copy of r whose cache keys are scoped to userID, so
// identical record sets of different users never share entries.
func (r *Runner) ForUser(userID string) *Runner {
	cp := *r
	cp.Keyer = cache.NewScopedKeyer(r.Keyer, "user:"+userID+":")
	return &cp
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// Execute runs the complete load → compile → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	records, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.RecordCount = len(records)

	// Stage 2: Compile
	compileStart := time.Now()
	compiled, err := r.CompileWithCacheInfo(ctx, records, opts)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	result.RecordsHash = compiled.RecordsHash
	result.Layout = compiled.Layout
	result.Orphans = compiled.Orphans
	result.CacheInfo.LayoutHit = compiled.Hit
	result.Stats.CompileTime = time.Since(compileStart)
	result.Stats.NodeCount = len(compiled.Layout.Milestones())
	result.Stats.AffordanceCount = len(compiled.Layout.Nodes) - result.Stats.NodeCount
	result.Stats.EdgeCount = len(compiled.Layout.Edges)

	opts.Logger.Info("compiled timeline",
		"records", result.Stats.RecordCount,
		"nodes", result.Stats.NodeCount,
		"affordances", result.Stats.AffordanceCount,
		"cached", compiled.Hit,
		"duration", result.Stats.CompileTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, compiled.Layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// =============================================================================
// Load
// =============================================================================

// Load returns the records named by opts. Store snapshots are cached for
// [cache.TTLRecords]; use [Runner.InvalidateRecords] after writes.
func (r *Runner) Load(ctx context.Context, opts Options) (recs []timeline.Record, err error) {
	source := opts.Input
	if opts.UserID != "" {
		source = "store:" + opts.UserID
	}
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, source)
	defer func() {
		observability.Pipeline().OnLoadComplete(ctx, source, len(recs), time.Since(start), err)
	}()

	switch {
	case opts.Records != nil:
		return opts.Records, nil
	case opts.UserID != "":
		return r.loadFromStore(ctx, opts)
	case opts.Input != "":
		return pkgio.ImportJSON(opts.Input)
	}
	return nil, ErrNoInput
}

func (r *Runner) loadFromStore(ctx context.Context, opts Options) ([]timeline.Record, error) {
	if r.Store == nil {
		return nil, errors.New("no store configured")
	}
	key := r.Keyer.RecordsKey(opts.UserID)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var recs []timeline.Record
			if err := json.Unmarshal(data, &recs); err == nil {
				observability.Cache().OnCacheHit(ctx, "records")
				return recs, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "records")
	}

	recs, err := r.Store.List(ctx, opts.UserID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(recs); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLRecords); err == nil {
			observability.Cache().OnCacheSet(ctx, "records", len(data))
		}
	}
	return recs, nil
}

// InvalidateRecords drops the cached record snapshot of a user.
func (r *Runner) InvalidateRecords(ctx context.Context, userID string) error {
	return r.Cache.Delete(ctx, r.Keyer.RecordsKey(userID))
}

// =============================================================================
// Compile
// =============================================================================

// Compiled is the result of the compile stage.
type Compiled struct {
	RecordsHash string
	Layout      graph.Layout
	Orphans     []string
	Hit         bool
}

// CompileWithCacheInfo normalizes and compiles records with caching.
func (r *Runner) CompileWithCacheInfo(ctx context.Context, records []timeline.Record, opts Options) (out Compiled, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForCompile(); err != nil {
		return Compiled{}, err
	}

	start := time.Now()
	observability.Pipeline().OnCompileStart(ctx, len(records))
	defer func() {
		milestones := len(out.Layout.Milestones())
		observability.Pipeline().OnCompileComplete(ctx, milestones, len(out.Layout.Nodes)-milestones, time.Since(start), err)
	}()

	// Compute cache key
	recordsHash, err := cache.HashJSON(records)
	if err != nil {
		return Compiled{}, fmt.Errorf("hash records: %w", err)
	}
	keyOpts, err := opts.LayoutKeyOpts()
	if err != nil {
		return Compiled{}, fmt.Errorf("hash layout config: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(recordsHash, keyOpts)

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := unmarshalCompiled(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				cached.RecordsHash = recordsHash
				cached.Hit = true
				return cached, nil
			}
			// If deserialization fails, fall through to recompile
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	forest, err := transform.Normalize(records)
	if err != nil {
		return Compiled{}, err
	}
	if len(forest.Orphans) > 0 {
		opts.Logger.Warn("records with missing parents placed at the root", "ids", forest.Orphans)
	}
	if len(forest.Misplaced) > 0 {
		opts.Logger.Warn("records nested under a milestone that cannot own children", "ids", forest.Misplaced)
	}

	state := opts.State()
	if opts.ExpandAll {
		state = state.WithExpanded(expandableIDs(forest.Roots)...)
	}
	g := flow.CompileForest(forest, opts.Layout, state)

	out = Compiled{
		RecordsHash: recordsHash,
		Layout:      graph.Export(g, opts.Layout),
		Orphans:     forest.Orphans,
	}

	// Cache the result
	if data, err := marshalCompiled(out); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLLayout)); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return out, nil
}

// Compile is a convenience wrapper that calls CompileWithCacheInfo and
// returns only the layout.
func (r *Runner) Compile(ctx context.Context, records []timeline.Record, opts Options) (graph.Layout, error) {
	c, err := r.CompileWithCacheInfo(ctx, records, opts)
	return c.Layout, err
}

// expandableIDs returns every node that owns children.
func expandableIDs(roots []*timeline.Node) []string {
	var ids []string
	timeline.Walk(roots, func(n *timeline.Node, _ int) bool {
		if n.HasChildren() {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}

// cachedLayout is the cache entry of a compiled layout.
type cachedLayout struct {
	Layout  graph.Layout `json:"layout"`
	Orphans []string     `json:"orphans,omitempty"`
}

func marshalCompiled(c Compiled) ([]byte, error) {
	return json.Marshal(cachedLayout{Layout: c.Layout, Orphans: c.Orphans})
}

func unmarshalCompiled(data []byte) (Compiled, error) {
	var cl cachedLayout
	if err := json.Unmarshal(data, &cl); err != nil {
		return Compiled{}, err
	}
	if err := cl.Layout.Validate(); err != nil {
		return Compiled{}, err
	}
	return Compiled{Layout: cl.Layout, Orphans: cl.Orphans}, nil
}

// =============================================================================
// Render
// =============================================================================

// RenderWithCacheInfo renders artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout graph.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Compute cache key from layout data
	layoutData, err := graph.MarshalLayout(layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		if format == graph.FormatJSON {
			artifacts[format] = layoutData
			continue
		}

		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		allCached = false

		data, err := Render(ctx, layout, format, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLArtifact)); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return artifacts, allCached, nil
}

// Close releases resources held by the runner (primarily the cache).
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
