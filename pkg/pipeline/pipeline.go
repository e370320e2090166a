// Package pipeline provides the timeline layout pipeline for Journeyline.
//
// This package implements the complete load → compile → render pipeline used
// by the CLI, the interactive browser and the HTTP API. By centralizing this
// logic, every entry point sorts, positions, caches and renders the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read records from a file, a store, or the caller
//  2. Compile: Normalize records into a forest and compile the layout graph
//  3. Render: Produce output in various formats (JSON, DOT, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:    "journey.json",
//	    Expanded: []string{"job-1"},
//	    Formats:  []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Compilation is deterministic, so compiled layouts are cached by a hash of
// the records, the view state and the layout config.
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/journeyline/journeyline/pkg/cache"
	"github.com/journeyline/journeyline/pkg/graph"
	"github.com/journeyline/journeyline/pkg/render/flow"
	"github.com/journeyline/journeyline/pkg/render/position"
	"github.com/journeyline/journeyline/pkg/timeline"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultFormat is the output format when none is requested.
const DefaultFormat = graph.FormatJSON

// expandAllMarker stands in for "every node" in layout cache keys.
const expandAllMarker = "*"

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	graph.FormatJSON: true,
	graph.FormatDOT:  true,
	graph.FormatSVG:  true,
}

// ValidBlurScopes is the set of supported blur scopes.
var ValidBlurScopes = map[flow.BlurScope]bool{
	flow.BlurAll:      true,
	flow.BlurRootOnly: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Records wins over UserID, which wins over Input.
	Input   string            `json:"input,omitempty"`
	UserID  string            `json:"user_id,omitempty"`
	Records []timeline.Record `json:"-"`

	// View state
	Expanded      []string       `json:"expanded,omitempty"`
	ExpandAll     bool           `json:"expand_all,omitempty"`
	FocusedID     string         `json:"focused,omitempty"`
	SelectedID    string         `json:"selected,omitempty"`
	HighlightedID string         `json:"highlighted,omitempty"`
	BlurScope     flow.BlurScope `json:"blur,omitempty"`

	// Layout geometry. The zero value means position.DefaultConfig().
	Layout position.Config `json:"layout"`

	// Render options
	Formats         []string `json:"formats,omitempty"`
	Detailed        bool     `json:"detailed,omitempty"`
	HideAffordances bool     `json:"hide_affordances,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RecordsHash is the content hash of the loaded records.
	RecordsHash string

	// Layout is the compiled presentation layout.
	Layout graph.Layout

	// Orphans lists records whose parent was missing; they were laid out as roots.
	Orphans []string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RecordCount     int
	NodeCount       int
	AffordanceCount int
	EdgeCount       int
	LoadTime        time.Duration
	CompileTime     time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the compiled layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBlurScope checks that a blur scope is valid.
func ValidateBlurScope(s flow.BlurScope) error {
	if !ValidBlurScopes[s] {
		return fmt.Errorf("invalid blur scope: %q (must be one of: all, root)", s)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForCompile(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForCompile applies layout defaults and checks the view state.
func (o *Options) ValidateForCompile() error {
	if o.Layout == (position.Config{}) {
		o.Layout = position.DefaultConfig()
	}
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if o.BlurScope == "" {
		o.BlurScope = flow.BlurAll
	}
	if err := ValidateBlurScope(o.BlurScope); err != nil {
		return err
	}
	o.setLogger()
	return nil
}

// ValidateForRender applies render defaults and checks formats.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.setLogger()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// State returns the view state snapshot described by the options. ExpandAll
// is resolved later against the forest, see [Runner.Compile].
func (o *Options) State() flow.State {
	s := flow.State{}.WithExpanded(o.Expanded...)
	s.FocusedID = o.FocusedID
	s.SelectedID = o.SelectedID
	s.HighlightedID = o.HighlightedID
	s.BlurScope = o.BlurScope
	return s
}

// LayoutKeyOpts returns cache key options for layout compilation.
func (o *Options) LayoutKeyOpts() (cache.LayoutKeyOpts, error) {
	cfgHash, err := cache.HashJSON(o.Layout)
	if err != nil {
		return cache.LayoutKeyOpts{}, err
	}
	expanded := slices.Clone(o.Expanded)
	if o.ExpandAll {
		expanded = []string{expandAllMarker}
	}
	slices.Sort(expanded)
	return cache.LayoutKeyOpts{
		Expanded:      slices.Compact(expanded),
		FocusedID:     o.FocusedID,
		SelectedID:    o.SelectedID,
		HighlightedID: o.HighlightedID,
		BlurScope:     string(o.BlurScope),
		ConfigHash:    cfgHash,
	}, nil
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:          format,
		Detailed:        o.Detailed,
		HideAffordances: o.HideAffordances,
	}
}
