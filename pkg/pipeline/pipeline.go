// Package pipeline provides the core solve → layout → render pipeline.
//
// This package implements the complete pipeline that can be used by CLI,
// API, and TUI components. By centralizing this logic, we ensure consistent
// behavior across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Solve: Compute the production chain for a target item and rate
//  2. Layout: Compute visual positions for the chain graph
//  3. Render: Generate output in various formats (DOT, SVG, PNG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Catalog:    cat,
//	    TargetID:   "iron_plate",
//	    TargetRate: 4,
//	    Formats:    []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Solve only
//	p, err := runner.Solve(ctx, opts)
//
//	// Layout with existing plan
//	layout, err := runner.ComputeLayout(ctx, p, opts)
//
//	// Render with existing plan and layout
//	artifacts, err := runner.Render(ctx, p, layout, opts)
package pipeline

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/cache"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/catalog"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and TUI
// =============================================================================

const (
	// DefaultPhysicsFrames is how many simulation steps the layout stage runs
	// when physics is enabled outside the interactive TUI.
	DefaultPhysicsFrames = 120
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Solve options
	TargetID   string         `json:"target_id"`
	TargetRate float64        `json:"target_rate"`
	Selections map[string]int `json:"selections,omitempty"`
	Strict     bool           `json:"strict,omitempty"`
	Refresh    bool           `json:"refresh,omitempty"`

	// Layout options
	ShowRaw      bool `json:"show_raw,omitempty"`
	ShowDisposal bool `json:"show_disposal,omitempty"`
	Physics      bool `json:"physics,omitempty"`
	Frames       int  `json:"frames,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Catalog *catalog.Catalog `json:"-"`
	Logger  *log.Logger      `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Plan is the solved production chain.
	Plan *plan.Plan

	// PlanHash is the content hash of the plan.
	PlanHash string

	// Layout contains node positions for the chain graph.
	Layout plan.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NeedCount  int
	EdgeCount  int
	SolveTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SolveHit  bool // Whether the plan came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png, json)", format)
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

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForSolve(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	o.validated = true
	return nil
}

// ValidateForSolve checks required fields for solving.
func (o *Options) ValidateForSolve() error {
	if o.Catalog == nil {
		return fmt.Errorf("catalog is required")
	}
	if o.TargetID == "" {
		return fmt.Errorf("target item is required")
	}
	if o.TargetRate <= 0 || math.IsNaN(o.TargetRate) || math.IsInf(o.TargetRate, 0) {
		return fmt.Errorf("target rate must be a positive finite number")
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Frames == 0 {
		o.Frames = DefaultPhysicsFrames
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatDOT}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// PlanKeyOpts returns cache key options for the solve stage.
func (o *Options) PlanKeyOpts() cache.PlanKeyOpts {
	return cache.PlanKeyOpts{
		TargetID:   o.TargetID,
		TargetRate: o.TargetRate,
		Selections: o.Selections,
		Strict:     o.Strict,
	}
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		ShowRaw:      o.ShowRaw,
		ShowDisposal: o.ShowDisposal,
		Physics:      o.Physics,
		Frames:       o.Frames,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
	}
}
