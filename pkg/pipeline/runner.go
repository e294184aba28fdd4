package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/cache"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/chain"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/flowgraph"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/observability"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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

// Execute runs the complete solve → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Solve
	solveStart := time.Now()
	p, solveHit, err := r.SolveWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	result.Plan = p
	result.Stats.SolveTime = time.Since(solveStart)
	result.Stats.NeedCount = len(p.Needs)
	result.Stats.EdgeCount = len(p.Edges)
	result.CacheInfo.SolveHit = solveHit

	// Compute plan hash for cache keys and API responses
	if planData, err := plan.Marshal(p); err == nil {
		result.PlanHash = cache.Hash(planData)
	}

	r.Logger.Info("solved chain",
		"target", opts.TargetID,
		"needs", len(p.Needs),
		"edges", len(p.Edges),
		"duration", result.Stats.SolveTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	layout, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, p, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", len(layout.Nodes),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, p, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SolveWithCacheInfo solves the chain with caching and returns cache hit info.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, opts Options) (*plan.Plan, bool, error) {
	if err := opts.ValidateForSolve(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	catalogHash := opts.Catalog.Hash()
	cacheKey := r.Keyer.PlanKey(catalogHash, opts.PlanKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if p, err := plan.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "plan")
				return p, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "plan")
	}

	// Solve
	start := time.Now()
	observability.Solve().OnSolveStart(ctx, opts.TargetID, opts.TargetRate)

	s := chain.NewSession(opts.Catalog)
	s.Logger = opts.Logger
	if opts.Strict {
		s.WastePolicy = chain.WasteStrict
	}
	for itemID, idx := range opts.Selections {
		s.SelectRecipe(itemID, idx)
	}

	p, err := chain.Solve(s, opts.TargetID, opts.TargetRate)
	observability.Solve().OnSolveComplete(ctx, opts.TargetID, needCount(p), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if !opts.Refresh {
		if data, err := plan.Marshal(p); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLPlan)
			observability.Cache().OnCacheSet(ctx, "plan", len(data))
		}
	}

	return p, false, nil
}

// Solve is a convenience wrapper that calls SolveWithCacheInfo and discards the cache hit info.
func (r *Runner) Solve(ctx context.Context, opts Options) (*plan.Plan, error) {
	p, _, err := r.SolveWithCacheInfo(ctx, opts)
	return p, err
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, p *plan.Plan, opts Options) (plan.Layout, bool, error) {
	opts.SetLayoutDefaults()
	r.applyLogger(&opts)

	// Compute cache key
	planData, _ := plan.Marshal(p)
	planHash := cache.Hash(planData)
	cacheKey := r.Keyer.LayoutKey(planHash, opts.LayoutKeyOpts())

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		if cached, err := plan.UnmarshalLayout(data); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return cached, true, nil
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	// Compute layout
	start := time.Now()
	observability.Solve().OnLayoutStart(ctx, len(p.Needs))

	g := flowgraph.Build(p, flowgraph.Options{
		ShowRaw:      opts.ShowRaw,
		ShowDisposal: opts.ShowDisposal,
		Physics:      opts.Physics,
	})
	g.ApplyHierarchicalLayout()

	frames := 0
	if opts.Physics {
		for frames < opts.Frames && g.Step() {
			frames++
		}
		g.StopSimulation()
	}
	layout := g.Layout()
	observability.Solve().OnLayoutComplete(ctx, frames, time.Since(start), nil)

	// Cache the result
	if data, err := plan.MarshalLayout(layout); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	return layout, false, nil
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, p *plan.Plan, opts Options) (plan.Layout, error) {
	layout, _, err := r.ComputeLayoutWithCacheInfo(ctx, p, opts)
	return layout, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, p *plan.Plan, layout plan.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from layout data
	layoutData, err := plan.MarshalLayout(layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		start := time.Now()
		observability.Solve().OnRenderStart(ctx, format)
		data, err := r.renderFormat(ctx, p, layout, format, opts)
		observability.Solve().OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		rendered[format] = data
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, p *plan.Plan, layout plan.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, p, layout, opts)
	return artifacts, err
}

func (r *Runner) renderFormat(ctx context.Context, p *plan.Plan, layout plan.Layout, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(render.ToDOT(p, render.Options{Detailed: opts.Detailed})), nil
	case FormatSVG:
		dot := render.ToDOT(p, render.Options{Detailed: opts.Detailed})
		return render.RenderSVG(ctx, dot)
	case FormatPNG:
		dot := render.ToDOT(p, render.Options{Detailed: opts.Detailed})
		return render.RenderPNG(ctx, dot)
	case FormatJSON:
		return plan.MarshalLayout(layout)
	default:
		return nil, fmt.Errorf("invalid format: %q", format)
	}
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

func needCount(p *plan.Plan) int {
	if p == nil {
		return 0
	}
	return len(p.Needs)
}
