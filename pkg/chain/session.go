package chain

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/catalog"
)

// WastePolicy controls what happens when a waste byproduct has no disposal
// route (no in-graph producer or no disposal recipe).
type WastePolicy int

const (
	// WasteSilentDrop logs a warning and drops the byproduct from the plan.
	WasteSilentDrop WastePolicy = iota
	// WasteStrict aborts the solve with MISSING_DISPOSAL_ROUTE.
	WasteStrict
)

// Session carries the mutable state of one calculation context: the recipe
// selections, the waste policy, and the per-solve waste accumulator.
//
// A Session is confined to a single goroutine. It replaces process-wide
// globals: every pipeline stage receives the session explicitly.
type Session struct {
	Catalog *catalog.Catalog

	// Selections maps item ID → index into Catalog.RecipesFor(item).
	// Missing entries default to index 0. Out-of-range indices are clamped.
	Selections map[string]int

	WastePolicy WastePolicy
	Logger      *log.Logger

	// generation increments on every solve; stale async results can be
	// discarded by comparing tokens.
	generation uint64

	// waste accumulates byproduct rates during needs population and is
	// consumed (and cleared) by disposal processing. One-shot per solve.
	waste map[string]float64
}

// NewSession creates a session over the given catalog with default recipe
// selections and the silent-drop waste policy.
func NewSession(cat *catalog.Catalog) *Session {
	return &Session{
		Catalog:    cat,
		Selections: make(map[string]int),
		Logger:     log.NewWithOptions(io.Discard, log.Options{}),
		waste:      make(map[string]float64),
	}
}

// SelectRecipe records which producing recipe the item should use.
// The index refers to Catalog.RecipesFor(itemID) order.
func (s *Session) SelectRecipe(itemID string, index int) {
	s.Selections[itemID] = index
}

// Generation returns the token of the most recent solve.
func (s *Session) Generation() uint64 { return s.generation }

// nextGeneration advances and returns the solve token.
func (s *Session) nextGeneration() uint64 {
	s.generation++
	return s.generation
}

// SelectedRecipe resolves the active recipe for an item: the recipe at the
// selected index among its producers, index 0 by default. Returns nil and -1
// when the item has no producing recipes (a raw material or dead end).
func (s *Session) SelectedRecipe(itemID string) (*catalog.Recipe, int) {
	recipes := s.Catalog.RecipesFor(itemID)
	if len(recipes) == 0 {
		return nil, -1
	}
	idx := s.Selections[itemID]
	if idx < 0 || idx >= len(recipes) {
		idx = 0
	}
	return recipes[idx], idx
}

// recordWaste accumulates a waste byproduct rate for disposal processing.
// Rates are additive: the same waste item may arise from several recipes.
func (s *Session) recordWaste(itemID string, rate float64) {
	s.waste[itemID] += rate
}

// resetWaste clears the accumulator at the start of a solve so a failed or
// repeated calculation never leaks rates into the next one.
func (s *Session) resetWaste() {
	s.waste = make(map[string]float64)
}
