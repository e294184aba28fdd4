package chain

import (
	"math"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/errors"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"
)

// Solve computes the full production chain for targetID at targetRate items
// per minute and returns a freshly built Plan.
//
// Errors follow the taxonomy in pkg/errors: INVALID_INPUT for a missing
// target or non-positive rate (surfaced before any state changes),
// MISSING_CATALOG_ENTRY for an unknown target item, EMPTY_CHAIN when
// discovery yields nothing, and
// INFEASIBLE when the balance system is singular. On any error no partial
// plan is returned: callers never see a half-populated needs map.
func Solve(s *Session, targetID string, targetRate float64) (*plan.Plan, error) {
	if targetID == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no target item selected")
	}
	if targetRate <= 0 || math.IsNaN(targetRate) || math.IsInf(targetRate, 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "target rate must be a positive finite number, got %v", targetRate)
	}
	if _, ok := s.Catalog.Item(targetID); !ok {
		return nil, errors.New(errors.ErrCodeMissingCatalogEntry, "unknown item %q", targetID)
	}

	generation := s.nextGeneration()
	s.resetWaste()

	items := discoverItems(s, targetID)
	if len(items) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyChain, "chain discovery produced no items for %q", targetID)
	}
	s.Logger.Debug("discovered chain", "target", targetID, "items", len(items), "generation", generation)

	a, b, index, err := buildSystem(s, items, targetID, targetRate)
	if err != nil {
		return nil, err
	}

	x := solveSystem(a, b)
	if x == nil {
		return nil, errors.New(errors.ErrCodeInfeasible, "production system for %q is singular", targetID)
	}

	p := &plan.Plan{
		TargetID:   targetID,
		TargetRate: targetRate,
		Needs:      make(map[string]plan.Need, len(items)),
	}

	populateNeeds(s, p, items, index, x)
	assignLevels(s, p, targetID)
	buildIngredientEdges(s, p)
	if err := processDisposal(s, p); err != nil {
		return nil, err
	}

	s.Logger.Info("solved production chain",
		"target", targetID,
		"rate", targetRate,
		"items", len(p.Needs),
		"edges", len(p.Edges),
		"machines", p.TotalMachines())

	return p, nil
}
