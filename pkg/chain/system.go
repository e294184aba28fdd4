package chain

import (
	"math"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/errors"
)

// buildSystem constructs the balance matrix A and demand vector b over the
// discovered item set, plus the item → row/column index map.
//
// Row i encodes mass balance for item i:
//
//	x_i - Σ_j (ingredientAmount_j / productAmount_j) * x_j = demand_i
//
// where j ranges over items whose selected recipe consumes item i, x_j is
// item j's own production rate, and productAmount_j is the per-cycle amount
// of item j its recipe yields (first product as fallback for multi-output
// recipes that don't list the item literally). demand is zero everywhere
// except the target: produce exactly enough, no surplus.
//
// A zero or negative product amount would inject Inf/NaN coefficients, so it
// is rejected here as INFEASIBLE rather than letting the solver silently
// propagate garbage.
func buildSystem(s *Session, items []string, targetID string, targetRate float64) ([][]float64, []float64, map[string]int, error) {
	n := len(items)
	index := make(map[string]int, n)
	for i, id := range items {
		index[id] = i
	}

	a := make([][]float64, n)
	for i := range a {
		a[i] = make([]float64, n)
		a[i][i] = 1
	}
	b := make([]float64, n)

	for col, id := range items {
		recipe, _ := s.SelectedRecipe(id)
		if recipe == nil {
			continue
		}
		productAmount := recipe.ProductAmount(id)
		if productAmount <= 0 || math.IsNaN(productAmount) {
			return nil, nil, nil, errors.New(errors.ErrCodeInfeasible,
				"recipe for %q yields product amount %v", id, productAmount)
		}
		for _, ing := range recipe.Ingredients {
			row, ok := index[ing.ItemID]
			if !ok {
				continue
			}
			a[row][col] -= ing.Amount / productAmount
		}
	}

	b[index[targetID]] = targetRate
	return a, b, index, nil
}
