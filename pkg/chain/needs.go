package chain

import (
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/catalog"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"
)

// populateNeeds maps the solved rate vector back onto items, filling the
// plan's needs map in two passes.
//
// Pass 1 creates one entry per item whose solved rate clears rateEpsilon:
// raw flag, machine count, and transport requirement are derived here. An
// item is raw iff it has no selected recipe or that recipe has no
// ingredients.
//
// Pass 2 walks each counted machine's recipe for non-primary products.
// Waste products are forwarded to the session's accumulator and never become
// nodes; other byproducts are folded into the needs map additively with a
// zero machine count (byproducts are incidental output of machines already
// counted). Recipes shared by several co-product entries are processed once.
func populateNeeds(s *Session, p *plan.Plan, items []string, index map[string]int, x []float64) {
	for _, id := range items {
		rate := x[index[id]]
		if rate <= rateEpsilon {
			continue
		}

		recipe, recipeIdx := s.SelectedRecipe(id)
		raw := recipe == nil || len(recipe.Ingredients) == 0

		var machines float64
		if recipe != nil {
			perMachine := recipe.ProductAmount(id) / recipe.CycleMinutes()
			machines = rate / perMachine
		}

		p.Needs[id] = plan.Need{
			ItemID:         id,
			Rate:           rate,
			Raw:            raw,
			Target:         id == p.TargetID,
			RecipeIndex:    recipeIdx,
			Machines:       machines,
			Transport:      transportType(s.Catalog, id),
			TransportCount: rate / s.Catalog.TransportRate(transportType(s.Catalog, id)),
		}
	}

	processed := make(map[*catalog.Recipe]bool)
	for _, id := range p.NeedIDs() {
		entry := p.Needs[id]
		if entry.Raw || entry.Machines <= 0 {
			continue
		}
		recipe, _ := s.SelectedRecipe(id)
		if recipe == nil || processed[recipe] {
			continue
		}
		processed[recipe] = true

		primaryAmount := recipe.ProductAmount(id)
		for _, product := range recipe.Products {
			if product.ItemID == id {
				continue
			}
			byRate := entry.Rate * (product.Amount / primaryAmount)
			if s.Catalog.IsWaste(product.ItemID) {
				s.recordWaste(product.ItemID, byRate)
				continue
			}
			addByproduct(s, p, product.ItemID, byRate)
		}
	}
}

// addByproduct folds a non-waste byproduct rate into the needs map: additive
// on an existing entry, otherwise a fresh zero-machine byproduct node.
func addByproduct(s *Session, p *plan.Plan, itemID string, rate float64) {
	if existing, ok := p.Needs[itemID]; ok {
		existing.Rate += rate
		existing.TransportCount = existing.Rate / s.Catalog.TransportRate(existing.Transport)
		p.Needs[itemID] = existing
		return
	}
	transport := transportType(s.Catalog, itemID)
	p.Needs[itemID] = plan.Need{
		ItemID:         itemID,
		Rate:           rate,
		Byproduct:      true,
		Machines:       0,
		Transport:      transport,
		TransportCount: rate / s.Catalog.TransportRate(transport),
	}
}

func transportType(cat *catalog.Catalog, itemID string) string {
	if item, ok := cat.Item(itemID); ok {
		return item.Transport
	}
	return ""
}

// buildIngredientEdges emits one ingredient → consumer edge per ingredient
// of every machine-backed entry, carrying the absolute per-minute flow:
// ingredientAmount / cycleMinutes * machineCount. Edges into items that were
// epsilon-dropped are skipped.
func buildIngredientEdges(s *Session, p *plan.Plan) {
	for _, id := range p.NeedIDs() {
		entry := p.Needs[id]
		if entry.Raw || entry.Disposal || entry.Machines <= 0 {
			continue
		}
		recipe, _ := s.SelectedRecipe(id)
		if recipe == nil {
			continue
		}
		for _, ing := range recipe.Ingredients {
			if _, ok := p.Needs[ing.ItemID]; !ok {
				continue
			}
			p.Edges = append(p.Edges, plan.Edge{
				From: ing.ItemID,
				To:   id,
				Rate: ing.Amount / recipe.CycleMinutes() * entry.Machines,
			})
		}
	}
}
