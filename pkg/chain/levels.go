package chain

import "github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"

// assignLevels computes hierarchical layout depths: the target sits at level
// 0 and each ingredient one level below its consumer.
//
// The DFS is cycle-safe: an item already on the current path is skipped
// outright (the recipe graph can legitimately contain loops), and items
// reachable along several paths keep their shallowest assignment so they are
// drawn as close to the target as possible. Disposal nodes terminate
// recursion; they have no ingredients to expand. Entries unreachable from
// the target through ingredients (isolated byproducts) keep their current
// level.
func assignLevels(s *Session, p *plan.Plan, targetID string) {
	levels := make(map[string]int, len(p.Needs))
	onPath := make(map[string]bool)

	var assign func(id string, level int)
	assign = func(id string, level int) {
		if onPath[id] {
			return
		}
		if existing, ok := levels[id]; ok && existing <= level {
			return
		}
		levels[id] = level

		if plan.IsDisposalID(id) {
			return
		}
		recipe, _ := s.SelectedRecipe(id)
		if recipe == nil {
			return
		}

		onPath[id] = true
		for _, ing := range recipe.Ingredients {
			if _, present := p.Needs[ing.ItemID]; present {
				assign(ing.ItemID, level+1)
			}
		}
		delete(onPath, id)
	}

	assign(targetID, 0)

	for id, entry := range p.Needs {
		if level, ok := levels[id]; ok {
			entry.Level = level
			p.Needs[id] = entry
		}
	}
}
