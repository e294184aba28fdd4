package chain

import "sort"

// discoverItems walks the recipe graph from the root item and returns every
// item participating in the chain, in sorted order.
//
// The traversal is an iterative depth-first search with an explicit stack.
// For each item the selected recipe's ingredients AND products are pushed:
// pushing products is what makes byproducts visible to the later stages. An
// item with no producing recipe is a dead end and contributes nothing
// further. Termination follows from the visited set growing monotonically
// over a finite catalog; cycles are harmless.
func discoverItems(s *Session, rootID string) []string {
	visited := make(map[string]bool)
	stack := []string{rootID}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true

		recipe, _ := s.SelectedRecipe(id)
		if recipe == nil {
			continue
		}
		for _, ing := range recipe.Ingredients {
			stack = append(stack, ing.ItemID)
		}
		for _, p := range recipe.Products {
			stack = append(stack, p.ItemID)
		}
	}

	items := make([]string, 0, len(visited))
	for id := range visited {
		items = append(items, id)
	}
	sort.Strings(items)
	return items
}
