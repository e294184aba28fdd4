// Package catalog models the read-only item/recipe/building data that the
// production-chain solver consumes.
//
// A catalog is immutable after loading: the solver only reads from it. Which
// recipe an item actually uses is mutable selection state owned by
// [chain.Session], not by the catalog.
//
// # Lookups
//
// The two lookups the solver depends on are indexed at load time:
//
//   - RecipesFor(item): every recipe, from any building or mode, that lists
//     the item among its products. Used for production and byproducts.
//   - DisposalRecipesFor(item): every recipe that consumes the item as an
//     ingredient. Used to route waste byproducts into disposal machines.
package catalog

import (
	"fmt"
	"sort"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/errors"
)

// DefaultTransportRate is the per-minute throughput assumed for transport
// types that the catalog does not list explicitly.
const DefaultTransportRate = 480.0

// Stack is an item quantity inside a recipe: amount per machine cycle.
type Stack struct {
	ItemID string  `toml:"item" json:"item"`
	Amount float64 `toml:"amount" json:"amount"`
}

// Recipe is one production rule: a building turns Ingredients into Products
// every Time seconds. Recipes are catalog data and never mutated.
type Recipe struct {
	Building    string  `toml:"building" json:"building"`
	Mode        string  `toml:"mode,omitempty" json:"mode,omitempty"`
	Time        float64 `toml:"time" json:"time"` // seconds per cycle
	Ingredients []Stack `toml:"ingredients" json:"ingredients"`
	Products    []Stack `toml:"products" json:"products"`
}

// CycleMinutes returns the recipe cycle time in minutes.
func (r *Recipe) CycleMinutes() float64 {
	return r.Time / 60.0
}

// ProductAmount returns the per-cycle amount of itemID among the recipe's
// products. If the item is not literally listed (multi-output recipes where
// the caller asks about a co-product alias), the first product's amount is
// returned as a fallback.
func (r *Recipe) ProductAmount(itemID string) float64 {
	for _, p := range r.Products {
		if p.ItemID == itemID {
			return p.Amount
		}
	}
	if len(r.Products) > 0 {
		return r.Products[0].Amount
	}
	return 0
}

// Produces reports whether itemID appears among the recipe's products.
func (r *Recipe) Produces(itemID string) bool {
	for _, p := range r.Products {
		if p.ItemID == itemID {
			return true
		}
	}
	return false
}

// Consumes reports whether itemID appears among the recipe's ingredients.
func (r *Recipe) Consumes(itemID string) bool {
	for _, i := range r.Ingredients {
		if i.ItemID == itemID {
			return true
		}
	}
	return false
}

// Item is a catalog entry. Waste items are never kept as products: the solver
// routes them into disposal recipes instead of creating byproduct nodes.
type Item struct {
	ID        string `toml:"id" json:"id"`
	Name      string `toml:"name,omitempty" json:"name,omitempty"`
	Transport string `toml:"transport,omitempty" json:"transport,omitempty"`
	Waste     bool   `toml:"waste,omitempty" json:"waste,omitempty"`
}

// DisplayName returns the name if set, otherwise the ID.
func (i *Item) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}

// Building is a machine type recipes run in.
type Building struct {
	ID    string   `toml:"id" json:"id"`
	Name  string   `toml:"name,omitempty" json:"name,omitempty"`
	Modes []string `toml:"modes,omitempty" json:"modes,omitempty"`
}

// Catalog is the validated, indexed recipe database.
// It is safe for concurrent reads after New returns.
type Catalog struct {
	items      map[string]*Item
	buildings  map[string]*Building
	recipes    []*Recipe
	transports map[string]float64

	byProduct    map[string][]*Recipe
	byIngredient map[string][]*Recipe
}

// New builds and validates a catalog from raw data. Every recipe must
// reference known items and buildings, have a positive cycle time, positive
// stack amounts, and at least one product. Violations are reported with
// [errors.ErrCodeInvalidCatalog].
func New(items []Item, buildings []Building, recipes []Recipe, transports map[string]float64) (*Catalog, error) {
	c := &Catalog{
		items:        make(map[string]*Item, len(items)),
		buildings:    make(map[string]*Building, len(buildings)),
		transports:   make(map[string]float64, len(transports)),
		byProduct:    make(map[string][]*Recipe),
		byIngredient: make(map[string][]*Recipe),
	}

	for i := range items {
		it := &items[i]
		if it.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "item %d has empty id", i)
		}
		if _, dup := c.items[it.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "duplicate item id %q", it.ID)
		}
		c.items[it.ID] = it
	}

	for i := range buildings {
		b := &buildings[i]
		if b.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "building %d has empty id", i)
		}
		if _, dup := c.buildings[b.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "duplicate building id %q", b.ID)
		}
		c.buildings[b.ID] = b
	}

	for i := range recipes {
		r := &recipes[i]
		if err := c.validateRecipe(r); err != nil {
			return nil, err
		}
		c.recipes = append(c.recipes, r)
		for _, p := range r.Products {
			c.byProduct[p.ItemID] = append(c.byProduct[p.ItemID], r)
		}
		for _, in := range r.Ingredients {
			c.byIngredient[in.ItemID] = append(c.byIngredient[in.ItemID], r)
		}
	}

	for t, rate := range transports {
		if rate <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "transport %q has non-positive rate %v", t, rate)
		}
		c.transports[t] = rate
	}

	return c, nil
}

func (c *Catalog) validateRecipe(r *Recipe) error {
	desc := recipeDesc(r)
	if r.Building == "" {
		return errors.New(errors.ErrCodeInvalidCatalog, "recipe %s has no building", desc)
	}
	if _, ok := c.buildings[r.Building]; !ok {
		return errors.New(errors.ErrCodeInvalidCatalog, "recipe %s references unknown building %q", desc, r.Building)
	}
	if r.Mode != "" {
		b := c.buildings[r.Building]
		found := false
		for _, m := range b.Modes {
			if m == r.Mode {
				found = true
				break
			}
		}
		if !found {
			return errors.New(errors.ErrCodeInvalidCatalog, "recipe %s uses mode %q not declared on building %q", desc, r.Mode, r.Building)
		}
	}
	if r.Time <= 0 {
		return errors.New(errors.ErrCodeInvalidCatalog, "recipe %s has non-positive cycle time %v", desc, r.Time)
	}
	if len(r.Products) == 0 {
		return errors.New(errors.ErrCodeInvalidCatalog, "recipe %s has no products", desc)
	}
	for _, s := range append(append([]Stack{}, r.Ingredients...), r.Products...) {
		if _, ok := c.items[s.ItemID]; !ok {
			return errors.New(errors.ErrCodeInvalidCatalog, "recipe %s references unknown item %q", desc, s.ItemID)
		}
		if s.Amount <= 0 {
			return errors.New(errors.ErrCodeInvalidCatalog, "recipe %s has non-positive amount %v for item %q", desc, s.Amount, s.ItemID)
		}
	}
	return nil
}

func recipeDesc(r *Recipe) string {
	if len(r.Products) > 0 {
		return fmt.Sprintf("%s/%s", r.Building, r.Products[0].ItemID)
	}
	return r.Building
}

// Item returns the item with the given ID.
func (c *Catalog) Item(id string) (*Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// Building returns the building with the given ID.
func (c *Catalog) Building(id string) (*Building, bool) {
	b, ok := c.buildings[id]
	return b, ok
}

// ItemIDs returns all item IDs in sorted order.
func (c *Catalog) ItemIDs() []string {
	ids := make([]string, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ItemCount returns the number of items in the catalog.
func (c *Catalog) ItemCount() int { return len(c.items) }

// RecipeCount returns the number of recipes in the catalog.
func (c *Catalog) RecipeCount() int { return len(c.recipes) }

// RecipesFor returns every recipe producing itemID, in catalog order.
// Returns nil if the item has no producers (raw material or unknown item).
func (c *Catalog) RecipesFor(itemID string) []*Recipe {
	return c.byProduct[itemID]
}

// DisposalRecipesFor returns every recipe consuming itemID as an ingredient.
// Returns nil if nothing can consume the item.
func (c *Catalog) DisposalRecipesFor(itemID string) []*Recipe {
	return c.byIngredient[itemID]
}

// IsWaste reports whether itemID is classified as a waste byproduct.
// Unknown items are not waste.
func (c *Catalog) IsWaste(itemID string) bool {
	it, ok := c.items[itemID]
	return ok && it.Waste
}

// TransportRate returns the per-minute throughput for the given transport
// type, falling back to [DefaultTransportRate] when unlisted or empty.
func (c *Catalog) TransportRate(transport string) float64 {
	if rate, ok := c.transports[transport]; ok {
		return rate
	}
	return DefaultTransportRate
}
