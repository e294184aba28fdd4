package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/errors"
)

func validFixture() ([]Item, []Building, []Recipe) {
	items := []Item{
		{ID: "iron_ore", Transport: "belt"},
		{ID: "iron_plate", Name: "Iron Plate", Transport: "belt"},
		{ID: "slag", Waste: true},
	}
	buildings := []Building{
		{ID: "smelter", Modes: []string{"normal", "overclock"}},
	}
	recipes := []Recipe{
		{
			Building:    "smelter",
			Time:        30,
			Ingredients: []Stack{{ItemID: "iron_ore", Amount: 2}},
			Products:    []Stack{{ItemID: "iron_plate", Amount: 1}, {ItemID: "slag", Amount: 0.5}},
		},
	}
	return items, buildings, recipes
}

func TestNewValidCatalog(t *testing.T) {
	items, buildings, recipes := validFixture()
	cat, err := New(items, buildings, recipes, map[string]float64{"belt": 240})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if cat.ItemCount() != 3 {
		t.Errorf("ItemCount() = %d, want 3", cat.ItemCount())
	}
	if cat.RecipeCount() != 1 {
		t.Errorf("RecipeCount() = %d, want 1", cat.RecipeCount())
	}
	if got := cat.RecipesFor("iron_plate"); len(got) != 1 {
		t.Errorf("RecipesFor(iron_plate) = %d recipes, want 1", len(got))
	}
	if got := cat.RecipesFor("iron_ore"); got != nil {
		t.Errorf("RecipesFor(iron_ore) = %v, want nil", got)
	}
	if got := cat.DisposalRecipesFor("iron_ore"); len(got) != 1 {
		t.Errorf("DisposalRecipesFor(iron_ore) = %d recipes, want 1", len(got))
	}
	if !cat.IsWaste("slag") {
		t.Error("IsWaste(slag) = false")
	}
	if cat.IsWaste("iron_plate") || cat.IsWaste("unknown") {
		t.Error("IsWaste() true for non-waste item")
	}
	if got := cat.TransportRate("belt"); got != 240 {
		t.Errorf("TransportRate(belt) = %v, want 240", got)
	}
	if got := cat.TransportRate("pipe"); got != DefaultTransportRate {
		t.Errorf("TransportRate(pipe) = %v, want default %v", got, DefaultTransportRate)
	}
}

func TestNewRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*[]Item, *[]Building, *[]Recipe)
	}{
		{"empty item id", func(i *[]Item, b *[]Building, r *[]Recipe) {
			*i = append(*i, Item{})
		}},
		{"duplicate item id", func(i *[]Item, b *[]Building, r *[]Recipe) {
			*i = append(*i, Item{ID: "iron_ore"})
		}},
		{"duplicate building id", func(i *[]Item, b *[]Building, r *[]Recipe) {
			*b = append(*b, Building{ID: "smelter"})
		}},
		{"unknown building", func(i *[]Item, b *[]Building, r *[]Recipe) {
			(*r)[0].Building = "forge"
		}},
		{"undeclared mode", func(i *[]Item, b *[]Building, r *[]Recipe) {
			(*r)[0].Mode = "turbo"
		}},
		{"zero cycle time", func(i *[]Item, b *[]Building, r *[]Recipe) {
			(*r)[0].Time = 0
		}},
		{"no products", func(i *[]Item, b *[]Building, r *[]Recipe) {
			(*r)[0].Products = nil
		}},
		{"unknown ingredient", func(i *[]Item, b *[]Building, r *[]Recipe) {
			(*r)[0].Ingredients[0].ItemID = "mystery"
		}},
		{"non-positive amount", func(i *[]Item, b *[]Building, r *[]Recipe) {
			(*r)[0].Products[0].Amount = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, b, r := validFixture()
			tt.mutate(&i, &b, &r)
			_, err := New(i, b, r, nil)
			if err == nil {
				t.Fatal("New() accepted invalid catalog")
			}
			if code := errors.GetCode(err); code != errors.ErrCodeInvalidCatalog {
				t.Errorf("error code = %q, want %q", code, errors.ErrCodeInvalidCatalog)
			}
		})
	}
}

func TestDeclaredModeAccepted(t *testing.T) {
	i, b, r := validFixture()
	r[0].Mode = "overclock"
	if _, err := New(i, b, r, nil); err != nil {
		t.Errorf("New() rejected declared mode: %v", err)
	}
}

func TestRecipeHelpers(t *testing.T) {
	r := &Recipe{
		Building:    "smelter",
		Time:        30,
		Ingredients: []Stack{{ItemID: "iron_ore", Amount: 2}},
		Products:    []Stack{{ItemID: "iron_plate", Amount: 1}, {ItemID: "slag", Amount: 0.5}},
	}

	if got := r.CycleMinutes(); got != 0.5 {
		t.Errorf("CycleMinutes() = %v, want 0.5", got)
	}
	if got := r.ProductAmount("slag"); got != 0.5 {
		t.Errorf("ProductAmount(slag) = %v, want 0.5", got)
	}
	// Unlisted item falls back to the first product's amount.
	if got := r.ProductAmount("something_else"); got != 1 {
		t.Errorf("ProductAmount(fallback) = %v, want 1", got)
	}
	if !r.Produces("iron_plate") || r.Produces("iron_ore") {
		t.Error("Produces() wrong")
	}
	if !r.Consumes("iron_ore") || r.Consumes("slag") {
		t.Error("Consumes() wrong")
	}
}

func TestItemDisplayName(t *testing.T) {
	if got := (&Item{ID: "x", Name: "Xenon"}).DisplayName(); got != "Xenon" {
		t.Errorf("DisplayName() = %q, want Xenon", got)
	}
	if got := (&Item{ID: "x"}).DisplayName(); got != "x" {
		t.Errorf("DisplayName() = %q, want x", got)
	}
}

const tomlFixture = `
[[items]]
id = "iron_ore"
transport = "belt"

[[items]]
id = "iron_plate"
transport = "belt"

[[buildings]]
id = "smelter"

[[recipes]]
building = "smelter"
time = 30.0

[[recipes.ingredients]]
item = "iron_ore"
amount = 2.0

[[recipes.products]]
item = "iron_plate"
amount = 1.0

[transports]
belt = 240.0
`

func TestParseTOML(t *testing.T) {
	cat, err := ParseTOML(strings.NewReader(tomlFixture))
	if err != nil {
		t.Fatalf("ParseTOML() error = %v", err)
	}
	if cat.ItemCount() != 2 || cat.RecipeCount() != 1 {
		t.Errorf("parsed %d items / %d recipes, want 2/1", cat.ItemCount(), cat.RecipeCount())
	}
	if got := cat.TransportRate("belt"); got != 240 {
		t.Errorf("TransportRate(belt) = %v, want 240", got)
	}
}

func TestParseJSON(t *testing.T) {
	doc := `{
		"items": [{"id": "a"}, {"id": "b"}],
		"buildings": [{"id": "m"}],
		"recipes": [{
			"building": "m",
			"time": 60,
			"ingredients": [{"item": "a", "amount": 1}],
			"products": [{"item": "b", "amount": 1}]
		}]
	}`
	cat, err := ParseJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if cat.ItemCount() != 2 {
		t.Errorf("ItemCount() = %d, want 2", cat.ItemCount())
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.toml")
	if err := os.WriteFile(path, []byte(tomlFixture), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cat.ItemCount() != 2 {
		t.Errorf("ItemCount() = %d, want 2", cat.ItemCount())
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	if err == nil {
		t.Fatal("Load() of missing file succeeded")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeFileNotFound {
		t.Errorf("error code = %q, want %q", code, errors.ErrCodeFileNotFound)
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("items = 7"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() accepted malformed TOML")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeCatalogLoad {
		t.Errorf("error code = %q, want %q", code, errors.ErrCodeCatalogLoad)
	}
}

func TestCatalogHash(t *testing.T) {
	a, err := ParseTOML(strings.NewReader(tomlFixture))
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseTOML(strings.NewReader(tomlFixture))
	if err != nil {
		t.Fatal(err)
	}
	if a.Hash() != b.Hash() {
		t.Error("identical catalogs hash differently")
	}

	i, bl, r := validFixture()
	c, err := New(i, bl, r, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.Hash() == c.Hash() {
		t.Error("different catalogs hash identically")
	}
}
