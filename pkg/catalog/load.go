package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/errors"
)

// File is the on-disk catalog document. TOML is the primary format; JSON is
// accepted for catalogs exported from other tools.
type File struct {
	Items      []Item             `toml:"items" json:"items"`
	Buildings  []Building         `toml:"buildings" json:"buildings"`
	Recipes    []Recipe           `toml:"recipes" json:"recipes"`
	Transports map[string]float64 `toml:"transports" json:"transports,omitempty"`
}

// Load reads and validates a catalog file. The format is chosen by file
// extension: .toml (default) or .json.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "catalog %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeCatalogLoad, err, "read catalog %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(bytes.NewReader(data))
	default:
		return ParseTOML(bytes.NewReader(data))
	}
}

// ParseTOML decodes a TOML catalog document and validates it.
func ParseTOML(r io.Reader) (*Catalog, error) {
	var f File
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalogLoad, err, "decode TOML catalog")
	}
	return New(f.Items, f.Buildings, f.Recipes, f.Transports)
}

// ParseJSON decodes a JSON catalog document and validates it.
func ParseJSON(r io.Reader) (*Catalog, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalogLoad, err, "decode JSON catalog")
	}
	return New(f.Items, f.Buildings, f.Recipes, f.Transports)
}

// Hash returns a stable content hash of the catalog, used for cache keys.
// Recipes, items, and transports all contribute; two catalogs with the same
// content hash produce identical solve results.
func (c *Catalog) Hash() string {
	h := sha256.New()
	enc := json.NewEncoder(h)

	for _, id := range c.ItemIDs() {
		_ = enc.Encode(c.items[id])
	}

	bids := make([]string, 0, len(c.buildings))
	for id := range c.buildings {
		bids = append(bids, id)
	}
	sort.Strings(bids)
	for _, id := range bids {
		_ = enc.Encode(c.buildings[id])
	}

	for _, r := range c.recipes {
		_ = enc.Encode(r)
	}

	ts := make([]string, 0, len(c.transports))
	for t := range c.transports {
		ts = append(ts, t)
	}
	sort.Strings(ts)
	for _, t := range ts {
		_ = enc.Encode(t)
		_ = enc.Encode(c.transports[t])
	}

	return hex.EncodeToString(h.Sum(nil))
}
