// Package storage reads and writes catalogue bundles: the recipe, valorization
// and stock files a kitchen maintains by hand or exports from the database.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cantine-planner/internal/antigaspi"
	"cantine-planner/internal/inventory"
	"cantine-planner/internal/recipe"
)

// StockRecord is an inventory line as written in a bundle file.
type StockRecord struct {
	ProductName string  `json:"product_name" yaml:"product_name"`
	Category    string  `json:"category,omitempty" yaml:"category,omitempty"`
	Quantity    float64 `json:"quantity" yaml:"quantity"`
	MinQuantity float64 `json:"min_quantity,omitempty" yaml:"min_quantity,omitempty"`
	Unit        string  `json:"unit,omitempty" yaml:"unit,omitempty"`
	ExpiryDate  string  `json:"expiry_date,omitempty" yaml:"expiry_date,omitempty"`
}

// Bundle is the on-disk catalogue format. ByproductsByRecipe lets a kitchen
// declare waste separately from the recipe list; entries are appended to the
// matching recipe when the catalogue is built.
type Bundle struct {
	Recipes             []recipe.Recipe                `json:"recipes" yaml:"recipes"`
	ValorizationRecipes []antigaspi.ValorizationRecipe `json:"valorization_recipes,omitempty" yaml:"valorization_recipes,omitempty"`
	ByproductsByRecipe  map[string][]recipe.Byproduct  `json:"byproducts_by_recipe,omitempty" yaml:"byproducts_by_recipe,omitempty"`
	Inventory           []StockRecord                  `json:"inventory,omitempty" yaml:"inventory,omitempty"`
}

type format int

const (
	formatJSON format = iota
	formatYAML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return 0, fmt.Errorf("unsupported catalogue file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// LoadBundle reads a JSON or YAML bundle, chosen by file extension.
func LoadBundle(path string) (*Bundle, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue file: %w", err)
	}

	var b Bundle
	switch f {
	case formatYAML:
		err = yaml.Unmarshal(data, &b)
	default:
		err = json.Unmarshal(data, &b)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalogue %s: %w", path, err)
	}
	return &b, nil
}

// SaveBundle writes a bundle, creating the parent directory if needed.
func SaveBundle(path string, b *Bundle) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch f {
	case formatYAML:
		data, err = yaml.Marshal(b)
	default:
		data, err = json.MarshalIndent(b, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal catalogue: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create catalogue directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalogue file: %w", err)
	}
	return nil
}

// MergedRecipes returns the recipes with ByproductsByRecipe folded in.
// It fails when a byproduct entry names an unknown recipe.
func (b *Bundle) MergedRecipes() ([]recipe.Recipe, error) {
	index := make(map[string]int, len(b.Recipes))
	out := make([]recipe.Recipe, len(b.Recipes))
	for i, r := range b.Recipes {
		r.Byproducts = append([]recipe.Byproduct(nil), r.Byproducts...)
		out[i] = r
		index[r.ID] = i
	}

	for id, extra := range b.ByproductsByRecipe {
		i, ok := index[id]
		if !ok {
			return nil, fmt.Errorf("%w: byproducts declared for unknown recipe %s", recipe.ErrInvalidRecipe, id)
		}
		out[i].Byproducts = append(out[i].Byproducts, extra...)
	}
	return out, nil
}

// Catalogue builds the validated recipe catalogue.
func (b *Bundle) Catalogue() (*recipe.Catalogue, error) {
	recipes, err := b.MergedRecipes()
	if err != nil {
		return nil, err
	}
	return recipe.NewCatalogue(recipes)
}

// Valorization returns the bundle's valorization recipes, or the built-in
// set when the bundle has none.
func (b *Bundle) Valorization() ([]antigaspi.ValorizationRecipe, error) {
	if len(b.ValorizationRecipes) == 0 {
		return antigaspi.DefaultValorizationRecipes(), nil
	}
	for _, v := range b.ValorizationRecipes {
		if err := antigaspi.ValidateValorizationRecipe(v); err != nil {
			return nil, err
		}
	}
	return b.ValorizationRecipes, nil
}

// InventoryItems converts the stock records, parsing expiry dates.
func (b *Bundle) InventoryItems() ([]inventory.Item, error) {
	items := make([]inventory.Item, 0, len(b.Inventory))
	for _, rec := range b.Inventory {
		expiry, err := inventory.ParseDate(rec.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("stock record %s: %w", rec.ProductName, err)
		}
		item := inventory.Item{
			ProductName: rec.ProductName,
			Category:    rec.Category,
			Quantity:    rec.Quantity,
			MinQuantity: rec.MinQuantity,
			Unit:        rec.Unit,
			ExpiryDate:  expiry,
		}
		if item.Unit == "" {
			item.Unit = "kg"
		}
		if err := inventory.Validate(item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// StockRecords converts inventory items back to their file form.
func StockRecords(items []inventory.Item) []StockRecord {
	out := make([]StockRecord, 0, len(items))
	for _, it := range items {
		rec := StockRecord{
			ProductName: it.ProductName,
			Category:    it.Category,
			Quantity:    it.Quantity,
			MinQuantity: it.MinQuantity,
			Unit:        it.Unit,
		}
		if it.ExpiryDate != nil {
			rec.ExpiryDate = it.ExpiryDate.Format(inventory.DateLayout)
		}
		out = append(out, rec)
	}
	return out
}
