package app

import (
	"context"
	"fmt"
	"log"

	"cantine-planner/internal/storage"
)

// ImportStats counts what an import wrote.
type ImportStats struct {
	Recipes      int
	Inventory    int
	Valorization int
}

// ImportCatalogue loads a catalogue file into the database. Recipes are
// upserted one by one; a bundle carrying inventory replaces the whole stock
// snapshot. Valorization recipes in the file replace the active set.
func (a *App) ImportCatalogue(ctx context.Context, path string) (ImportStats, error) {
	bundle, err := storage.LoadBundle(path)
	if err != nil {
		return ImportStats{}, err
	}

	recipes, err := bundle.MergedRecipes()
	if err != nil {
		return ImportStats{}, fmt.Errorf("failed to read recipes: %w", err)
	}
	items, err := bundle.InventoryItems()
	if err != nil {
		return ImportStats{}, fmt.Errorf("failed to read inventory: %w", err)
	}
	valorization, err := bundle.Valorization()
	if err != nil {
		return ImportStats{}, fmt.Errorf("failed to read valorization recipes: %w", err)
	}

	var stats ImportStats
	for _, r := range recipes {
		if err := a.recipeRepo.Save(ctx, r); err != nil {
			return stats, fmt.Errorf("failed to import recipe %s: %w", r.ID, err)
		}
		stats.Recipes++
	}

	if len(items) > 0 {
		if err := a.inventoryRepo.ReplaceAll(ctx, items); err != nil {
			return stats, err
		}
		stats.Inventory = len(items)
	}

	a.setValorization(valorization)
	stats.Valorization = len(valorization)

	log.Printf("Imported %s: %d recipes, %d stock items, %d valorization recipes",
		path, stats.Recipes, stats.Inventory, stats.Valorization)
	return stats, nil
}

// LoadValorization reads the valorization recipes of a catalogue file
// without touching the database.
func (a *App) LoadValorization(path string) error {
	bundle, err := storage.LoadBundle(path)
	if err != nil {
		return err
	}
	v, err := bundle.Valorization()
	if err != nil {
		return err
	}
	a.setValorization(v)
	return nil
}

// ExportCatalogue writes the stored recipes, stock and active valorization
// recipes to a JSON or YAML file.
func (a *App) ExportCatalogue(ctx context.Context, path string) error {
	recipes, err := a.recipeRepo.List(ctx)
	if err != nil {
		return err
	}
	items, err := a.Inventory(ctx)
	if err != nil {
		return err
	}

	bundle := &storage.Bundle{
		Recipes:             recipes,
		ValorizationRecipes: a.valorizationRecipes(),
		Inventory:           storage.StockRecords(items),
	}
	if err := storage.SaveBundle(path, bundle); err != nil {
		return err
	}
	log.Printf("Exported %d recipes and %d stock items to %s", len(recipes), len(items), path)
	return nil
}
