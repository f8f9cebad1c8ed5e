package planner

import (
	"testing"
	"time"

	"cantine-planner/internal/inventory"
	"cantine-planner/internal/recipe"
)

// Monday of week 2026-W43.
var testAsOf = time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

func mustCatalogue(t *testing.T, recipes ...recipe.Recipe) *recipe.Catalogue {
	t.Helper()
	cat, err := recipe.NewCatalogue(recipes)
	if err != nil {
		t.Fatalf("Failed to build catalogue: %v", err)
	}
	return cat
}

func rec(id, name string, course recipe.Course, ingredients ...string) recipe.Recipe {
	r := recipe.Recipe{ID: id, Name: name, Course: course}
	for _, ing := range ingredients {
		r.Ingredients = append(r.Ingredients, recipe.Ingredient{Name: ing, QuantityKg: 0.1})
	}
	return r
}

func veg(r recipe.Recipe) recipe.Recipe {
	r.IsVegetarian = true
	return r
}

func inDays(n int) *time.Time {
	y, m, d := testAsOf.Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return &t
}

func item(name string, qty float64, expiry *time.Time) inventory.Item {
	return inventory.Item{ProductName: name, Quantity: qty, Unit: "kg", ExpiryDate: expiry}
}
