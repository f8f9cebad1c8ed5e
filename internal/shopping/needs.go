// Package shopping turns a weekly plan into ingredient needs for a number
// of covers and compares them with the stock on hand.
package shopping

import (
	"sort"

	"cantine-planner/internal/inventory"
	"cantine-planner/internal/planner"
	"cantine-planner/internal/recipe"
	"cantine-planner/internal/textnorm"
)

// maxRecipesPerNeed bounds the recipe names listed against an ingredient.
const maxRecipesPerNeed = 3

// ComputeNeeds sums per-portion quantities over the filled slots, scaled by
// covers, and matches each ingredient against the first stock item with a
// matching name. Ingredients to order come first, largest need first.
func ComputeNeeds(plan planner.WeeklyPlan, cat *recipe.Catalogue, items []inventory.Item, covers int, mode textnorm.MatchMode) []Need {
	type acc struct {
		need Need
		seen map[string]bool
	}
	byKey := map[string]*acc{}
	var order []string

	for _, slot := range plan.FilledSlots() {
		r, ok := cat.Get(slot.RecipeID)
		if !ok {
			continue
		}
		for _, ing := range r.Ingredients {
			key := textnorm.Normalize(ing.Name)
			if key == "" {
				continue
			}
			a, ok := byKey[key]
			if !ok {
				a = &acc{need: Need{Ingredient: textnorm.Display(ing.Name)}, seen: map[string]bool{}}
				byKey[key] = a
				order = append(order, key)
			}
			a.need.RequiredKg += ing.QuantityKg * float64(covers)
			if !a.seen[r.Name] && len(a.need.Recipes) < maxRecipesPerNeed {
				a.need.Recipes = append(a.need.Recipes, r.Name)
			}
			a.seen[r.Name] = true
		}
	}

	stock := make([]string, len(items))
	for i, it := range items {
		stock[i] = textnorm.Normalize(it.ProductName)
	}

	needs := make([]Need, 0, len(order))
	for _, key := range order {
		n := byKey[key].need
		for i, name := range stock {
			if textnorm.Matches(name, key, mode) {
				n.StockKg = items[i].Quantity
				break
			}
		}
		n.DifferenceKg = n.StockKg - n.RequiredKg
		n.Status = StatusOK
		if n.DifferenceKg < 0 {
			n.Status = StatusOrder
		}
		needs = append(needs, n)
	}

	sort.SliceStable(needs, func(i, j int) bool {
		if needs[i].Status != needs[j].Status {
			return needs[i].Status == StatusOrder
		}
		if needs[i].RequiredKg != needs[j].RequiredKg {
			return needs[i].RequiredKg > needs[j].RequiredKg
		}
		return needs[i].Ingredient < needs[j].Ingredient
	})
	return needs
}
