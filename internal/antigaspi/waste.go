// Package antigaspi estimates the food waste a weekly menu leaves behind and
// ranks the recipes that can turn that waste back into food.
package antigaspi

import (
	"sort"

	"cantine-planner/internal/planner"
	"cantine-planner/internal/recipe"
)

// LedgerEntry is the week's total for one kind of waste.
type LedgerEntry struct {
	Name            string  `json:"name"`
	Label           string  `json:"label"`
	Category        string  `json:"category"`
	TotalQuantityKg float64 `json:"total_quantity_kg"`
}

// Ledger maps waste names to their weekly totals.
type Ledger map[string]LedgerEntry

// Names returns the waste names in alphabetical order.
func (l Ledger) Names() []string {
	names := make([]string, 0, len(l))
	for n := range l {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Entries returns the entries sorted by name.
func (l Ledger) Entries() []LedgerEntry {
	out := make([]LedgerEntry, 0, len(l))
	for _, n := range l.Names() {
		out = append(out, l[n])
	}
	return out
}

// TotalKg is the mass of every waste kind combined.
func (l Ledger) TotalKg() float64 {
	var total float64
	for _, n := range l.Names() {
		total += l[n].TotalQuantityKg
	}
	return total
}

// AggregateWaste sums the declared byproducts of every filled slot by waste
// name. Slots whose recipe is not in the catalogue contribute nothing.
func AggregateWaste(plan planner.WeeklyPlan, cat *recipe.Catalogue) Ledger {
	ledger := Ledger{}
	for _, slot := range plan.FilledSlots() {
		r, ok := cat.Get(slot.RecipeID)
		if !ok {
			continue
		}
		for _, b := range r.Byproducts {
			e, seen := ledger[b.WasteName]
			if !seen {
				e = LedgerEntry{Name: b.WasteName, Label: b.DisplayLabel(), Category: b.Category}
			}
			e.TotalQuantityKg += b.QuantityKg
			ledger[b.WasteName] = e
		}
	}
	return ledger
}
