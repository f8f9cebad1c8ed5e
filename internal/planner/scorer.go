package planner

import (
	"time"

	"cantine-planner/internal/inventory"
	"cantine-planner/internal/recipe"
	"cantine-planner/internal/textnorm"
)

const (
	// ExpiringBonus is added per ingredient matched by stock about to expire.
	ExpiringBonus = 100
	// StockedBonus is added per ingredient matched by stock on hand.
	StockedBonus = 10

	// Expiring window in calendar days relative to the planning date:
	// expired yesterday through expiring in a week.
	expiringFromDays = -1
	expiringToDays   = 7
)

// Affinity is how well a recipe uses the current stock.
type Affinity struct {
	Score               int      `json:"score"`
	ExpiringIngredients []string `json:"expiring_ingredients,omitempty"`
	StockedIngredients  []string `json:"stocked_ingredients,omitempty"`
}

type stockEntry struct {
	name     string
	quantity float64
	daysLeft int
	expires  bool
}

// Scorer rates recipes against one inventory snapshot. Inventory names are
// normalized once so a scorer can be reused across a whole allocation.
type Scorer struct {
	stock []stockEntry
	mode  textnorm.MatchMode
}

// NewScorer prepares a scorer for the snapshot as seen on asOf.
func NewScorer(items []inventory.Item, asOf time.Time, mode textnorm.MatchMode) *Scorer {
	s := &Scorer{stock: make([]stockEntry, 0, len(items)), mode: mode}
	for _, it := range items {
		e := stockEntry{name: textnorm.Normalize(it.ProductName), quantity: it.Quantity}
		e.daysLeft, e.expires = it.DaysUntilExpiry(asOf)
		s.stock = append(s.stock, e)
	}
	return s
}

// Score rates one recipe. An ingredient counts once: as expiring when any
// matching item is inside the expiry window, otherwise as stocked when the
// matching items add up to a positive quantity.
func (s *Scorer) Score(r recipe.Recipe) Affinity {
	var a Affinity
	for _, ing := range r.Ingredients {
		name := textnorm.Normalize(ing.Name)
		expiring := false
		var onHand float64
		for _, e := range s.stock {
			if !textnorm.Matches(e.name, name, s.mode) {
				continue
			}
			if e.expires && e.daysLeft >= expiringFromDays && e.daysLeft <= expiringToDays {
				expiring = true
			}
			onHand += e.quantity
		}

		switch {
		case expiring:
			a.Score += ExpiringBonus
			a.ExpiringIngredients = append(a.ExpiringIngredients, textnorm.Display(ing.Name))
		case onHand > 0:
			a.Score += StockedBonus
			a.StockedIngredients = append(a.StockedIngredients, textnorm.Display(ing.Name))
		}
	}
	return a
}

// Score rates a single recipe against an inventory snapshot.
func Score(r recipe.Recipe, items []inventory.Item, asOf time.Time, mode textnorm.MatchMode) Affinity {
	return NewScorer(items, asOf, mode).Score(r)
}
