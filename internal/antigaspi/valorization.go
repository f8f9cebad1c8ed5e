package antigaspi

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"cantine-planner/internal/planner"
	"cantine-planner/internal/recipe"
)

// MaxSuggestions caps how many valorization recipes are proposed per week.
const MaxSuggestions = 3

// ValorizationRecipe is a recipe that reuses kitchen waste.
type ValorizationRecipe struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Category       string   `json:"category" yaml:"category"`
	UsesWasteNames []string `json:"uses_waste_names" yaml:"uses_waste_names"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	CO2AvoidedKg   float64  `json:"co2_avoided_kg" yaml:"co2_avoided_kg"`
	MassAvoidedKg  float64  `json:"mass_avoided_kg" yaml:"mass_avoided_kg"`
}

// ErrInvalidValorizationRecipe is returned by ValidateValorizationRecipe.
var ErrInvalidValorizationRecipe = errors.New("invalid valorization recipe")

// ValidateValorizationRecipe rejects records without an id, a name or any waste input.
func ValidateValorizationRecipe(v ValorizationRecipe) error {
	if strings.TrimSpace(v.ID) == "" || strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("%w: id and name are required", ErrInvalidValorizationRecipe)
	}
	if len(v.UsesWasteNames) == 0 {
		return fmt.Errorf("%w: %s uses no waste", ErrInvalidValorizationRecipe, v.ID)
	}
	if v.CO2AvoidedKg < 0 || v.MassAvoidedKg < 0 {
		return fmt.Errorf("%w: %s has negative savings", ErrInvalidValorizationRecipe, v.ID)
	}
	return nil
}

// Suggestion is a valorization recipe matched against a week's ledger.
type Suggestion struct {
	Recipe              ValorizationRecipe `json:"recipe"`
	MatchScore          float64            `json:"match_score"`
	MatchingWasteNames  []string           `json:"matching_waste_names"`
	ValorizedQuantityKg float64            `json:"valorized_quantity_kg"`
}

// MatchValorization ranks the valorization recipes that use at least one
// waste kind of the ledger. The score is the share of distinct waste kinds a
// recipe handles; ties go to the larger valorized mass, then catalogue order.
func MatchValorization(ledger Ledger, catalogue []ValorizationRecipe) []Suggestion {
	if len(ledger) == 0 {
		return nil
	}

	var out []Suggestion
	for _, v := range catalogue {
		var (
			matching []string
			qty      float64
		)
		seen := make(map[string]bool, len(v.UsesWasteNames))
		for _, name := range v.UsesWasteNames {
			if seen[name] {
				continue
			}
			seen[name] = true
			if e, ok := ledger[name]; ok {
				matching = append(matching, name)
				qty += e.TotalQuantityKg
			}
		}
		if len(matching) == 0 {
			continue
		}
		out = append(out, Suggestion{
			Recipe:              v,
			MatchScore:          float64(len(matching)) / float64(len(ledger)),
			MatchingWasteNames:  matching,
			ValorizedQuantityKg: qty,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MatchScore != out[j].MatchScore {
			return out[i].MatchScore > out[j].MatchScore
		}
		return out[i].ValorizedQuantityKg > out[j].ValorizedQuantityKg
	})
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// ValorizationScore is the rounded percentage of distinct waste kinds
// covered by the given suggestions. It reports false when the ledger is
// empty: there is nothing to valorize, which is not the same as 0%.
func ValorizationScore(ledger Ledger, suggestions []Suggestion) (int, bool) {
	if len(ledger) == 0 {
		return 0, false
	}
	covered := make(map[string]bool)
	for _, s := range suggestions {
		for _, name := range s.MatchingWasteNames {
			if _, ok := ledger[name]; ok {
				covered[name] = true
			}
		}
	}
	pct := float64(len(covered)) * 100 / float64(len(ledger))
	return int(math.Floor(pct + 0.5)), true
}

// Summary is the anti-waste panel of a week.
type Summary struct {
	WeekID       string        `json:"week_id"`
	Waste        []LedgerEntry `json:"waste"`
	TotalWasteKg float64       `json:"total_waste_kg"`
	Suggestions  []Suggestion  `json:"suggestions"`
	Score        int           `json:"score"`
	HasScore     bool          `json:"has_score"`
	CO2AvoidedKg float64       `json:"co2_avoided_kg"`

	ledger Ledger
}

// Ledger returns the aggregated waste behind the summary.
func (s Summary) Ledger() Ledger {
	return s.ledger
}

// Summarize aggregates a plan's waste, matches it and scores the coverage.
func Summarize(plan planner.WeeklyPlan, cat *recipe.Catalogue, valorization []ValorizationRecipe) Summary {
	ledger := AggregateWaste(plan, cat)
	suggestions := MatchValorization(ledger, valorization)
	score, ok := ValorizationScore(ledger, suggestions)

	s := Summary{
		WeekID:       plan.WeekID,
		Waste:        ledger.Entries(),
		TotalWasteKg: ledger.TotalKg(),
		Suggestions:  suggestions,
		Score:        score,
		HasScore:     ok,
		ledger:       ledger,
	}
	for _, sg := range suggestions {
		s.CO2AvoidedKg += sg.Recipe.CO2AvoidedKg
	}
	return s
}

// DefaultValorizationRecipes is the built-in catalogue used when no file
// provides one.
func DefaultValorizationRecipes() []ValorizationRecipe {
	return []ValorizationRecipe{
		{
			ID:             "rv001",
			Name:           "Bouillon de légumes maison",
			Category:       "base",
			UsesWasteNames: []string{"epluchures_carottes", "epluchures_pdt", "fanes_carottes"},
			Description:    "Simmer clean peelings and tops for a stock used in soups and sauces.",
			MassAvoidedKg:  0.5,
			CO2AvoidedKg:   0.15,
		},
		{
			ID:             "rv002",
			Name:           "Chips de légumes",
			Category:       "accompagnement",
			UsesWasteNames: []string{"epluchures_pdt", "epluchures_carottes"},
			Description:    "Oven-baked peelings served as a crunchy side.",
			MassAvoidedKg:  0.3,
			CO2AvoidedKg:   0.08,
		},
		{
			ID:             "rv003",
			Name:           "Pesto de fanes",
			Category:       "sauce",
			UsesWasteNames: []string{"fanes_carottes", "fanes_betteraves"},
			Description:    "Blend the tops with oil and garlic.",
			MassAvoidedKg:  0.2,
			CO2AvoidedKg:   0.05,
		},
		{
			ID:             "rv004",
			Name:           "Fond de volaille",
			Category:       "base",
			UsesWasteNames: []string{"os_poulet"},
			Description:    "Roast and simmer carcasses into a poultry stock.",
			MassAvoidedKg:  0.4,
			CO2AvoidedKg:   0.2,
		},
	}
}
