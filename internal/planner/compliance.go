package planner

import (
	"cantine-planner/internal/recipe"
)

// MinVegetarianDays is the weekly vegetarian menu required of school canteens.
const MinVegetarianDays = 1

// Compliance summarizes a plan against the canteen's regulatory targets.
type Compliance struct {
	VegetarianDays      int     `json:"vegetarian_days"`
	VegetarianPct       float64 `json:"vegetarian_pct"`
	BioPct              float64 `json:"bio_pct"`
	LocalPct            float64 `json:"local_pct"`
	AvgCostPerDay       float64 `json:"avg_cost_per_day"`
	AvgCO2PerDay        float64 `json:"avg_co2_per_day"`
	FilledSlots         int     `json:"filled_slots"`
	TotalCost           float64 `json:"total_cost"`
	TotalCO2            float64 `json:"total_co2"`
	MeetsVegetarianRule bool    `json:"meets_vegetarian_rule"`
}

// ComputeMetrics derives compliance figures for a plan. Slots pointing at
// recipes missing from the catalogue are ignored. Percentages are taken over
// filled slots; averages are always spread over the five service days.
func ComputeMetrics(plan WeeklyPlan, cat *recipe.Catalogue) Compliance {
	var (
		m                   Compliance
		veg, organic, local int
	)

	for d := 0; d < DaysPerWeek; d++ {
		for _, course := range recipe.Courses {
			id, ok := plan.Get(d, course)
			if !ok {
				continue
			}
			r, ok := cat.Get(id)
			if !ok {
				continue
			}

			m.FilledSlots++
			m.TotalCost += r.CostPerPortion
			m.TotalCO2 += r.CO2PerPortionKg
			if r.IsVegetarian {
				veg++
			}
			if r.IsOrganic {
				organic++
			}
			if r.IsLocal {
				local++
			}
			if course == recipe.CourseMain && r.IsVegetarian {
				m.VegetarianDays++
			}
		}
	}

	if m.FilledSlots > 0 {
		m.VegetarianPct = percent(veg, m.FilledSlots)
		m.BioPct = percent(organic, m.FilledSlots)
		m.LocalPct = percent(local, m.FilledSlots)
	}
	m.AvgCostPerDay = m.TotalCost / DaysPerWeek
	m.AvgCO2PerDay = m.TotalCO2 / DaysPerWeek
	m.MeetsVegetarianRule = m.VegetarianDays >= MinVegetarianDays
	return m
}

func percent(n, total int) float64 {
	return float64(n) * 100 / float64(total)
}
