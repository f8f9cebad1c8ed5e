package planner

import (
	"sort"
	"time"

	"cantine-planner/internal/inventory"
	"cantine-planner/internal/recipe"
	"cantine-planner/internal/textnorm"
)

// DefaultVegetarianDay is Wednesday.
const DefaultVegetarianDay = 2

// Options are the calendar and rule inputs of one allocation run.
type Options struct {
	// Month (1-12) drives the seasonal filter. Zero means AsOf's month.
	Month int
	// AsOf is the date expiry distances are measured from.
	AsOf time.Time
	// VegetarianDays are day indexes whose main course must be vegetarian.
	// Nil means DefaultVegetarianDay; an empty slice disables the rule.
	VegetarianDays []int
	MatchMode      textnorm.MatchMode
}

// DefaultOptions returns the standard rules for a run on asOf.
func DefaultOptions(asOf time.Time) Options {
	return Options{
		Month:          int(asOf.Month()),
		AsOf:           asOf,
		VegetarianDays: []int{DefaultVegetarianDay},
		MatchMode:      textnorm.MatchSubstring,
	}
}

func (o Options) month() int {
	if o.Month >= 1 && o.Month <= 12 {
		return o.Month
	}
	return int(o.AsOf.Month())
}

func (o Options) isVegetarianDay(day int) bool {
	if o.VegetarianDays == nil {
		return day == DefaultVegetarianDay
	}
	for _, d := range o.VegetarianDays {
		if d == day {
			return true
		}
	}
	return false
}

// EmptyReason explains which filter left a slot without candidates.
type EmptyReason string

const (
	ReasonNoRecipes       EmptyReason = "no recipes for course"
	ReasonNoVegetarian    EmptyReason = "no vegetarian recipes"
	ReasonOutOfSeason     EmptyReason = "no recipes in season"
	ReasonAllUsedThisWeek EmptyReason = "every candidate already used this week"
)

// EmptySlot is a slot the allocator could not fill.
type EmptySlot struct {
	Day    int           `json:"day"`
	Course recipe.Course `json:"course"`
	Reason EmptyReason   `json:"reason"`
}

// Pick records why a recipe won its slot.
type Pick struct {
	Day        int           `json:"day"`
	Course     recipe.Course `json:"course"`
	RecipeID   string        `json:"recipe_id"`
	Affinity   Affinity      `json:"affinity"`
	Candidates int           `json:"candidates"`
}

// Report describes an allocation run.
type Report struct {
	Picks      []Pick      `json:"picks"`
	EmptySlots []EmptySlot `json:"empty_slots"`
}

// Allocate fills a fresh plan for weekID, visiting days 0 to 4 and, within
// a day, courses in menu order. Each slot takes the best ranked recipe that
// passes the course, vegetarian-day, season and no-repeat filters. Ranking is
// affinity, then local plus organic, then name, then id. A slot with no
// candidate stays empty and is listed in the report.
func Allocate(weekID string, cat *recipe.Catalogue, items []inventory.Item, opts Options) (WeeklyPlan, Report) {
	plan := NewWeeklyPlan(weekID)
	var report Report

	scorer := NewScorer(items, opts.AsOf, opts.MatchMode)
	affinities := make(map[string]Affinity, cat.Len())
	affinityOf := func(r recipe.Recipe) Affinity {
		a, ok := affinities[r.ID]
		if !ok {
			a = scorer.Score(r)
			affinities[r.ID] = a
		}
		return a
	}

	month := opts.month()
	byCourse := make(map[recipe.Course][]recipe.Recipe, len(recipe.Courses))
	for _, c := range recipe.Courses {
		byCourse[c] = cat.ByCourse(c)
	}

	for day := 0; day < DaysPerWeek; day++ {
		for _, course := range recipe.Courses {
			candidates, reason := filterCandidates(plan, byCourse[course], day, course, month, opts)
			if len(candidates) == 0 {
				report.EmptySlots = append(report.EmptySlots, EmptySlot{Day: day, Course: course, Reason: reason})
				continue
			}

			rank(candidates, affinityOf)
			best := candidates[0]
			plan.Days[day][course] = best.ID
			report.Picks = append(report.Picks, Pick{
				Day:        day,
				Course:     course,
				RecipeID:   best.ID,
				Affinity:   affinityOf(best),
				Candidates: len(candidates),
			})
		}
	}

	return plan, report
}

func filterCandidates(plan WeeklyPlan, pool []recipe.Recipe, day int, course recipe.Course, month int, opts Options) ([]recipe.Recipe, EmptyReason) {
	if len(pool) == 0 {
		return nil, ReasonNoRecipes
	}

	out := make([]recipe.Recipe, 0, len(pool))
	if course == recipe.CourseMain && opts.isVegetarianDay(day) {
		for _, r := range pool {
			if r.IsVegetarian {
				out = append(out, r)
			}
		}
		if len(out) == 0 {
			return nil, ReasonNoVegetarian
		}
		pool, out = out, make([]recipe.Recipe, 0, len(out))
	}

	for _, r := range pool {
		if r.InSeason(month) {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, ReasonOutOfSeason
	}
	pool, out = out, make([]recipe.Recipe, 0, len(out))

	for _, r := range pool {
		if !plan.UsedInCourse(course, r.ID) {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, ReasonAllUsedThisWeek
	}
	return out, ""
}

func rank(candidates []recipe.Recipe, affinityOf func(recipe.Recipe) Affinity) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if sa, sb := affinityOf(a).Score, affinityOf(b).Score; sa != sb {
			return sa > sb
		}
		if ta, tb := a.SourcingScore(), b.SourcingScore(); ta != tb {
			return ta > tb
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}
