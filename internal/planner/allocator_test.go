package planner

import (
	"encoding/json"
	"fmt"
	"testing"

	"cantine-planner/internal/inventory"
	"cantine-planner/internal/recipe"
	"cantine-planner/internal/textnorm"
)

const testWeek = "2026-W43"

func TestAllocatePrefersExpiringStock(t *testing.T) {
	cat := mustCatalogue(t,
		rec("m1", "Boeuf bourguignon", recipe.CourseMain, "boeuf"),
		rec("m2", "Ragoût de carottes", recipe.CourseMain, "carottes", "oignons"),
	)
	items := []inventory.Item{item("carottes", 2, inDays(3))}

	opts := DefaultOptions(testAsOf)
	opts.VegetarianDays = []int{}
	plan, report := Allocate(testWeek, cat, items, opts)

	id, ok := plan.Get(0, recipe.CourseMain)
	if !ok || id != "m2" {
		t.Fatalf("Expected Monday main m2, got %q", id)
	}
	if report.Picks[0].Affinity.Score != ExpiringBonus {
		t.Errorf("Expected affinity %d, got %d", ExpiringBonus, report.Picks[0].Affinity.Score)
	}
	if id, _ := plan.Get(1, recipe.CourseMain); id != "m1" {
		t.Errorf("Expected Tuesday main m1 once m2 is used, got %q", id)
	}
	for d := 2; d < DaysPerWeek; d++ {
		if id, ok := plan.Get(d, recipe.CourseMain); ok {
			t.Errorf("Expected day %d main to stay empty, got %q", d, id)
		}
	}
}

func TestAllocateVegetarianDayOverridesAffinity(t *testing.T) {
	cat := mustCatalogue(t,
		rec("m1", "Poulet aux carottes", recipe.CourseMain, "poulet", "carottes"),
		rec("m2", "Hachis parmentier", recipe.CourseMain, "boeuf", "carottes"),
		rec("m3", "Saumon", recipe.CourseMain, "saumon", "carottes"),
		rec("m4", "Porc", recipe.CourseMain, "porc", "carottes"),
		veg(rec("v1", "Dahl de lentilles", recipe.CourseMain, "lentilles")),
	)
	items := []inventory.Item{item("carottes", 5, inDays(2))}

	plan, _ := Allocate(testWeek, cat, items, DefaultOptions(testAsOf))

	id, ok := plan.Get(DefaultVegetarianDay, recipe.CourseMain)
	if !ok || id != "v1" {
		t.Fatalf("Expected Wednesday main v1, got %q", id)
	}
	for _, d := range []int{0, 1, 3, 4} {
		if id, _ := plan.Get(d, recipe.CourseMain); id == "v1" {
			t.Errorf("Expected v1 only on Wednesday, found on day %d", d)
		}
	}
}

func TestAllocateVegetarianDaysOption(t *testing.T) {
	cat := mustCatalogue(t,
		rec("m1", "Poulet", recipe.CourseMain, "poulet"),
		rec("m2", "Boeuf", recipe.CourseMain, "boeuf"),
	)

	t.Run("NilMeansWednesday", func(t *testing.T) {
		opts := DefaultOptions(testAsOf)
		opts.VegetarianDays = nil
		_, report := Allocate(testWeek, cat, nil, opts)
		if !hasEmpty(report, DefaultVegetarianDay, recipe.CourseMain, ReasonNoVegetarian) {
			t.Errorf("Expected Wednesday main to be empty for lack of vegetarian recipes: %+v", report.EmptySlots)
		}
	})

	t.Run("EmptyDisablesRule", func(t *testing.T) {
		opts := DefaultOptions(testAsOf)
		opts.VegetarianDays = []int{}
		plan, _ := Allocate(testWeek, cat, nil, opts)
		if _, ok := plan.Get(0, recipe.CourseMain); !ok {
			t.Error("Expected Monday main to be filled")
		}
		if _, ok := plan.Get(1, recipe.CourseMain); !ok {
			t.Error("Expected Tuesday main to be filled")
		}
	})

	t.Run("RuleOnlyAppliesToMain", func(t *testing.T) {
		cat := mustCatalogue(t, rec("s1", "Pâté", recipe.CourseStarter, "porc"))
		plan, _ := Allocate(testWeek, cat, nil, DefaultOptions(testAsOf))
		if id, _ := plan.Get(0, recipe.CourseStarter); id != "s1" {
			t.Errorf("Expected non vegetarian starter on Monday, got %q", id)
		}
	})
}

func TestAllocateSeasonality(t *testing.T) {
	summer := rec("d1", "Salade de fraises", recipe.CourseDessert, "fraises")
	summer.SeasonMonths = []int{5, 6, 7}
	allYear := rec("d2", "Compote", recipe.CourseDessert, "pommes")

	cat := mustCatalogue(t, summer, allYear)
	items := []inventory.Item{item("fraises", 3, inDays(1))}

	plan, report := Allocate(testWeek, cat, items, DefaultOptions(testAsOf))
	if id, _ := plan.Get(0, recipe.CourseDessert); id != "d2" {
		t.Errorf("Expected out of season d1 to be skipped in October, got %q", id)
	}
	for _, p := range report.Picks {
		if p.RecipeID == "d1" {
			t.Errorf("Out of season recipe picked on day %d", p.Day)
		}
	}

	opts := DefaultOptions(testAsOf)
	opts.Month = 6
	plan, _ = Allocate(testWeek, cat, items, opts)
	if id, _ := plan.Get(0, recipe.CourseDessert); id != "d1" {
		t.Errorf("Expected d1 in June, got %q", id)
	}

	opts.Month = 0
	plan, _ = Allocate(testWeek, mustCatalogue(t, summer), items, opts)
	if !plan.IsEmpty() {
		t.Error("Expected month 0 to fall back to AsOf month and reject d1")
	}
}

func TestAllocateEmptySlotReasons(t *testing.T) {
	summer := rec("d1", "Melon", recipe.CourseDessert, "melon")
	summer.SeasonMonths = []int{7}
	cat := mustCatalogue(t,
		rec("s1", "Carottes râpées", recipe.CourseStarter, "carottes"),
		rec("m1", "Poulet", recipe.CourseMain, "poulet"),
		summer,
	)

	_, report := Allocate(testWeek, cat, nil, DefaultOptions(testAsOf))

	tests := []struct {
		day    int
		course recipe.Course
		reason EmptyReason
	}{
		{1, recipe.CourseStarter, ReasonAllUsedThisWeek},
		{2, recipe.CourseMain, ReasonNoVegetarian},
		{0, recipe.CourseSide, ReasonNoRecipes},
		{0, recipe.CourseDessert, ReasonOutOfSeason},
		{4, recipe.CourseDairy, ReasonNoRecipes},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d-%s", tt.day, tt.course), func(t *testing.T) {
			if !hasEmpty(report, tt.day, tt.course, tt.reason) {
				t.Errorf("Expected empty slot with reason %q", tt.reason)
			}
		})
	}

	if len(report.Picks)+len(report.EmptySlots) != DaysPerWeek*len(recipe.Courses) {
		t.Errorf("Expected every slot to be reported, got %d picks and %d empty", len(report.Picks), len(report.EmptySlots))
	}
}

func TestAllocateTieBreaks(t *testing.T) {
	plain := rec("a", "Aubergines", recipe.CourseSide, "aubergines")
	local := rec("b", "Brocolis", recipe.CourseSide, "brocolis")
	local.IsLocal = true
	localOrganic := rec("c", "Céleri", recipe.CourseSide, "celeri")
	localOrganic.IsLocal, localOrganic.IsOrganic = true, true
	sameName := rec("a0", "Aubergines", recipe.CourseSide, "aubergines")

	cat := mustCatalogue(t, plain, local, localOrganic, sameName)
	plan, _ := Allocate(testWeek, cat, nil, DefaultOptions(testAsOf))

	want := []string{"c", "b", "a", "a0"}
	for d, id := range want {
		if got, _ := plan.Get(d, recipe.CourseSide); got != id {
			t.Errorf("Day %d: expected %s, got %s", d, id, got)
		}
	}
}

func TestAllocateIsDeterministic(t *testing.T) {
	cat, items := largeFixture(t)
	opts := DefaultOptions(testAsOf)

	first, _ := Allocate(testWeek, cat, items, opts)
	second, _ := Allocate(testWeek, cat, items, opts)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("Expected identical plans:\n%s\n%s", a, b)
	}
}

func TestAllocateInvariants(t *testing.T) {
	cat, items := largeFixture(t)

	for month := 1; month <= 12; month++ {
		t.Run(fmt.Sprintf("month%02d", month), func(t *testing.T) {
			opts := DefaultOptions(testAsOf)
			opts.Month = month
			opts.VegetarianDays = []int{0, 2}
			plan, _ := Allocate(testWeek, cat, items, opts)

			for _, course := range recipe.Courses {
				seen := map[string]bool{}
				for d := 0; d < DaysPerWeek; d++ {
					id, ok := plan.Get(d, course)
					if !ok {
						continue
					}
					if seen[id] {
						t.Errorf("Recipe %s repeated for %s", id, course)
					}
					seen[id] = true

					r, _ := cat.Get(id)
					if r.Course != course {
						t.Errorf("Recipe %s of course %s placed in %s", id, r.Course, course)
					}
					if !r.InSeason(month) {
						t.Errorf("Recipe %s out of season in month %d", id, month)
					}
				}
			}

			for _, d := range opts.VegetarianDays {
				if id, ok := plan.Get(d, recipe.CourseMain); ok {
					if r, _ := cat.Get(id); !r.IsVegetarian {
						t.Errorf("Day %d main %s is not vegetarian", d, id)
					}
				}
			}
		})
	}
}

func largeFixture(t *testing.T) (*recipe.Catalogue, []inventory.Item) {
	t.Helper()
	products := []string{"carottes", "poireaux", "pommes de terre", "courgettes", "lait", "oeufs", "riz", "lentilles", "poulet", "pommes"}

	var recipes []recipe.Recipe
	for ci, course := range recipe.Courses {
		for i := 0; i < 7; i++ {
			r := rec(fmt.Sprintf("%s-%02d", course, i), fmt.Sprintf("%s %d", course.Label(), i), course,
				products[(ci+i)%len(products)], products[(ci*3+i*2)%len(products)])
			r.IsVegetarian = i%3 == 0
			r.IsLocal = i%2 == 0
			r.IsOrganic = i%4 == 1
			if i%3 == 1 {
				r.SeasonMonths = []int{(i+ci)%12 + 1, (i+ci+4)%12 + 1}
			}
			recipes = append(recipes, r)
		}
	}

	items := []inventory.Item{
		item("carottes", 3, inDays(2)),
		item("Lait", 10, inDays(5)),
		item("riz", 20, nil),
		item("poulet", 0, inDays(1)),
		item("pommes", 4, inDays(12)),
	}
	return mustCatalogue(t, recipes...), items
}

func hasEmpty(r Report, day int, course recipe.Course, reason EmptyReason) bool {
	for _, e := range r.EmptySlots {
		if e.Day == day && e.Course == course && e.Reason == reason {
			return true
		}
	}
	return false
}

func TestAllocateTokenMode(t *testing.T) {
	cat := mustCatalogue(t,
		rec("s1", "Salade de pommes de terre", recipe.CourseStarter, "pommes de terre"),
		rec("s2", "Salade de pommes", recipe.CourseStarter, "pommes"),
	)
	items := []inventory.Item{item("pommes", 2, inDays(1))}

	opts := DefaultOptions(testAsOf)
	opts.MatchMode = textnorm.MatchSubstring
	plan, _ := Allocate(testWeek, cat, items, opts)
	if id, _ := plan.Get(0, recipe.CourseStarter); id != "s2" {
		t.Errorf("Substring: expected name tie-break to pick s2, got %s", id)
	}

	opts.MatchMode = textnorm.MatchTokens
	plan, report := Allocate(testWeek, cat, items, opts)
	if id, _ := plan.Get(0, recipe.CourseStarter); id != "s2" {
		t.Errorf("Tokens: expected s2, got %s", id)
	}
	if report.Picks[1].Affinity.Score != 0 {
		t.Errorf("Tokens: expected s1 to score 0 on Tuesday, got %d", report.Picks[1].Affinity.Score)
	}
}
