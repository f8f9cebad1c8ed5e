package recipe

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRecipe is returned when a catalogue record fails validation.
var ErrInvalidRecipe = errors.New("invalid recipe")

// Course identifies which slot of a day's menu a recipe fills.
type Course string

const (
	CourseStarter Course = "starter"
	CourseMain    Course = "main"
	CourseSide    Course = "side"
	CourseDessert Course = "dessert"
	CourseDairy   Course = "dairy"
)

// Courses lists every course in menu order. Planning visits slots in this order.
var Courses = []Course{CourseStarter, CourseMain, CourseSide, CourseDessert, CourseDairy}

// courseAliases accepts the French tags used by canteen catalogue exports.
var courseAliases = map[string]Course{
	"entree":          CourseStarter,
	"plat_principal":  CourseMain,
	"plat":            CourseMain,
	"garniture":       CourseSide,
	"accompagnement":  CourseSide,
	"produit_laitier": CourseDairy,
	"laitage":         CourseDairy,
}

// ParseCourse converts a course tag into a Course.
func ParseCourse(s string) (Course, error) {
	tag := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Courses {
		if string(c) == tag {
			return c, nil
		}
	}
	if c, ok := courseAliases[tag]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown course %q", ErrInvalidRecipe, s)
}

// Label returns a human readable course name.
func (c Course) Label() string {
	switch c {
	case CourseStarter:
		return "Starter"
	case CourseMain:
		return "Main"
	case CourseSide:
		return "Side"
	case CourseDessert:
		return "Dessert"
	case CourseDairy:
		return "Dairy"
	}
	return string(c)
}

// Ingredient is one line of a recipe, quantity per portion.
type Ingredient struct {
	Name       string  `json:"name" yaml:"name"`
	QuantityKg float64 `json:"quantity_kg" yaml:"quantity_kg"`
}

// Byproduct is food waste a recipe is expected to leave behind, per portion.
type Byproduct struct {
	WasteName  string  `json:"waste_name" yaml:"waste_name"`
	Label      string  `json:"label,omitempty" yaml:"label,omitempty"`
	Category   string  `json:"category" yaml:"category"`
	QuantityKg float64 `json:"quantity_kg" yaml:"quantity_kg"`
}

// DisplayLabel falls back to the waste name when no label was given.
func (b Byproduct) DisplayLabel() string {
	if b.Label != "" {
		return b.Label
	}
	return strings.ReplaceAll(b.WasteName, "_", " ")
}

// Recipe is an immutable catalogue entry.
type Recipe struct {
	ID              string       `json:"id" yaml:"id"`
	Name            string       `json:"name" yaml:"name"`
	Course          Course       `json:"course" yaml:"course"`
	IsVegetarian    bool         `json:"is_vegetarian" yaml:"is_vegetarian"`
	IsOrganic       bool         `json:"is_organic" yaml:"is_organic"`
	IsLocal         bool         `json:"is_local" yaml:"is_local"`
	Ingredients     []Ingredient `json:"ingredients" yaml:"ingredients"`
	Byproducts      []Byproduct  `json:"byproducts,omitempty" yaml:"byproducts,omitempty"`
	SeasonMonths    []int        `json:"season_months,omitempty" yaml:"season_months,omitempty"`
	CostPerPortion  float64      `json:"cost_per_portion" yaml:"cost_per_portion"`
	CO2PerPortionKg float64      `json:"co2_per_portion_kg" yaml:"co2_per_portion_kg"`
	Tags            []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
	SourceURL       string       `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	UpdatedAt       time.Time    `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// InSeason reports whether the recipe can be served in the given month.
// An empty season list means all year.
func (r Recipe) InSeason(month int) bool {
	if len(r.SeasonMonths) == 0 {
		return true
	}
	for _, m := range r.SeasonMonths {
		if m == month {
			return true
		}
	}
	return false
}

// SourcingScore is the local plus organic tie-break used when ranking.
func (r Recipe) SourcingScore() int {
	score := 0
	if r.IsLocal {
		score++
	}
	if r.IsOrganic {
		score++
	}
	return score
}

// Validate rejects records the planner must never see.
func Validate(r Recipe) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRecipe)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: recipe %s has no name", ErrInvalidRecipe, r.ID)
	}
	if _, err := ParseCourse(string(r.Course)); err != nil {
		return fmt.Errorf("recipe %s: %w", r.ID, err)
	}
	for _, ing := range r.Ingredients {
		if ing.QuantityKg < 0 {
			return fmt.Errorf("%w: recipe %s has negative quantity for %s", ErrInvalidRecipe, r.ID, ing.Name)
		}
	}
	for _, b := range r.Byproducts {
		if b.WasteName == "" {
			return fmt.Errorf("%w: recipe %s has a byproduct without a name", ErrInvalidRecipe, r.ID)
		}
		if b.QuantityKg < 0 {
			return fmt.Errorf("%w: recipe %s has negative byproduct quantity for %s", ErrInvalidRecipe, r.ID, b.WasteName)
		}
	}
	for _, m := range r.SeasonMonths {
		if m < 1 || m > 12 {
			return fmt.Errorf("%w: recipe %s has season month %d", ErrInvalidRecipe, r.ID, m)
		}
	}
	if r.CostPerPortion < 0 || r.CO2PerPortionKg < 0 {
		return fmt.Errorf("%w: recipe %s has negative cost or CO2", ErrInvalidRecipe, r.ID)
	}
	return nil
}

// Canonical returns a copy with the course tag rewritten to its canonical form.
func Canonical(r Recipe) (Recipe, error) {
	c, err := ParseCourse(string(r.Course))
	if err != nil {
		return r, fmt.Errorf("recipe %s: %w", r.ID, err)
	}
	r.Course = c
	return r, nil
}
