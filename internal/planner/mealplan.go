package planner

import (
	"fmt"
	"time"

	"cantine-planner/internal/recipe"
)

// PlanStatus represents the lifecycle state of a weekly plan.
type PlanStatus string

const (
	StatusDraft PlanStatus = "DRAFT"
	StatusFinal PlanStatus = "FINAL"
)

// DaysPerWeek is the number of service days, Monday to Friday.
const DaysPerWeek = 5

// DayNames labels day indexes 0 to 4.
var DayNames = [DaysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// DayPlan maps each course to the recipe served that day.
type DayPlan map[recipe.Course]string

// WeeklyPlan is the menu grid for one week.
type WeeklyPlan struct {
	WeekID    string               `json:"week_id"`
	Status    PlanStatus           `json:"status"`
	Days      [DaysPerWeek]DayPlan `json:"days"`
	UpdatedAt time.Time            `json:"updated_at,omitempty"`
}

// Slot is one filled (day, course) cell.
type Slot struct {
	Day      int           `json:"day"`
	Course   recipe.Course `json:"course"`
	RecipeID string        `json:"recipe_id,omitempty"`
}

// NewWeeklyPlan returns an empty draft plan.
func NewWeeklyPlan(weekID string) WeeklyPlan {
	p := WeeklyPlan{WeekID: weekID, Status: StatusDraft}
	for d := range p.Days {
		p.Days[d] = DayPlan{}
	}
	return p
}

// Get returns the recipe assigned to a slot.
func (p WeeklyPlan) Get(day int, course recipe.Course) (string, bool) {
	if day < 0 || day >= DaysPerWeek {
		return "", false
	}
	id, ok := p.Days[day][course]
	return id, ok && id != ""
}

// Set assigns a recipe to a slot, replacing any previous assignment.
func (p *WeeklyPlan) Set(day int, course recipe.Course, recipeID string) error {
	if day < 0 || day >= DaysPerWeek {
		return fmt.Errorf("day %d out of range", day)
	}
	if p.Days[day] == nil {
		p.Days[day] = DayPlan{}
	}
	if recipeID == "" {
		delete(p.Days[day], course)
		return nil
	}
	p.Days[day][course] = recipeID
	return nil
}

// ClearSlot empties a slot.
func (p *WeeklyPlan) ClearSlot(day int, course recipe.Course) error {
	return p.Set(day, course, "")
}

// Clone returns a deep copy.
func (p WeeklyPlan) Clone() WeeklyPlan {
	out := p
	for d, day := range p.Days {
		out.Days[d] = make(DayPlan, len(day))
		for c, id := range day {
			out.Days[d][c] = id
		}
	}
	return out
}

// FilledSlots lists assigned slots day by day in course order.
func (p WeeklyPlan) FilledSlots() []Slot {
	var slots []Slot
	for d := 0; d < DaysPerWeek; d++ {
		for _, c := range recipe.Courses {
			if id, ok := p.Get(d, c); ok {
				slots = append(slots, Slot{Day: d, Course: c, RecipeID: id})
			}
		}
	}
	return slots
}

// IsEmpty reports whether no slot is filled.
func (p WeeklyPlan) IsEmpty() bool {
	return len(p.FilledSlots()) == 0
}

// UsedInCourse reports whether a recipe is already served for a course on
// any day of the week.
func (p WeeklyPlan) UsedInCourse(course recipe.Course, recipeID string) bool {
	for d := 0; d < DaysPerWeek; d++ {
		if id, ok := p.Get(d, course); ok && id == recipeID {
			return true
		}
	}
	return false
}
