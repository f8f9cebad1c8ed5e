package planner

import (
	"errors"
	"testing"
	"time"

	"cantine-planner/internal/recipe"
)

func TestWeekKey(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), "2026-W43"},
		{time.Date(2026, 10, 25, 23, 0, 0, 0, time.UTC), "2026-W43"},
		{time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC), "2026-W01"},
		{time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), "2026-W53"},
	}
	for _, tt := range tests {
		if got := WeekKey(tt.date); got != tt.want {
			t.Errorf("WeekKey(%s): expected %s, got %s", tt.date.Format(time.DateOnly), tt.want, got)
		}
	}
}

func TestParseWeek(t *testing.T) {
	monday, err := ParseWeek("2026-W43")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if want := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC); !monday.Equal(want) {
		t.Errorf("Expected %s, got %s", want, monday)
	}

	for _, bad := range []string{"", "garbage", "2026-W5", "2026-W00", "2025-W53", "2026-W54"} {
		t.Run(bad, func(t *testing.T) {
			if _, err := ParseWeek(bad); !errors.Is(err, ErrInvalidWeek) {
				t.Errorf("Expected ErrInvalidWeek, got %v", err)
			}
		})
	}
}

func TestWeekArithmetic(t *testing.T) {
	if got := GetNextMonday(time.Date(2026, 10, 21, 15, 0, 0, 0, time.UTC)); got.Format(time.DateOnly) != "2026-10-26" {
		t.Errorf("Expected next Monday 2026-10-26, got %s", got.Format(time.DateOnly))
	}
	if got := GetNextMonday(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)); got.Format(time.DateOnly) != "2026-10-26" {
		t.Errorf("Expected a Monday to map to the following Monday, got %s", got.Format(time.DateOnly))
	}

	next, err := ShiftWeek("2026-W53", 1)
	if err != nil || next != "2027-W01" {
		t.Errorf("Expected 2027-W01, got %s (%v)", next, err)
	}
	prev, err := ShiftWeek("2026-W01", -1)
	if err != nil || prev != "2025-W52" {
		t.Errorf("Expected 2025-W52, got %s (%v)", prev, err)
	}

	wed, err := DayDate("2026-W43", 2)
	if err != nil || wed.Format(time.DateOnly) != "2026-10-21" {
		t.Errorf("Expected Wednesday 2026-10-21, got %s (%v)", wed.Format(time.DateOnly), err)
	}
}

func TestWeeklyPlan(t *testing.T) {
	p := NewWeeklyPlan(testWeek)
	if !p.IsEmpty() || p.Status != StatusDraft {
		t.Fatalf("Expected empty draft, got %+v", p)
	}

	if err := p.Set(5, recipe.CourseMain, "m1"); err == nil {
		t.Error("Expected error for day 5")
	}
	if err := p.Set(-1, recipe.CourseMain, "m1"); err == nil {
		t.Error("Expected error for day -1")
	}

	_ = p.Set(1, recipe.CourseDessert, "d1")
	_ = p.Set(1, recipe.CourseStarter, "s1")
	_ = p.Set(0, recipe.CourseMain, "m1")

	slots := p.FilledSlots()
	want := []Slot{
		{Day: 0, Course: recipe.CourseMain, RecipeID: "m1"},
		{Day: 1, Course: recipe.CourseStarter, RecipeID: "s1"},
		{Day: 1, Course: recipe.CourseDessert, RecipeID: "d1"},
	}
	if len(slots) != len(want) {
		t.Fatalf("Expected %d slots, got %d", len(want), len(slots))
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Errorf("Slot %d: expected %+v, got %+v", i, want[i], slots[i])
		}
	}

	if !p.UsedInCourse(recipe.CourseMain, "m1") || p.UsedInCourse(recipe.CourseSide, "m1") {
		t.Error("UsedInCourse must be scoped to the course")
	}

	c := p.Clone()
	_ = c.Set(0, recipe.CourseMain, "m2")
	if id, _ := p.Get(0, recipe.CourseMain); id != "m1" {
		t.Errorf("Clone shares state with original: %s", id)
	}

	_ = p.ClearSlot(0, recipe.CourseMain)
	if _, ok := p.Get(0, recipe.CourseMain); ok {
		t.Error("Expected slot to be cleared")
	}
}
