package planner

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"cantine-planner/internal/inventory"
	"cantine-planner/internal/recipe"
)

// Observer is notified after every allocation run.
type Observer interface {
	ObserveAllocation(weekID string, report Report, elapsed time.Duration)
}

// Service owns the plan store and serializes changes to any single week.
// Different weeks are planned concurrently.
type Service struct {
	store    Store
	observer Observer
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithObserver reports allocation runs to o.
func WithObserver(o Observer) ServiceOption {
	return func(s *Service) { s.observer = o }
}

// WithClock replaces the wall clock used for UpdatedAt stamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service over store.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) lockWeek(weekID string) func() {
	s.mu.Lock()
	l, ok := s.locks[weekID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[weekID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// AutoFill replaces the week's plan with a freshly allocated one.
func (s *Service) AutoFill(ctx context.Context, weekID string, cat *recipe.Catalogue, items []inventory.Item, opts Options) (WeeklyPlan, Report, error) {
	if _, err := ParseWeek(weekID); err != nil {
		return WeeklyPlan{}, Report{}, err
	}
	unlock := s.lockWeek(weekID)
	defer unlock()

	start := time.Now()
	plan, report := Allocate(weekID, cat, items, opts)
	elapsed := time.Since(start)
	plan.UpdatedAt = s.now().UTC()

	if err := s.store.Save(ctx, plan); err != nil {
		return WeeklyPlan{}, Report{}, fmt.Errorf("failed to store plan: %w", err)
	}

	if s.observer != nil {
		s.observer.ObserveAllocation(weekID, report, elapsed)
	}
	log.Printf("Auto-filled week %s: %d slots filled, %d empty", weekID, len(report.Picks), len(report.EmptySlots))
	for _, e := range report.EmptySlots {
		log.Printf("  %s %s left empty: %s", DayNames[e.Day], e.Course, e.Reason)
	}
	return plan, report, nil
}

// Get returns the stored plan for a week or ErrPlanNotFound.
func (s *Service) Get(ctx context.Context, weekID string) (WeeklyPlan, error) {
	p, err := s.store.Get(ctx, weekID)
	if err != nil {
		return WeeklyPlan{}, fmt.Errorf("failed to load plan: %w", err)
	}
	if p == nil {
		return WeeklyPlan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, weekID)
	}
	return *p, nil
}

// ListWeeks returns the weeks that have a stored plan.
func (s *Service) ListWeeks(ctx context.Context) ([]string, error) {
	return s.store.ListWeeks(ctx)
}

// SetSlot assigns a recipe to one slot, creating the week's plan if needed.
// The recipe must exist and belong to the slot's course.
func (s *Service) SetSlot(ctx context.Context, weekID string, day int, course recipe.Course, recipeID string, cat *recipe.Catalogue) (WeeklyPlan, error) {
	r, ok := cat.Get(recipeID)
	if !ok {
		return WeeklyPlan{}, fmt.Errorf("%w: %s", ErrUnknownRecipe, recipeID)
	}
	if r.Course != course {
		return WeeklyPlan{}, fmt.Errorf("%w: %s is a %s, not a %s", ErrCourseMismatch, recipeID, r.Course, course)
	}
	return s.update(ctx, weekID, true, func(p *WeeklyPlan) error {
		return p.Set(day, course, recipeID)
	})
}

// ClearSlot empties one slot of an existing plan.
func (s *Service) ClearSlot(ctx context.Context, weekID string, day int, course recipe.Course) (WeeklyPlan, error) {
	return s.update(ctx, weekID, false, func(p *WeeklyPlan) error {
		return p.ClearSlot(day, course)
	})
}

// Finalize marks a plan as confirmed by the kitchen.
func (s *Service) Finalize(ctx context.Context, weekID string) (WeeklyPlan, error) {
	return s.update(ctx, weekID, false, func(p *WeeklyPlan) error {
		p.Status = StatusFinal
		return nil
	})
}

// Clear deletes the week's plan.
func (s *Service) Clear(ctx context.Context, weekID string) error {
	unlock := s.lockWeek(weekID)
	defer unlock()

	if err := s.store.Delete(ctx, weekID); err != nil {
		return fmt.Errorf("failed to clear plan: %w", err)
	}
	return nil
}

// Duplicate copies the plan of one week into another as a draft,
// replacing whatever the target week held.
func (s *Service) Duplicate(ctx context.Context, fromWeek, toWeek string) (WeeklyPlan, error) {
	if fromWeek == toWeek {
		return WeeklyPlan{}, ErrSameWeek
	}
	if _, err := ParseWeek(toWeek); err != nil {
		return WeeklyPlan{}, err
	}

	first, second := fromWeek, toWeek
	if second < first {
		first, second = second, first
	}
	unlockFirst := s.lockWeek(first)
	defer unlockFirst()
	unlockSecond := s.lockWeek(second)
	defer unlockSecond()

	src, err := s.store.Get(ctx, fromWeek)
	if err != nil {
		return WeeklyPlan{}, fmt.Errorf("failed to load plan: %w", err)
	}
	if src == nil {
		return WeeklyPlan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, fromWeek)
	}

	dst := src.Clone()
	dst.WeekID = toWeek
	dst.Status = StatusDraft
	dst.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, dst); err != nil {
		return WeeklyPlan{}, fmt.Errorf("failed to store plan: %w", err)
	}
	return dst, nil
}

func (s *Service) update(ctx context.Context, weekID string, create bool, fn func(*WeeklyPlan) error) (WeeklyPlan, error) {
	if _, err := ParseWeek(weekID); err != nil {
		return WeeklyPlan{}, err
	}
	unlock := s.lockWeek(weekID)
	defer unlock()

	p, err := s.store.Get(ctx, weekID)
	if err != nil {
		return WeeklyPlan{}, fmt.Errorf("failed to load plan: %w", err)
	}
	if p == nil {
		if !create {
			return WeeklyPlan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, weekID)
		}
		fresh := NewWeeklyPlan(weekID)
		p = &fresh
	}

	if err := fn(p); err != nil {
		return WeeklyPlan{}, err
	}
	p.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, *p); err != nil {
		return WeeklyPlan{}, fmt.Errorf("failed to store plan: %w", err)
	}
	return *p, nil
}
