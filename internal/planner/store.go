package planner

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	// ErrPlanNotFound is returned when an operation needs a stored plan.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrCourseMismatch is returned when a recipe is put in another course's slot.
	ErrCourseMismatch = errors.New("recipe course does not match slot")
	// ErrUnknownRecipe is returned when a slot names a recipe missing from the catalogue.
	ErrUnknownRecipe = errors.New("unknown recipe")
	// ErrSameWeek is returned when a plan is duplicated onto its own week.
	ErrSameWeek = errors.New("source and target week are the same")
)

// Store persists weekly plans keyed by week identifier.
// Get returns nil, nil when the week has no plan.
type Store interface {
	Get(ctx context.Context, weekID string) (*WeeklyPlan, error)
	Save(ctx context.Context, plan WeeklyPlan) error
	Delete(ctx context.Context, weekID string) error
	ListWeeks(ctx context.Context) ([]string, error)
}

// MemoryStore keeps plans in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[string]WeeklyPlan
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[string]WeeklyPlan)}
}

func (s *MemoryStore) Get(_ context.Context, weekID string) (*WeeklyPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[weekID]
	if !ok {
		return nil, nil
	}
	c := p.Clone()
	return &c, nil
}

func (s *MemoryStore) Save(_ context.Context, plan WeeklyPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans[plan.WeekID] = plan.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, weekID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.plans, weekID)
	return nil
}

func (s *MemoryStore) ListWeeks(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	weeks := make([]string, 0, len(s.plans))
	for w := range s.plans {
		weeks = append(weeks, w)
	}
	sort.Strings(weeks)
	return weeks, nil
}
