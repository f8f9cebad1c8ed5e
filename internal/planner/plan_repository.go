package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// PlanRepository is a database-backed repository for weekly plans.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Save inserts or replaces the plan for its week.
func (r *PlanRepository) Save(ctx context.Context, plan WeeklyPlan) error {
	if plan.UpdatedAt.IsZero() {
		plan.UpdatedAt = time.Now().UTC()
	}
	if plan.Status == "" {
		plan.Status = StatusDraft
	}

	planData, err := json.Marshal(plan.Days)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO weekly_plans (week_id, status, plan_data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(week_id) DO UPDATE SET
			status = excluded.status,
			plan_data = excluded.plan_data,
			updated_at = excluded.updated_at`,
		plan.WeekID, string(plan.Status), string(planData), plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save plan for week %s: %w", plan.WeekID, err)
	}
	return nil
}

// Get retrieves the plan for a week.
func (r *PlanRepository) Get(ctx context.Context, weekID string) (*WeeklyPlan, error) {
	var (
		status, data string
		updatedAt    time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT status, plan_data, updated_at FROM weekly_plans WHERE week_id = ?`, weekID,
	).Scan(&status, &data, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Plan not found
		}
		return nil, fmt.Errorf("failed to get plan for week %s: %w", weekID, err)
	}

	plan := NewWeeklyPlan(weekID)
	if err := json.Unmarshal([]byte(data), &plan.Days); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan JSON: %w", err)
	}
	for d := range plan.Days {
		if plan.Days[d] == nil {
			plan.Days[d] = DayPlan{}
		}
	}
	plan.Status = PlanStatus(status)
	plan.UpdatedAt = updatedAt
	return &plan, nil
}

// Delete removes the plan for a week.
func (r *PlanRepository) Delete(ctx context.Context, weekID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM weekly_plans WHERE week_id = ?`, weekID); err != nil {
		return fmt.Errorf("failed to delete plan for week %s: %w", weekID, err)
	}
	return nil
}

// ListWeeks returns every stored week identifier in order.
func (r *PlanRepository) ListWeeks(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT week_id FROM weekly_plans ORDER BY week_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var weeks []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("failed to scan week row: %w", err)
		}
		weeks = append(weeks, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plans: %w", err)
	}
	return weeks, nil
}
