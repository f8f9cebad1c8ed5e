package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps weekly plans in a shared PostgreSQL database so that
// several API instances see the same weeks.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool. The schema is created by
// database.ConnectPostgres.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, plan WeeklyPlan) error {
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

	_, err = s.pool.Exec(ctx, `
		INSERT INTO weekly_plans (week_id, status, plan_data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (week_id) DO UPDATE SET
			status = EXCLUDED.status,
			plan_data = EXCLUDED.plan_data,
			updated_at = EXCLUDED.updated_at`,
		plan.WeekID, string(plan.Status), planData, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save plan for week %s: %w", plan.WeekID, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, weekID string) (*WeeklyPlan, error) {
	var (
		status    string
		data      []byte
		updatedAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT status, plan_data, updated_at FROM weekly_plans WHERE week_id = $1`, weekID,
	).Scan(&status, &data, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan for week %s: %w", weekID, err)
	}

	plan := NewWeeklyPlan(weekID)
	if err := json.Unmarshal(data, &plan.Days); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan JSON: %w", err)
	}
	for d := range plan.Days {
		if plan.Days[d] == nil {
			plan.Days[d] = DayPlan{}
		}
	}
	plan.Status = PlanStatus(status)
	plan.UpdatedAt = updatedAt.UTC()
	return &plan, nil
}

func (s *PostgresStore) Delete(ctx context.Context, weekID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM weekly_plans WHERE week_id = $1`, weekID); err != nil {
		return fmt.Errorf("failed to delete plan for week %s: %w", weekID, err)
	}
	return nil
}

func (s *PostgresStore) ListWeeks(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT week_id FROM weekly_plans ORDER BY week_id`)
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
	return weeks, rows.Err()
}
