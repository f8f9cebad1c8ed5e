package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository handles persistence of shopping lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save stores the list for its week, replacing any previous one.
func (r *Repository) Save(ctx context.Context, list *ShoppingList) error {
	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal shopping list items: %w", err)
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO shopping_lists (week_id, covers, items, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(week_id) DO UPDATE SET
			covers = excluded.covers,
			items = excluded.items,
			created_at = excluded.created_at`,
		list.WeekID, list.Covers, string(itemsJSON), list.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save shopping list: %w", err)
	}
	return nil
}

// GetByWeek retrieves the shopping list of a week.
func (r *Repository) GetByWeek(ctx context.Context, weekID string) (*ShoppingList, error) {
	list := ShoppingList{WeekID: weekID}
	var items string
	err := r.db.QueryRowContext(ctx,
		`SELECT covers, items, created_at FROM shopping_lists WHERE week_id = ?`, weekID,
	).Scan(&list.Covers, &items, &list.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No shopping list found
		}
		return nil, fmt.Errorf("failed to get shopping list for week %s: %w", weekID, err)
	}

	if err := json.Unmarshal([]byte(items), &list.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}
	return &list, nil
}

// DeleteByWeek deletes the shopping list of a week.
func (r *Repository) DeleteByWeek(ctx context.Context, weekID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE week_id = ?`, weekID); err != nil {
		return fmt.Errorf("failed to delete shopping list for week %s: %w", weekID, err)
	}
	return nil
}
