package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository persists stock records in SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new inventory repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save inserts or updates an item, assigning an ID when it has none.
func (r *Repository) Save(ctx context.Context, it *Item) error {
	if err := Validate(*it); err != nil {
		return err
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.Unit == "" {
		it.Unit = "kg"
	}

	var expiry sql.NullString
	if it.ExpiryDate != nil {
		expiry = sql.NullString{String: it.ExpiryDate.Format(DateLayout), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory_items (id, product_name, category, quantity, min_quantity, unit, expiry_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			product_name = excluded.product_name,
			category = excluded.category,
			quantity = excluded.quantity,
			min_quantity = excluded.min_quantity,
			unit = excluded.unit,
			expiry_date = excluded.expiry_date,
			updated_at = excluded.updated_at`,
		it.ID, it.ProductName, it.Category, it.Quantity, it.MinQuantity, it.Unit, expiry, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save inventory item %s: %w", it.ProductName, err)
	}
	return nil
}

// List returns the current snapshot ordered by product name.
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_name, category, quantity, min_quantity, unit, expiry_date
		FROM inventory_items
		ORDER BY product_name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var expiry sql.NullString
		if err := rows.Scan(&it.ID, &it.ProductName, &it.Category, &it.Quantity, &it.MinQuantity, &it.Unit, &expiry); err != nil {
			return nil, fmt.Errorf("failed to scan inventory row: %w", err)
		}
		if expiry.Valid {
			if it.ExpiryDate, err = ParseDate(expiry.String); err != nil {
				return nil, err
			}
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inventory: %w", err)
	}
	return items, nil
}

// Delete removes an item by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete inventory item %s: %w", id, err)
	}
	return nil
}

// ReplaceAll swaps the whole snapshot in one transaction.
func (r *Repository) ReplaceAll(ctx context.Context, items []Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_items`); err != nil {
		return fmt.Errorf("failed to clear inventory: %w", err)
	}

	now := time.Now().UTC()
	for i := range items {
		it := &items[i]
		if err := Validate(*it); err != nil {
			return err
		}
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		if it.Unit == "" {
			it.Unit = "kg"
		}
		var expiry sql.NullString
		if it.ExpiryDate != nil {
			expiry = sql.NullString{String: it.ExpiryDate.Format(DateLayout), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO inventory_items (id, product_name, category, quantity, min_quantity, unit, expiry_date, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, it.ProductName, it.Category, it.Quantity, it.MinQuantity, it.Unit, expiry, now,
		); err != nil {
			return fmt.Errorf("failed to insert inventory item %s: %w", it.ProductName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit inventory: %w", err)
	}
	return nil
}
