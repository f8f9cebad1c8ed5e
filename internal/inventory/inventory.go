// Package inventory models the perishable stock snapshot the planner reads.
package inventory

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used for expiry dates.
const DateLayout = "2006-01-02"

// Item is one stock record. ExpiryDate is nil for non-perishables.
type Item struct {
	ID          string     `json:"id"`
	ProductName string     `json:"product_name"`
	Category    string     `json:"category,omitempty"`
	Quantity    float64    `json:"quantity"`
	MinQuantity float64    `json:"min_quantity,omitempty"`
	Unit        string     `json:"unit"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
}

// DaysUntilExpiry returns the calendar-day distance from asOf to the expiry
// date, negative once expired. ok is false when the item does not expire.
func (i Item) DaysUntilExpiry(asOf time.Time) (days int, ok bool) {
	if i.ExpiryDate == nil {
		return 0, false
	}
	return DaysBetween(asOf, *i.ExpiryDate), true
}

// DaysBetween counts calendar days from a to b, ignoring time of day.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// ParseDate parses a YYYY-MM-DD expiry date. An empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry date %q: %w", s, err)
	}
	return &t, nil
}

// Validate rejects records with a missing name or negative stock.
func Validate(i Item) error {
	if i.ProductName == "" {
		return fmt.Errorf("inventory item %s has no product name", i.ID)
	}
	if i.Quantity < 0 || i.MinQuantity < 0 {
		return fmt.Errorf("inventory item %s (%s) has a negative quantity", i.ID, i.ProductName)
	}
	return nil
}
