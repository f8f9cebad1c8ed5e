package shopping

import "time"

// Status tells whether stock covers an ingredient need.
type Status string

const (
	StatusOK    Status = "ok"
	StatusOrder Status = "order"
)

// Need is the weekly requirement for one ingredient.
type Need struct {
	Ingredient   string   `json:"ingredient"`
	RequiredKg   float64  `json:"required_kg"`
	StockKg      float64  `json:"stock_kg"`
	DifferenceKg float64  `json:"difference_kg"`
	Status       Status   `json:"status"`
	Recipes      []string `json:"recipes"`
}

// ShoppingList is the set of needs computed for a week.
type ShoppingList struct {
	WeekID    string    `json:"week_id"`
	Covers    int       `json:"covers"`
	Items     []Need    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

// ToOrder returns the needs not covered by stock.
func (l ShoppingList) ToOrder() []Need {
	var out []Need
	for _, n := range l.Items {
		if n.Status == StatusOrder {
			out = append(out, n)
		}
	}
	return out
}
