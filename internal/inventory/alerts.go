package inventory

import (
	"sort"
	"time"
)

// Urgency ranks how soon an expiring item must be used.
type Urgency string

const (
	UrgencyLost     Urgency = "lost"     // already expired
	UrgencyCritical Urgency = "critical" // expires today
	UrgencyHigh     Urgency = "high"     // 1 or 2 days left
	UrgencyMedium   Urgency = "medium"
)

// DefaultExpiryWindow is how many days ahead expiry alerts look.
const DefaultExpiryWindow = 5

// ExpiryAlert flags an item whose expiry date falls within the window.
type ExpiryAlert struct {
	Item     Item    `json:"item"`
	DaysLeft int     `json:"days_left"`
	Urgency  Urgency `json:"urgency"`
}

// ExpiryAlerts lists items expiring within window days of asOf, expired
// items included, most urgent first.
func ExpiryAlerts(items []Item, asOf time.Time, window int) []ExpiryAlert {
	var alerts []ExpiryAlert
	for _, it := range items {
		days, ok := it.DaysUntilExpiry(asOf)
		if !ok || days > window {
			continue
		}
		alerts = append(alerts, ExpiryAlert{Item: it, DaysLeft: days, Urgency: urgencyFor(days)})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].DaysLeft < alerts[j].DaysLeft
	})
	return alerts
}

func urgencyFor(days int) Urgency {
	switch {
	case days < 0:
		return UrgencyLost
	case days == 0:
		return UrgencyCritical
	case days <= 2:
		return UrgencyHigh
	default:
		return UrgencyMedium
	}
}

// StockLevel describes a shortage.
type StockLevel string

const (
	LevelOut StockLevel = "out"
	LevelLow StockLevel = "low"
)

// StockAlert flags an item that is out of stock or below its minimum.
type StockAlert struct {
	Item  Item       `json:"item"`
	Level StockLevel `json:"level"`
}

// StockAlerts lists out-of-stock items first, then items below their minimum.
func StockAlerts(items []Item) []StockAlert {
	var alerts []StockAlert
	for _, it := range items {
		switch {
		case it.Quantity <= 0:
			alerts = append(alerts, StockAlert{Item: it, Level: LevelOut})
		case it.Quantity < it.MinQuantity:
			alerts = append(alerts, StockAlert{Item: it, Level: LevelLow})
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Level == LevelOut && alerts[j].Level != LevelOut
	})
	return alerts
}
