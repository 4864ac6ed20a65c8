package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnassignedLocation is the ByLocation key for items without a location.
const UnassignedLocation = "unassigned"

// Statistics is a read-only aggregate over one tenant's items.
type Statistics struct {
	TotalItems           int
	ByCategory           map[string]int
	ByStatus             map[Status]int
	ByLocation           map[string]int
	TotalValue           decimal.Decimal
	WarrantyExpiringSoon int
	WarrantyWindowEnd    time.Time
}

// NewStatistics returns an empty aggregate with initialized maps.
func NewStatistics(windowEnd time.Time) *Statistics {
	return &Statistics{
		ByCategory:        map[string]int{},
		ByStatus:          map[Status]int{},
		ByLocation:        map[string]int{},
		TotalValue:        decimal.Zero,
		WarrantyWindowEnd: windowEnd,
	}
}
