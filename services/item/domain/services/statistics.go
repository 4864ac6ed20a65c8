package services

import (
	"time"

	"github.com/ghuser/itemtree/services/item/domain/models"
)

// ComputeStatistics aggregates items in memory. Warranty expiries in
// [now, now+lookahead] count as expiring soon.
func ComputeStatistics(items []*models.Item, now time.Time, lookahead time.Duration) *models.Statistics {
	cutoff := now.Add(lookahead)
	stats := models.NewStatistics(cutoff)

	for _, it := range items {
		stats.TotalItems++
		stats.ByCategory[it.Category]++
		stats.ByStatus[it.Status]++

		loc := models.UnassignedLocation
		if it.LocationID != nil {
			loc = it.LocationID.String()
		}
		stats.ByLocation[loc]++

		if it.PurchasePrice.Valid {
			stats.TotalValue = stats.TotalValue.Add(it.PurchasePrice.Decimal)
		}
		if w := it.WarrantyExpiresAt; w != nil && !w.Before(now) && !w.After(cutoff) {
			stats.WarrantyExpiringSoon++
		}
	}
	return stats
}
