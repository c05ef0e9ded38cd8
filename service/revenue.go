package service

import (
	"math"
	"time"

	"marketplace.app/models"
)

// revenueBucketCount is the number of trailing periods in the chart views
const revenueBucketCount = 6

// bucketWidth is the width of one period. Buckets are rolling 30-day windows
// ending at now, NOT calendar months; chart consumers were built against six
// equal-width buckets, so this rule must not be replaced with calendar
// alignment.
const bucketWidth = 30 * 24 * time.Hour

// RevenueBuckets distributes a seller's orders into six trailing 30-day
// buckets relative to now, oldest first. Orders older than six elapsed
// periods are excluded.
func RevenueBuckets(orders []models.Order, now time.Time) (revenue [revenueBucketCount]float64, sales [revenueBucketCount]int) {
	for _, order := range orders {
		elapsed := now.Sub(order.CreatedAt)
		if elapsed < 0 {
			continue
		}

		monthsAgo := int(elapsed / bucketWidth)
		if monthsAgo >= revenueBucketCount {
			continue
		}

		index := revenueBucketCount - 1 - monthsAgo
		revenue[index] += order.Total
		sales[index]++
	}

	return revenue, sales
}

// CalculatePercentage returns this period's figure as a percentage of the
// previous one, rounded to a whole percent. A zero previous period reports
// the raw figure scaled by 100.
func CalculatePercentage(thisMonth, lastMonth float64) float64 {
	if lastMonth == 0 {
		return thisMonth * 100
	}
	return math.Round(thisMonth / lastMonth * 100)
}
