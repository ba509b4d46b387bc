package reorder

import "math"

// StdDev returns the population standard deviation of values (divides by N).
// An empty slice yields 0.
func StdDev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)

	return math.Sqrt(variance)
}

// BucketsFromDaily derives the three sales buckets from a most-recent-first
// daily series: days 1-7, days 8-14 and days 15-28. Missing days count as 0.
func BucketsFromDaily(daily []float64) (last7, prior7, older14 float64) {
	for i, v := range daily {
		switch {
		case i < 7:
			last7 += v
		case i < 14:
			prior7 += v
		case i < 28:
			older14 += v
		}
	}
	return last7, prior7, older14
}

// NewArticle builds an estimator input from a most-recent-first daily window.
func NewArticle(id int64, stock int, supplierID int64, daily []float64) Article {
	last7, prior7, older14 := BucketsFromDaily(daily)
	return Article{
		ID:           id,
		CurrentStock: stock,
		SalesLast7:   last7,
		SalesPrior7:  prior7,
		SalesOlder14: older14,
		DailySales:   daily,
		SupplierID:   supplierID,
	}
}
