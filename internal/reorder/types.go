package reorder

// Article is the slice of an article the estimator needs.
type Article struct {
	ID           int64
	CurrentStock int
	SalesLast7   float64 // units sold in the most recent 7 days
	SalesPrior7  float64 // units sold in the 7 days before that
	SalesOlder14 float64 // units sold in the 14 days preceding SalesPrior7
	DailySales   []float64
	SupplierID   int64
}

// Supplier carries the replenishment lead time ("Lieferzyklus").
type Supplier struct {
	ID           int64
	LeadTimeDays float64
}

// Result holds every intermediate value of a reorder computation.
type Result struct {
	AverageDailyDemand     float64 `json:"average_daily_demand"`
	TrendFactor            float64 `json:"trend_factor"`
	DemandStdDev           float64 `json:"demand_std_dev"`
	SafetyStock            float64 `json:"safety_stock"`
	LeadTimeDays           float64 `json:"lead_time_days"`
	RawQuantity            float64 `json:"raw_quantity"`
	SuggestedOrderQuantity int     `json:"suggested_order_quantity"`
}

// SortKey is the unrounded order quantity clamped at zero.
func (r Result) SortKey() float64 {
	if r.RawQuantity < 0 {
		return 0
	}
	return r.RawQuantity
}
