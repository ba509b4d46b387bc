package reorder

import "math"

// Weights of the blended daily demand; recent weeks count more.
const (
	WeightLastWeek = 0.5
	WeightPrevWeek = 0.3
	WeightOlder    = 0.2
)

// Trend clamp band.
const (
	MinTrend = 0.8
	MaxTrend = 1.2
)

const (
	// ServiceLevelZ is the one-sided z-score for roughly 95% service level.
	ServiceLevelZ = 1.65
	// ReviewDays is added to the lead time when scaling the safety stock.
	ReviewDays = 1.0
	// DefaultLeadTimeDays is used when the supplier cannot be resolved.
	DefaultLeadTimeDays = 4.0
	// WindowDays is the length of the daily sales window.
	WindowDays = 28
)

// Params holds the tunable constants of the estimator.
type Params struct {
	Z               float64
	ReviewDays      float64
	DefaultLeadTime float64
}

// DefaultParams reproduces the reference heuristic exactly.
func DefaultParams() Params {
	return Params{
		Z:               ServiceLevelZ,
		ReviewDays:      ReviewDays,
		DefaultLeadTime: DefaultLeadTimeDays,
	}
}

// Estimator computes order suggestions. The zero value is not usable, build
// one with NewEstimator.
type Estimator struct {
	params Params
}

// NewEstimator returns an estimator using p.
func NewEstimator(p Params) *Estimator {
	return &Estimator{params: p}
}

var defaultEstimator = NewEstimator(DefaultParams())

// Compute runs the estimator with DefaultParams.
func Compute(article Article, supplier *Supplier) Result {
	return defaultEstimator.Compute(article, supplier)
}

// Params returns the constants the estimator was built with.
func (e *Estimator) Params() Params {
	return e.params
}

// Demand returns the blended average daily demand together with the two
// weekly sub-averages the trend is computed from.
func Demand(last7, prior7, older14 float64) (v, vLastWeek, vPrevWeek float64) {
	vLastWeek = last7 / 7
	vPrevWeek = prior7 / 7
	vOlder := older14 / 14
	v = vLastWeek*WeightLastWeek + vPrevWeek*WeightPrevWeek + vOlder*WeightOlder
	return v, vLastWeek, vPrevWeek
}

// Trend is the ratio of last week's to the previous week's demand, clamped to
// [MinTrend, MaxTrend]. A zero previous week yields 1.
func Trend(vLastWeek, vPrevWeek float64) float64 {
	t := 1.0
	if vPrevWeek > 0 {
		t = vLastWeek / vPrevWeek
	}
	return math.Max(MinTrend, math.Min(t, MaxTrend))
}

// SafetyStock scales the demand deviation by the lead time plus review days.
func (e *Estimator) SafetyStock(sigma, leadTime float64) float64 {
	return e.params.Z * sigma * math.Sqrt(leadTime+e.params.ReviewDays)
}

// SafetyStock uses DefaultParams.
func SafetyStock(sigma, leadTime float64) float64 {
	return defaultEstimator.SafetyStock(sigma, leadTime)
}

// LeadTime resolves the lead time of supplier, falling back to the default.
// Zero or negative lead times are passed through unchanged.
func (e *Estimator) LeadTime(supplier *Supplier) float64 {
	if supplier == nil {
		return e.params.DefaultLeadTime
	}
	return supplier.LeadTimeDays
}

// Compute returns the suggested order quantity for article.
func (e *Estimator) Compute(article Article, supplier *Supplier) Result {
	v, vLastWeek, vPrevWeek := Demand(article.SalesLast7, article.SalesPrior7, article.SalesOlder14)
	t := Trend(vLastWeek, vPrevWeek)
	sigma := StdDev(article.DailySales)
	l := e.LeadTime(supplier)
	sb := e.SafetyStock(sigma, l)

	raw := v*l*t + sb - float64(article.CurrentStock)

	qty := 0
	if raw >= 0 {
		qty = int(math.Round(raw))
	}

	return Result{
		AverageDailyDemand:     v,
		TrendFactor:            t,
		DemandStdDev:           sigma,
		SafetyStock:            sb,
		LeadTimeDays:           l,
		RawQuantity:            raw,
		SuggestedOrderQuantity: qty,
	}
}
