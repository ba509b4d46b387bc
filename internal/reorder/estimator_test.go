package reorder

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cocaColaDaily = []float64{
	20, 18, 22, 19, 21, 20, 19, 18, 20, 22, 21, 19, 20, 20,
	18, 21, 19, 20, 20, 22, 18, 19, 20, 21, 20, 19, 20, 20,
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestDemand(t *testing.T) {
	v, last, prev := Demand(140, 105, 210)
	assert.InDelta(t, 17.5, v, 1e-9)
	assert.InDelta(t, 20, last, 1e-9)
	assert.InDelta(t, 15, prev, 1e-9)

	v, _, _ = Demand(0, 0, 0)
	assert.Equal(t, 0.0, v)
}

func TestDemandNonNegative(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		v, _, _ := Demand(r.Float64()*1000, r.Float64()*1000, r.Float64()*2000)
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name     string
		last     float64
		prev     float64
		expected float64
	}{
		{"rising clamps to max", 20, 15, MaxTrend},
		{"falling clamps to min", 5, 15, MinTrend},
		{"equal weeks", 12, 12, 1},
		{"inside band", 11, 10, 1.1},
		{"zero previous week", 50.0 / 7, 0, 1},
		{"both zero", 0, 0, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Trend(tc.last, tc.prev), 1e-12)
		})
	}
}

func TestTrendAlwaysInBand(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		tr := Trend(r.Float64()*100, r.Float64()*100)
		assert.GreaterOrEqual(t, tr, MinTrend)
		assert.LessOrEqual(t, tr, MaxTrend)
	}
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{}))
	assert.Equal(t, 0.0, StdDev(constant(28, 20)))

	// population, not sample: {2,4,4,4,5,5,7,9} has sigma exactly 2
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)

	assert.InDelta(t, 1.1561724325884748, StdDev(cocaColaDaily), 1e-12)
}

func TestStdDevOrderInvariant(t *testing.T) {
	shuffled := append([]float64(nil), cocaColaDaily...)
	r := rand.New(rand.NewSource(3))
	r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	assert.InDelta(t, StdDev(cocaColaDaily), StdDev(shuffled), 1e-12)
}

func TestSafetyStock(t *testing.T) {
	assert.InDelta(t, 1.65*2*math.Sqrt(5), SafetyStock(2, 4), 1e-12)
	assert.Equal(t, 0.0, SafetyStock(0, 4))

	// lead times of zero and -1 are accepted as is
	assert.InDelta(t, 1.65*3, SafetyStock(3, 0), 1e-12)
	assert.Equal(t, 0.0, SafetyStock(3, -1))

	for _, l := range []float64{-1, 0, 0.5, 4, 30} {
		assert.GreaterOrEqual(t, SafetyStock(1.3, l), 0.0)
	}
}

func TestBucketsFromDaily(t *testing.T) {
	last, prior, older := BucketsFromDaily(cocaColaDaily)
	assert.Equal(t, 139.0, last)
	assert.Equal(t, 140.0, prior)
	assert.Equal(t, 277.0, older)

	last, prior, older = BucketsFromDaily([]float64{1, 2, 3})
	assert.Equal(t, 6.0, last)
	assert.Zero(t, prior)
	assert.Zero(t, older)

	// days beyond the window are ignored
	last, prior, older = BucketsFromDaily(constant(40, 1))
	assert.Equal(t, 7.0, last)
	assert.Equal(t, 7.0, prior)
	assert.Equal(t, 14.0, older)
}

func TestComputeScenarios(t *testing.T) {
	coca := Article{
		CurrentStock: 50,
		SalesLast7:   140,
		SalesPrior7:  105,
		SalesOlder14: 210,
		DailySales:   cocaColaDaily,
		SupplierID:   1,
	}

	t.Run("reference article", func(t *testing.T) {
		res := Compute(coca, &Supplier{ID: 1, LeadTimeDays: 4})
		assert.InDelta(t, 17.5, res.AverageDailyDemand, 1e-9)
		assert.Equal(t, MaxTrend, res.TrendFactor)
		assert.InDelta(t, 1.1561724325884748, res.DemandStdDev, 1e-12)
		assert.InDelta(t, 1.65*res.DemandStdDev*math.Sqrt(5), res.SafetyStock, 1e-12)
		assert.InDelta(t, 38.265712252415554, res.RawQuantity, 1e-9)
		assert.Equal(t, 38, res.SuggestedOrderQuantity)
		assert.Equal(t, 4.0, res.LeadTimeDays)
	})

	t.Run("zero prior week gives neutral trend", func(t *testing.T) {
		res := Compute(Article{SalesLast7: 50, DailySales: constant(28, 0)}, &Supplier{LeadTimeDays: 3})
		assert.Equal(t, 1.0, res.TrendFactor)
		assert.False(t, math.IsInf(res.RawQuantity, 0))
		assert.False(t, math.IsNaN(res.RawQuantity))
	})

	t.Run("empty window", func(t *testing.T) {
		a := coca
		a.DailySales = []float64{}
		res := Compute(a, &Supplier{LeadTimeDays: 4})
		assert.Equal(t, 0.0, res.DemandStdDev)
		assert.Equal(t, 0.0, res.SafetyStock)
		assert.Equal(t, int(math.Round(17.5*4*1.2-50)), res.SuggestedOrderQuantity)
	})

	t.Run("huge stock clamps to zero", func(t *testing.T) {
		a := coca
		a.CurrentStock = 100000
		res := Compute(a, &Supplier{LeadTimeDays: 4})
		assert.Less(t, res.RawQuantity, 0.0)
		assert.Equal(t, 0, res.SuggestedOrderQuantity)
		assert.Equal(t, 0.0, res.SortKey())
	})

	t.Run("constant sales", func(t *testing.T) {
		a := NewArticle(9, 10, 1, constant(28, 20))
		res := Compute(a, &Supplier{LeadTimeDays: 4})
		assert.Equal(t, 0.0, res.DemandStdDev)
		assert.Equal(t, 0.0, res.SafetyStock)
		assert.Equal(t, 1.0, res.TrendFactor)
		// V = 20, raw = 20*4*1 - 10
		assert.Equal(t, 70, res.SuggestedOrderQuantity)
	})

	t.Run("missing supplier defaults lead time", func(t *testing.T) {
		var res Result
		require.NotPanics(t, func() { res = Compute(coca, nil) })
		assert.Equal(t, DefaultLeadTimeDays, res.LeadTimeDays)
		assert.Equal(t, Compute(coca, &Supplier{LeadTimeDays: 4}), res)
	})
}

func TestComputeSecondSampleArticle(t *testing.T) {
	fanta := Article{
		CurrentStock: 30,
		SalesLast7:   70,
		SalesPrior7:  60,
		SalesOlder14: 120,
		DailySales:   []float64{8, 7, 9, 8, 8, 7, 8, 9, 7, 8, 8, 7, 8, 9, 8, 7, 8, 8, 9, 7, 8, 8, 7, 8, 9, 8, 7, 8},
	}
	res := Compute(fanta, &Supplier{LeadTimeDays: 3})
	assert.InDelta(t, 9.285714285714285, res.AverageDailyDemand, 1e-9)
	assert.InDelta(t, 1.1666666666666667, res.TrendFactor, 1e-9)
	assert.Equal(t, 5, res.SuggestedOrderQuantity)
}

// Non-positive lead times are not rejected; the result is kept but has little meaning.
func TestComputeNonPositiveLeadTime(t *testing.T) {
	a := NewArticle(1, 0, 1, cocaColaDaily)

	res := Compute(a, &Supplier{LeadTimeDays: 0})
	assert.Equal(t, 0.0, res.LeadTimeDays)
	assert.InDelta(t, 1.65*res.DemandStdDev, res.SafetyStock, 1e-12)
	assert.GreaterOrEqual(t, res.SuggestedOrderQuantity, 0)

	res = Compute(a, &Supplier{LeadTimeDays: -1})
	assert.Equal(t, 0.0, res.SafetyStock)
	assert.Equal(t, 0, res.SuggestedOrderQuantity)
}

func TestComputeIdempotent(t *testing.T) {
	a := NewArticle(1, 12, 2, cocaColaDaily)
	s := &Supplier{ID: 2, LeadTimeDays: 5}
	assert.Equal(t, Compute(a, s), Compute(a, s))
}

func TestComputeNeverNegative(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 300; i++ {
		daily := make([]float64, WindowDays)
		for j := range daily {
			daily[j] = float64(r.Intn(30))
		}
		a := NewArticle(int64(i), r.Intn(2000), 1, daily)
		res := Compute(a, &Supplier{LeadTimeDays: float64(r.Intn(10))})
		assert.GreaterOrEqual(t, res.SuggestedOrderQuantity, 0)
	}
}

func TestEstimatorCustomParams(t *testing.T) {
	e := NewEstimator(Params{Z: 2, ReviewDays: 0, DefaultLeadTime: 7})
	assert.Equal(t, 7.0, e.LeadTime(nil))
	assert.InDelta(t, 2*1.5*math.Sqrt(9), e.SafetyStock(1.5, 9), 1e-12)
	assert.Equal(t, DefaultParams(), defaultEstimator.Params())
}
