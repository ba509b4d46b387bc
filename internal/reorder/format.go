package reorder

import (
	"fmt"
	"math"
	"strconv"
)

// DisplayDemand rounds the daily demand to one decimal.
func DisplayDemand(v float64) float64 { return roundFloat(v, 1) }

// DisplayTrend rounds the trend factor to two decimals.
func DisplayTrend(t float64) float64 { return roundFloat(t, 2) }

// DisplaySafetyStock rounds the safety stock to whole units.
func DisplaySafetyStock(sb float64) int { return int(roundFloat(sb, 0)) }

// roundFloat rounds v to the given number of decimal places.
func roundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

// FormatDE formats v with German conventions: dot as thousands separator and
// comma as decimal separator. Trailing decimals are always printed.
// Example: 1234.5 (2 decimals) => "1.234,50"; 17.5 (1 decimal) => "17,5".
func FormatDE(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}

	neg := v < 0
	if neg {
		v = -v
	}

	factor := math.Pow(10, float64(decimals))
	scaled := int64(math.Round(v * factor))
	intPart := scaled / int64(factor)
	fracPart := scaled % int64(factor)

	s := groupThousands(strconv.FormatInt(intPart, 10))
	if neg && scaled != 0 {
		s = "-" + s
	}

	if decimals == 0 {
		return s
	}
	return fmt.Sprintf("%s,%0*d", s, decimals, fracPart)
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	var buf []byte
	count := 0
	for i := len(s) - 1; i >= 0; i-- {
		buf = append(buf, s[i])
		count++
		if count == 3 && i != 0 {
			buf = append(buf, '.')
			count = 0
		}
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}
