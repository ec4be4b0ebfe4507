package analytics

import (
	"math"
	"strconv"
)

// percent returns part/total*100, or 0 when total is zero.
func percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// ClickRatePct is the one-decimal click rate used by the summary counters
// and per-user rows. It is 0 for an empty scope.
func ClickRatePct(clicks, total int) float64 {
	return roundTo(percent(clicks, total), 1)
}

// WholeRatePct is a click rate rounded to the nearest integer, used by the
// weekly trend, template and drill-down views.
func WholeRatePct(clicks, total int) int {
	return int(math.Round(percent(clicks, total)))
}

// FormatRate renders a rate with exactly one decimal, e.g. "30.0".
func FormatRate(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 1, 64)
}
