package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal places used when presenting values.
const (
	MetricPlaces  = 1 // weight and body metrics
	MoneyPlaces   = 2 // amounts, investments
	PercentPlaces = 2 // margins and period-over-period change
)

// Round rounds v to places decimals, half away from zero. NaN and infinities become 0.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// RoundPtr rounds an optional value, keeping nil as nil.
func RoundPtr(v *float64, places int32) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v, places)
	return &r
}

// Fixed formats v with exactly places decimals.
func Fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// PercentageChange compares current against previous, returning 0 when there is no baseline.
func PercentageChange(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return Round((current-previous)/previous*100, PercentPlaces)
}

// FormatINR renders an amount as rupees with Indian digit grouping, e.g. ₹12,34,567.50.
func FormatINR(amount float64) string {
	s := Fixed(amount, MoneyPlaces)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var grouped string
	if len(intPart) <= 3 {
		grouped = intPart
	} else {
		head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		grouped = strings.Join(append(groups, tail), ",")
	}
	return sign + "₹" + grouped + "." + frac
}
