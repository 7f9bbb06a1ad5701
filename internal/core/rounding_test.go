package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	cases := []struct {
		in     float64
		places int32
		out    float64
	}{
		{72.34, MetricPlaces, 72.3},
		{72.35, MetricPlaces, 72.4},
		{99.999, MoneyPlaces, 100},
		{1.005, MoneyPlaces, 1.01},
		{-2.345, PercentPlaces, -2.35},
		{math.NaN(), MoneyPlaces, 0},
		{math.Inf(1), MoneyPlaces, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.out, Round(tc.in, tc.places), "Round(%v, %d)", tc.in, tc.places)
	}
}

func TestRoundPtr(t *testing.T) {
	assert.Nil(t, RoundPtr(nil, MetricPlaces))

	v := 18.26
	got := RoundPtr(&v, MetricPlaces)
	if assert.NotNil(t, got) {
		assert.Equal(t, 18.3, *got)
	}
	assert.Equal(t, 18.26, v, "input must not be modified")
}

func TestPercentageChange(t *testing.T) {
	assert.Equal(t, 50.0, PercentageChange(150, 100))
	assert.Equal(t, -25.0, PercentageChange(75, 100))
	assert.Equal(t, 0.0, PercentageChange(150, 0))
	assert.Equal(t, 33.33, PercentageChange(4, 3))
}

func TestFormatINR(t *testing.T) {
	cases := map[float64]string{
		0:         "₹0.00",
		999.5:     "₹999.50",
		1000:      "₹1,000.00",
		123456.78: "₹1,23,456.78",
		1234567.5: "₹12,34,567.50",
		-45000:    "-₹45,000.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatINR(in))
	}
}
