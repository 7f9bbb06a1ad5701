package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBodyWeight_RoundsToOneDecimal(t *testing.T) {
	b, err := NewBodyWeight(BodyWeightInput{
		Weight:            ptr(72.34),
		BodyFatPercentage: ptr(18.26),
		BMI:               ptr(22.449),
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, 72.3, b.Weight)
	assert.Equal(t, UnitKg, b.Unit)
	assert.Equal(t, testNow, b.Date)
	assert.Equal(t, 18.3, *b.BodyFatPercentage)
	assert.Equal(t, 22.4, *b.BMI)
	assert.Nil(t, b.MuscleMass)
	assert.Equal(t, "72.3 kg", b.FormattedWeight())
	assert.Equal(t, "2025-03", b.MonthYear())
}

func TestNewBodyWeight_Validation(t *testing.T) {
	tests := []struct {
		name   string
		in     BodyWeightInput
		fields []string
	}{
		{"missing weight", BodyWeightInput{}, []string{"weight"}},
		{"too light", BodyWeightInput{Weight: ptr(0.5)}, []string{"weight"}},
		{"too heavy", BodyWeightInput{Weight: ptr(1000.1)}, []string{"weight"}},
		{"bad unit", BodyWeightInput{Weight: ptr(70.0), Unit: ptr("stone")}, []string{"unit"}},
		{"body fat over 100", BodyWeightInput{Weight: ptr(70.0), BodyFatPercentage: ptr(101.0)}, []string{"bodyFatPercentage"}},
		{"negative muscle mass", BodyWeightInput{Weight: ptr(70.0), MuscleMass: ptr(-1.0)}, []string{"muscleMass"}},
		{"negative bmi", BodyWeightInput{Weight: ptr(70.0), BMI: ptr(-0.5)}, []string{"bmi"}},
		{"future date", BodyWeightInput{Weight: ptr(70.0), Date: ptr("2025-04-01")}, []string{"date"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBodyWeight(tt.in, testNow)
			require.Error(t, err)
			assert.ElementsMatch(t, tt.fields, fieldNames(t, err))
		})
	}
}

func TestBodyWeight_PatchKeepsUntouchedFields(t *testing.T) {
	b, err := NewBodyWeight(BodyWeightInput{Weight: ptr(80.0), Unit: ptr("lbs"), MuscleMass: ptr(30.0)}, testNow)
	require.NoError(t, err)

	updated, err := b.Patch(BodyWeightInput{Weight: ptr(79.96)}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 80.0, updated.Weight)
	assert.Equal(t, UnitLbs, updated.Unit)
	assert.Equal(t, 30.0, *updated.MuscleMass)
}

func TestBodyWeight_MarshalJSON(t *testing.T) {
	b := BodyWeight{Weight: 70, Unit: UnitLbs, Date: testNow}
	data, err := json.Marshal(b)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "70.0 lbs", out["formattedWeight"])
	assert.Equal(t, "2025-03", out["monthYear"])
	assert.Contains(t, out, "bodyFatPercentage")
	assert.Nil(t, out["bodyFatPercentage"])
}
