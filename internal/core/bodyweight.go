package core

import (
	"encoding/json"
	"strings"
	"time"
)

type (
	WeightUnit string

	// BodyWeight is one weigh-in with optional body composition metrics.
	BodyWeight struct {
		ID                string     `json:"id"`
		Weight            float64    `json:"weight"`
		Unit              WeightUnit `json:"unit"`
		Date              time.Time  `json:"date"`
		Notes             string     `json:"notes,omitempty"`
		BodyFatPercentage *float64   `json:"bodyFatPercentage"`
		MuscleMass        *float64   `json:"muscleMass"`
		BMI               *float64   `json:"bmi"`
		CreatedBy         string     `json:"createdBy,omitempty"`
		CreatedAt         time.Time  `json:"createdAt"`
		UpdatedAt         time.Time  `json:"updatedAt"`
	}

	BodyWeightInput struct {
		Weight            *float64 `json:"weight"`
		Unit              *string  `json:"unit"`
		Date              *string  `json:"date"`
		Notes             *string  `json:"notes"`
		BodyFatPercentage *float64 `json:"bodyFatPercentage"`
		MuscleMass        *float64 `json:"muscleMass"`
		BMI               *float64 `json:"bmi"`
		CreatedBy         *string  `json:"createdBy"`
	}
)

const (
	UnitKg  WeightUnit = "kg"
	UnitLbs WeightUnit = "lbs"
)

const (
	minWeight          = 1
	maxWeight          = 1000
	maxBodyWeightNotes = 500
)

func (u WeightUnit) Valid() bool { return u == UnitKg || u == UnitLbs }

func (b BodyWeight) RecordID() string      { return b.ID }
func (b BodyWeight) RecordDate() time.Time { return b.Date }

// FormattedWeight renders the weight with one decimal and its unit, e.g. "72.3 kg".
func (b BodyWeight) FormattedWeight() string {
	return Fixed(b.Weight, MetricPlaces) + " " + string(b.Unit)
}

// MonthYear is the YYYY-MM of the entry date.
func (b BodyWeight) MonthYear() string {
	return b.Date.Format("2006-01")
}

func (b BodyWeight) MarshalJSON() ([]byte, error) {
	type alias BodyWeight
	return json.Marshal(struct {
		alias
		FormattedWeight string `json:"formattedWeight"`
		MonthYear       string `json:"monthYear"`
	}{alias(b), b.FormattedWeight(), b.MonthYear()})
}

// NewBodyWeight builds a validated entry; unit defaults to kg and date to now.
func NewBodyWeight(in BodyWeightInput, now time.Time) (BodyWeight, error) {
	b := BodyWeight{Unit: UnitKg, Date: now}
	verr := &ValidationError{}
	if in.Weight == nil {
		verr.Add("weight", "is required")
	}
	return b.merge(in, now, verr)
}

// Patch applies a partial update and re-validates the merged entry.
func (b BodyWeight) Patch(in BodyWeightInput, now time.Time) (BodyWeight, error) {
	return b.merge(in, now, &ValidationError{})
}

func (b BodyWeight) merge(in BodyWeightInput, now time.Time, verr *ValidationError) (BodyWeight, error) {
	if in.Weight != nil {
		b.Weight = *in.Weight
	}
	if in.Unit != nil {
		b.Unit = WeightUnit(strings.TrimSpace(*in.Unit))
	}
	applyDate(verr, "date", in.Date, &b.Date, now.Location())
	if in.Notes != nil {
		b.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.BodyFatPercentage != nil {
		b.BodyFatPercentage = in.BodyFatPercentage
	}
	if in.MuscleMass != nil {
		b.MuscleMass = in.MuscleMass
	}
	if in.BMI != nil {
		b.BMI = in.BMI
	}
	if in.CreatedBy != nil {
		b.CreatedBy = strings.TrimSpace(*in.CreatedBy)
	}

	b.Weight = Round(b.Weight, MetricPlaces)
	b.BodyFatPercentage = RoundPtr(b.BodyFatPercentage, MetricPlaces)
	b.MuscleMass = RoundPtr(b.MuscleMass, MetricPlaces)
	b.BMI = RoundPtr(b.BMI, MetricPlaces)

	b.validate(now, verr)
	if err := verr.Err(); err != nil {
		return BodyWeight{}, err
	}
	return b, nil
}

func (b BodyWeight) validate(now time.Time, verr *ValidationError) {
	if !hasField(verr, "weight") && (b.Weight < minWeight || b.Weight > maxWeight) {
		verr.Add("weight", "must be between %d and %d", minWeight, maxWeight)
	}
	if !b.Unit.Valid() {
		verr.Add("unit", "must be kg or lbs")
	}
	if !hasField(verr, "date") {
		checkNotFuture(verr, "date", b.Date, now)
	}
	checkLength(verr, "notes", b.Notes, maxBodyWeightNotes)
	if v := b.BodyFatPercentage; v != nil && (*v < 0 || *v > 100) {
		verr.Add("bodyFatPercentage", "must be between 0 and 100")
	}
	if v := b.MuscleMass; v != nil && *v < 0 {
		verr.Add("muscleMass", "must be non-negative")
	}
	if v := b.BMI; v != nil && *v < 0 {
		verr.Add("bmi", "must be non-negative")
	}
}
