package storage

import (
	"context"
	"database/sql"
	"time"

	"mysphere/internal/core"
)

// BodyWeightFilter narrows a body weight listing.
type BodyWeightFilter struct {
	Unit core.WeightUnit
}

// BodyWeightStore persists weigh-ins.
type BodyWeightStore struct {
	*recordTable[core.BodyWeight]
}

func newBodyWeightStore(db *sql.DB, loc *time.Location) *BodyWeightStore {
	return &BodyWeightStore{&recordTable[core.BodyWeight]{
		db:   db,
		loc:  loc,
		kind: core.KindBodyWeight,
		name: "body_weights",
		columns: []string{
			"id", "weight", "unit", "date", "notes", "body_fat_percentage", "muscle_mass", "bmi",
			"created_by", "created_at", "updated_at",
		},
		scan:   scanBodyWeight,
		values: bodyWeightValues,
		sorts: sortColumns{
			"":                  "date",
			"date":              "date",
			"weight":            "weight",
			"bodyFatPercentage": "body_fat_percentage",
			"createdAt":         "created_at",
		},
	}}
}

func (s *BodyWeightStore) List(ctx context.Context, f BodyWeightFilter, req PageRequest) (Page[core.BodyWeight], error) {
	var where filter
	if f.Unit != "" {
		where.add("unit = ?", string(f.Unit))
	}
	return s.list(ctx, where, req)
}

func bodyWeightValues(b core.BodyWeight) ([]any, error) {
	return []any{
		b.ID, b.Weight, string(b.Unit), formatTime(b.Date), b.Notes,
		nullFloat(b.BodyFatPercentage), nullFloat(b.MuscleMass), nullFloat(b.BMI),
		b.CreatedBy, formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
	}, nil
}

func scanBodyWeight(row rowScanner, loc *time.Location) (core.BodyWeight, error) {
	var (
		b                        core.BodyWeight
		unit                     string
		date, createdAt, updated string
		bodyFat, muscleMass, bmi sql.NullFloat64
	)
	err := row.Scan(
		&b.ID, &b.Weight, &unit, &date, &b.Notes, &bodyFat, &muscleMass, &bmi,
		&b.CreatedBy, &createdAt, &updated,
	)
	if err != nil {
		return core.BodyWeight{}, err
	}

	b.Unit = core.WeightUnit(unit)
	b.BodyFatPercentage = floatPtr(bodyFat)
	b.MuscleMass = floatPtr(muscleMass)
	b.BMI = floatPtr(bmi)
	if b.Date, err = parseTime(date, loc); err != nil {
		return core.BodyWeight{}, err
	}
	if b.CreatedAt, err = parseTime(createdAt, loc); err != nil {
		return core.BodyWeight{}, err
	}
	if b.UpdatedAt, err = parseTime(updated, loc); err != nil {
		return core.BodyWeight{}, err
	}
	return b, nil
}
