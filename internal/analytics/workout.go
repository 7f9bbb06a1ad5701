package analytics

import (
	"time"

	"mysphere/internal/core"
)

// WorkoutProgress is derived from a programme start date and a planned weekly cadence;
// no workouts are stored.
type WorkoutProgress struct {
	StartDate           time.Time `json:"startDate"`
	DaysSinceStart      int       `json:"daysSinceStart"`
	CurrentWeek         int       `json:"currentWeek"`
	WorkoutsPerWeek     int       `json:"workoutsPerWeek"`
	TotalWorkouts       int       `json:"totalWorkouts"`
	CurrentWeekWorkouts int       `json:"currentWeekWorkouts"`
	CompletionRate      float64   `json:"completionRate"`
}

// Progress assumes workouts are spread evenly through each week. Before the start
// date everything is zero except CurrentWeek, which is 1.
func Progress(start, now time.Time, perWeek int) WorkoutProgress {
	p := WorkoutProgress{StartDate: start, WorkoutsPerWeek: perWeek, CurrentWeek: 1}
	if perWeek <= 0 || now.Before(start) {
		return p
	}

	// Whole calendar days, independent of DST.
	today := now.In(start.Location())
	days := int(civilDay(today).Sub(civilDay(start)).Hours() / 24)

	p.DaysSinceStart = days
	p.CurrentWeek = days/7 + 1
	p.TotalWorkouts = days * perWeek / 7
	p.CurrentWeekWorkouts = p.TotalWorkouts - (p.CurrentWeek-1)*perWeek
	p.CompletionRate = core.Round(float64(p.TotalWorkouts)/float64(p.CurrentWeek*perWeek)*100, core.MetricPlaces)
	return p
}

func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
