package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"mysphere/internal/core"
)

// Operation is the kind of change a RecordEvent reports.
type Operation string

const (
	OpCreated Operation = "created"
	OpUpdated Operation = "updated"
	OpDeleted Operation = "deleted"
)

// RecordEvent announces a committed change to one record.
// It carries only the id; consumers load the current row themselves.
type RecordEvent struct {
	Kind       core.Kind `json:"kind"`
	ID         string    `json:"id"`
	Op         Operation `json:"op"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewRecordEvent creates a new event stamped with the current time.
func NewRecordEvent(kind core.Kind, id string, op Operation) *RecordEvent {
	return &RecordEvent{
		Kind:       kind,
		ID:         id,
		Op:         op,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (m *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordEventFromJSON decodes and checks an event body.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var msg RecordEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (m *RecordEvent) validate() error {
	switch m.Kind {
	case core.KindExpense, core.KindBodyWeight, core.KindWholesale:
	default:
		return fmt.Errorf("unknown record kind %q", m.Kind)
	}
	switch m.Op {
	case OpCreated, OpUpdated, OpDeleted:
	default:
		return fmt.Errorf("unknown operation %q", m.Op)
	}
	if m.ID == "" {
		return fmt.Errorf("event without record id")
	}
	return nil
}
