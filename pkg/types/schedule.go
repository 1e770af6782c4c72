package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DaySchedule captures a single day's opening window.
type DaySchedule struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// WeekSchedule is the seven-day opening-hours map keyed by lowercase weekday name.
type WeekSchedule map[string]DaySchedule

// DefaultWeekSchedule returns a 9-to-5 weekday schedule with a closed weekend.
func DefaultWeekSchedule() WeekSchedule {
	schedule := WeekSchedule{}
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		schedule[day] = DaySchedule{Open: "09:00", Close: "17:00"}
	}
	for _, day := range []string{"saturday", "sunday"} {
		schedule[day] = DaySchedule{Closed: true}
	}
	return schedule
}

// Value serializes the schedule as JSON for storage.
func (w WeekSchedule) Value() (driver.Value, error) {
	if w == nil {
		return nil, nil
	}
	return json.Marshal(w)
}

// Scan deserializes the stored JSON column.
func (w *WeekSchedule) Scan(src any) error {
	if src == nil {
		*w = nil
		return nil
	}
	switch value := src.(type) {
	case []byte:
		return json.Unmarshal(value, w)
	case string:
		return json.Unmarshal([]byte(value), w)
	default:
		return fmt.Errorf("unsupported schedule column type %T", src)
	}
}

// DateList holds a JSON-encoded list of ISO dates (holidays).
type DateList []string

// Value serializes the list as JSON for storage.
func (d DateList) Value() (driver.Value, error) {
	if d == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(d)
}

// Scan deserializes the stored JSON column.
func (d *DateList) Scan(src any) error {
	if src == nil {
		*d = nil
		return nil
	}
	switch value := src.(type) {
	case []byte:
		return json.Unmarshal(value, d)
	case string:
		return json.Unmarshal([]byte(value), d)
	default:
		return fmt.Errorf("unsupported date list column type %T", src)
	}
}
