package availability

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medsched/medsched/internal/platform/apperr"
)

// SlotWidth is the fixed booking granularity. Every candidate slot starts on
// a SlotWidth boundary within its window, and two active appointments for
// one doctor must be at least SlotWidth apart.
const SlotWidth = 20 * time.Minute

// Weekday is a day of the week, numbered like time.Weekday (Sunday = 0).
// It marshals to the uppercase day name used by the API.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [7]string{
	"SUNDAY", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY",
}

func (w Weekday) Valid() bool { return w >= 0 && w <= 6 }

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

func (w Weekday) MarshalJSON() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(w))
	}
	return json.Marshal(weekdayNames[w])
}

func (w *Weekday) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range weekdayNames {
		if n == strings.ToUpper(name) {
			*w = Weekday(i)
			return nil
		}
	}
	return fmt.Errorf("unknown weekday %q", name)
}

// Window is a doctor's recurring weekly availability window. Start and end
// are minutes from midnight UTC on the given weekday.
type Window struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Weekday     Weekday   `db:"weekday" json:"weekday"`
	StartMinute int       `db:"start_minute" json:"start_minute"`
	EndMinute   int       `db:"end_minute" json:"end_minute"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks the window invariants: a known weekday, both bounds inside
// one day, and start strictly before end.
func (w *Window) Validate() error {
	if w.DoctorID == uuid.Nil {
		return apperr.Validation(apperr.CodeInvalidInput, "doctor_id is required")
	}
	if !w.Weekday.Valid() {
		return apperr.Validation(apperr.CodeInvalidInput, "weekday must be a day name")
	}
	if w.StartMinute < 0 || w.EndMinute > 24*60 {
		return apperr.Validation(apperr.CodeInvalidInput, "window must lie within one day")
	}
	if w.StartMinute >= w.EndMinute {
		return apperr.Validation(apperr.CodeInvalidInput, "window start must be before end")
	}
	return nil
}

// SlotsOn expands the window into candidate slot start instants for one
// calendar date. The sequence starts at date+start, steps by SlotWidth, and
// stops strictly before date+end. Deterministic; the caller must pass a date
// whose weekday matches the window's.
func (w *Window) SlotsOn(date time.Time) []time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	start := day.Add(time.Duration(w.StartMinute) * time.Minute)
	end := day.Add(time.Duration(w.EndMinute) * time.Minute)

	var slots []time.Time
	for t := start; t.Before(end); t = t.Add(SlotWidth) {
		slots = append(slots, t)
	}
	return slots
}
