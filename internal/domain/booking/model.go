package booking

import (
	"time"

	"github.com/google/uuid"
)

// Status is an appointment's lifecycle state.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusCanceled  Status = "CANCELED"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCanceled, StatusCompleted:
		return true
	}
	return false
}

// Appointment maps to the appointments table. AppointmentTime is always UTC.
type Appointment struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	DoctorID        uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	ClientID        uuid.UUID  `db:"client_id" json:"client_id"`
	AppointmentTime time.Time  `db:"appointment_time" json:"appointment_time"`
	Status          Status     `db:"status" json:"status"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// Active reports whether the appointment still holds its slot. Canceled and
// soft-deleted appointments free their slot immediately.
func (a *Appointment) Active() bool {
	return a.Status == StatusScheduled && a.DeletedAt == nil
}

// Occupies reports whether the appointment blocks other bookings near its
// time. Completed appointments keep occupying their slot; only cancellation
// or soft deletion releases it.
func (a *Appointment) Occupies() bool {
	return a.Status != StatusCanceled && a.DeletedAt == nil
}
