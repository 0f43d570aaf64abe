package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AppointmentRepository is the persistence surface for appointments. The
// ForUpdate and locking reads participate in the transaction carried by ctx;
// calling them outside a transaction scope locks nothing.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// UpdateTime moves an active appointment; it affects zero rows when the
	// new time equals the stored one.
	UpdateTime(ctx context.Context, id uuid.UUID, t time.Time) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error

	// LockDoctorCalendar takes a row lock on the doctor, serializing
	// concurrent guard checks for that doctor until the transaction ends.
	LockDoctorCalendar(ctx context.Context, doctorID uuid.UUID) error

	// CountOccupyingNear counts occupying appointments strictly within the
	// guard interval of t, locking the matched rows. exclude skips one
	// appointment (the one being rescheduled); pass uuid.Nil to skip none.
	CountOccupyingNear(ctx context.Context, doctorID uuid.UUID, t time.Time, exclude uuid.UUID) (int, error)

	// ListOccupyingByDoctorDate is the occupancy read: appointments on the
	// date with status other than CANCELED and no soft delete.
	ListOccupyingByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Appointment, error)

	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
}
