package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medsched/medsched/internal/platform/apperr"
)

// GuardInterval is the minimum separation between two occupying
// appointments for one doctor.
const GuardInterval = 20 * time.Minute

// slotTolerance absorbs sub-second drift between a requested instant and the
// generated slot grid.
const slotTolerance = time.Second

// SlotSource yields the candidate slot instants for a doctor on a date.
// Satisfied by availability.Service.
type SlotSource interface {
	SlotsForDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]time.Time, error)
}

// ConflictGuard decides whether a candidate time may be booked. It must run
// inside the caller's transaction: the locks it takes are what serialize
// concurrent bookings for one doctor, and they are held until that
// transaction commits or rolls back.
type ConflictGuard struct {
	appts AppointmentRepository
	slots SlotSource
}

func NewConflictGuard(appts AppointmentRepository, slots SlotSource) *ConflictGuard {
	return &ConflictGuard{appts: appts, slots: slots}
}

// CheckAndReserve verifies that t is a bookable slot for the doctor and
// leaves the doctor's calendar locked for the rest of the transaction.
// exclude names an appointment whose own row must not count as a conflict
// (the one being rescheduled); pass uuid.Nil otherwise.
//
// The guard-interval count is authoritative: any occupying appointment
// strictly within 20 minutes of t fails the check, and times that are not on
// the doctor's slot grid are rejected even if the interval is clear.
func (g *ConflictGuard) CheckAndReserve(ctx context.Context, doctorID uuid.UUID, t time.Time, exclude uuid.UUID) error {
	if err := g.appts.LockDoctorCalendar(ctx, doctorID); err != nil {
		return err
	}

	count, err := g.appts.CountOccupyingNear(ctx, doctorID, t, exclude)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Validation(apperr.CodeSlotUnavailable, "slot is already taken")
	}

	slots, err := g.slots.SlotsForDate(ctx, doctorID, t)
	if err != nil {
		return err
	}
	if !onSlotGrid(t, slots) {
		return apperr.Validation(apperr.CodeSlotUnavailable, "time is outside the doctor's bookable slots")
	}
	return nil
}

func onSlotGrid(t time.Time, slots []time.Time) bool {
	for _, s := range slots {
		d := t.Sub(s)
		if d < 0 {
			d = -d
		}
		if d <= slotTolerance {
			return true
		}
	}
	return false
}
