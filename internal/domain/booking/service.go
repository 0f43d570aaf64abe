package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medsched/medsched/internal/platform/apperr"
	"github.com/medsched/medsched/internal/platform/clock"
)

// TxRunner scopes a function to one database transaction. *db.TxManager
// satisfies it; tests substitute a pass-through.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements booking and appointment lifecycle. Every operation that
// writes an appointment runs inside one transaction that also performed the
// guard check; the transaction helper guarantees rollback and connection
// release on every exit path.
type Service struct {
	appts AppointmentRepository
	guard *ConflictGuard
	tx    TxRunner
	clock clock.Clock
}

func NewService(appts AppointmentRepository, slots SlotSource, tx TxRunner, clk clock.Clock) *Service {
	return &Service{
		appts: appts,
		guard: NewConflictGuard(appts, slots),
		tx:    tx,
		clock: clk,
	}
}

// Book reserves a slot for the client. The requested time is normalized to
// UTC and must be in the future.
func (s *Service) Book(ctx context.Context, clientID, doctorID uuid.UUID, t time.Time) (*Appointment, error) {
	t = t.UTC()
	if err := s.validateFuture(t); err != nil {
		return nil, err
	}
	if clientID == uuid.Nil || doctorID == uuid.Nil {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "client_id and doctor_id are required")
	}

	appt := &Appointment{
		DoctorID:        doctorID,
		ClientID:        clientID,
		AppointmentTime: t,
		Status:          StatusScheduled,
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.guard.CheckAndReserve(ctx, doctorID, t, uuid.Nil); err != nil {
			return err
		}
		return s.appts.Create(ctx, appt)
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Reschedule moves an active appointment to a new slot under the same guard
// as Book. The appointment's own row is not counted as a conflict, so moving
// within 20 minutes of itself is allowed. Rescheduling to the identical time
// changes nothing and fails validation.
func (s *Service) Reschedule(ctx context.Context, apptID uuid.UUID, t time.Time) (*Appointment, error) {
	t = t.UTC()
	if err := s.validateFuture(t); err != nil {
		return nil, err
	}

	var appt *Appointment
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		appt, err = s.appts.GetByIDForUpdate(ctx, apptID)
		if err != nil {
			return err
		}
		if !appt.Active() {
			return apperr.Validation(apperr.CodeAppointmentInactive, "appointment is not scheduled")
		}
		if err := s.guard.CheckAndReserve(ctx, appt.DoctorID, t, apptID); err != nil {
			return err
		}
		n, err := s.appts.UpdateTime(ctx, apptID, t)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.Validation(apperr.CodeNoChangeApplied, "appointment already at the requested time")
		}
		appt.AppointmentTime = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Cancel releases the appointment's slot. Only scheduled appointments can be
// canceled; caller authorization is the HTTP layer's concern.
func (s *Service) Cancel(ctx context.Context, apptID uuid.UUID) error {
	return s.transition(ctx, apptID, StatusCanceled)
}

// Complete marks a scheduled appointment as held. The slot stays occupied.
func (s *Service) Complete(ctx context.Context, apptID uuid.UUID) error {
	return s.transition(ctx, apptID, StatusCompleted)
}

func (s *Service) transition(ctx context.Context, apptID uuid.UUID, to Status) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		appt, err := s.appts.GetByIDForUpdate(ctx, apptID)
		if err != nil {
			return err
		}
		if appt.Status != StatusScheduled {
			return apperr.Validation(apperr.CodeAppointmentInactive, "appointment is not scheduled")
		}
		return s.appts.UpdateStatus(ctx, apptID, to)
	})
}

// SoftDelete hides the appointment and frees its slot. Works from any
// status.
func (s *Service) SoftDelete(ctx context.Context, apptID uuid.UUID) error {
	return s.appts.SoftDelete(ctx, apptID)
}

// HardDelete removes the row permanently, soft-deleted or not.
func (s *Service) HardDelete(ctx context.Context, apptID uuid.UUID) error {
	return s.appts.HardDelete(ctx, apptID)
}

func (s *Service) Get(ctx context.Context, apptID uuid.UUID) (*Appointment, error) {
	return s.appts.GetByID(ctx, apptID)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByClient(ctx, clientID, limit, offset)
}

// OpenSlots returns the doctor's free slots on a date: the generated
// candidates minus any slot with an occupying appointment strictly within
// the guard interval. Exactly 20 minutes away leaves a slot open.
func (s *Service) OpenSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]time.Time, error) {
	date = date.UTC()
	candidates, err := s.guard.slots.SlotsForDate(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	occupying, err := s.appts.ListOccupyingByDoctorDate(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	open := make([]time.Time, 0, len(candidates))
	for _, slot := range candidates {
		if !blocked(slot, occupying) {
			open = append(open, slot)
		}
	}
	return open, nil
}

func blocked(slot time.Time, occupying []*Appointment) bool {
	for _, a := range occupying {
		d := slot.Sub(a.AppointmentTime)
		if d < 0 {
			d = -d
		}
		if d < GuardInterval {
			return true
		}
	}
	return false
}

func (s *Service) validateFuture(t time.Time) error {
	if !t.After(s.clock.Now()) {
		return apperr.Validation(apperr.CodeInvalidAppointmentTime, "appointment time must be in the future")
	}
	return nil
}
