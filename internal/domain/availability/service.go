package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medsched/medsched/internal/platform/apperr"
)

type Service struct {
	windows WindowRepository
}

func NewService(windows WindowRepository) *Service {
	return &Service{windows: windows}
}

func (s *Service) CreateWindow(ctx context.Context, w *Window) error {
	if err := w.Validate(); err != nil {
		return err
	}
	return s.windows.Create(ctx, w)
}

func (s *Service) GetWindow(ctx context.Context, id uuid.UUID) (*Window, error) {
	return s.windows.GetByID(ctx, id)
}

func (s *Service) UpdateWindow(ctx context.Context, w *Window) error {
	if err := w.Validate(); err != nil {
		return err
	}
	return s.windows.Update(ctx, w)
}

func (s *Service) DeleteWindow(ctx context.Context, id uuid.UUID) error {
	return s.windows.Delete(ctx, id)
}

// WindowsForDoctor returns the doctor's full weekly schedule.
func (s *Service) WindowsForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Window, error) {
	return s.windows.ListByDoctor(ctx, doctorID)
}

// SlotsForDate expands the doctor's windows matching the date's weekday into
// candidate slot start instants. A doctor with no windows at all has no
// schedule; one with windows but none on that weekday is off that day.
func (s *Service) SlotsForDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]time.Time, error) {
	windows, err := s.windows.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, apperr.NotFound(apperr.CodeNoScheduleForDoctor, "doctor has no availability schedule")
	}

	weekday := Weekday(date.UTC().Weekday())
	var slots []time.Time
	for _, w := range windows {
		if w.Weekday == weekday {
			slots = append(slots, w.SlotsOn(date.UTC())...)
		}
	}
	if len(slots) == 0 {
		return nil, apperr.NotFound(apperr.CodeDoctorNotAvailableOnDay, "doctor is not available on this day")
	}
	return slots, nil
}
