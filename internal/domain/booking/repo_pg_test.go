package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/medsched/medsched/internal/platform/apperr"
)

func newPGMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestCountOccupyingNear_LocksAndFilters(t *testing.T) {
	mock := newPGMock(t)
	repo := NewAppointmentRepoPG(mock)

	doctorID := uuid.New()
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	// The locking read must exclude canceled and soft-deleted rows and carry
	// FOR UPDATE inside the subquery.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM \(\s*SELECT id FROM appointments\s+WHERE doctor_id = \$1\s+AND status <> 'CANCELED'\s+AND deleted_at IS NULL\s+AND appointment_time > \$2::timestamptz - interval '20 minutes'\s+AND appointment_time < \$2::timestamptz \+ interval '20 minutes'\s+AND id <> \$3\s+FOR UPDATE\s*\) conflicts`).
		WithArgs(doctorID, at, uuid.Nil).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	count, err := repo.CountOccupyingNear(context.Background(), doctorID, at, uuid.Nil)
	if err != nil {
		t.Fatalf("CountOccupyingNear: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCountOccupyingNear_ExcludeParam(t *testing.T) {
	mock := newPGMock(t)
	repo := NewAppointmentRepoPG(mock)

	doctorID, exclude := uuid.New(), uuid.New()
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM`).
		WithArgs(doctorID, at, exclude).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	count, err := repo.CountOccupyingNear(context.Background(), doctorID, at, exclude)
	if err != nil {
		t.Fatalf("CountOccupyingNear: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestLockDoctorCalendar(t *testing.T) {
	mock := newPGMock(t)
	repo := NewAppointmentRepoPG(mock)

	doctorID := uuid.New()
	mock.ExpectQuery(`SELECT id FROM doctors WHERE id = \$1 AND deleted_at IS NULL\s+FOR UPDATE`).
		WithArgs(doctorID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(doctorID))

	if err := repo.LockDoctorCalendar(context.Background(), doctorID); err != nil {
		t.Fatalf("LockDoctorCalendar: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestLockDoctorCalendar_UnknownDoctor(t *testing.T) {
	mock := newPGMock(t)
	repo := NewAppointmentRepoPG(mock)

	doctorID := uuid.New()
	mock.ExpectQuery(`SELECT id FROM doctors`).
		WithArgs(doctorID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	err := repo.LockDoctorCalendar(context.Background(), doctorID)
	if apperr.CodeOf(err) != apperr.CodeDoctorNotFound {
		t.Fatalf("code = %q, want %q", apperr.CodeOf(err), apperr.CodeDoctorNotFound)
	}
}

func TestGetByIDForUpdate_IssuesRowLock(t *testing.T) {
	mock := newPGMock(t)
	repo := NewAppointmentRepoPG(mock)

	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .+ FROM appointments\s+WHERE id = \$1 AND deleted_at IS NULL\s+FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "doctor_id", "client_id", "appointment_time", "status",
			"created_at", "updated_at", "deleted_at",
		}).AddRow(id, uuid.New(), uuid.New(), now.Add(time.Hour), StatusScheduled, now, now, nil))

	a, err := repo.GetByIDForUpdate(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByIDForUpdate: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("status = %q", a.Status)
	}
}

func TestUpdateTime_NoChangeAffectsZeroRows(t *testing.T) {
	mock := newPGMock(t)
	repo := NewAppointmentRepoPG(mock)

	id := uuid.New()
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	// IS DISTINCT FROM makes the same-time update a no-op
	mock.ExpectExec(`UPDATE appointments SET appointment_time = \$2, updated_at = NOW\(\)\s+WHERE id = \$1\s+AND appointment_time IS DISTINCT FROM \$2\s+AND status = 'SCHEDULED'\s+AND deleted_at IS NULL`).
		WithArgs(id, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	n, err := repo.UpdateTime(context.Background(), id, at)
	if err != nil {
		t.Fatalf("UpdateTime: %v", err)
	}
	if n != 0 {
		t.Errorf("rows affected = %d, want 0", n)
	}
}

func TestHardDelete_NotFound(t *testing.T) {
	mock := newPGMock(t)
	repo := NewAppointmentRepoPG(mock)

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM appointments WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.HardDelete(context.Background(), id)
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListOccupyingByDoctorDate_DayBounds(t *testing.T) {
	mock := newPGMock(t)
	repo := NewAppointmentRepoPG(mock)

	doctorID := uuid.New()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM appointments\s+WHERE doctor_id = \$1\s+AND status <> 'CANCELED'\s+AND deleted_at IS NULL\s+AND appointment_time >= \$2\s+AND appointment_time < \$3`).
		WithArgs(doctorID, day, day.AddDate(0, 0, 1)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "doctor_id", "client_id", "appointment_time", "status",
			"created_at", "updated_at", "deleted_at",
		}).AddRow(uuid.New(), doctorID, uuid.New(), day.Add(9*time.Hour), StatusScheduled, now, now, nil))

	// A mid-day timestamp must be truncated to the day bounds above
	items, err := repo.ListOccupyingByDoctorDate(context.Background(), doctorID, day.Add(13*time.Hour))
	if err != nil {
		t.Fatalf("ListOccupyingByDoctorDate: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("got %d appointments, want 1", len(items))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
