package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medsched/medsched/internal/platform/apperr"
	"github.com/medsched/medsched/internal/platform/db"
)

type appointmentRepoPG struct{ pool db.Querier }

func NewAppointmentRepoPG(pool db.Querier) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) db.Querier { return db.Conn(ctx, r.pool) }

const apptCols = `id, doctor_id, client_id, appointment_time, status, created_at, updated_at, deleted_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.DoctorID, &a.ClientID, &a.AppointmentTime, &a.Status,
		&a.CreatedAt, &a.UpdatedAt, &a.DeletedAt)
	return &a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (id, doctor_id, client_id, appointment_time, status)
		VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.DoctorID, a.ClientID, a.AppointmentTime, a.Status)
	if err != nil {
		return apperr.Database("insert appointment", err)
	}
	return nil
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.conn(ctx).QueryRow(ctx, `
		SELECT `+apptCols+` FROM appointments WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeAppointmentNotFound, "appointment not found")
		}
		return nil, apperr.Database("select appointment", err)
	}
	return a, nil
}

func (r *appointmentRepoPG) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.conn(ctx).QueryRow(ctx, `
		SELECT `+apptCols+` FROM appointments
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeAppointmentNotFound, "appointment not found")
		}
		return nil, apperr.Database("select appointment for update", err)
	}
	return a, nil
}

func (r *appointmentRepoPG) UpdateTime(ctx context.Context, id uuid.UUID, t time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET appointment_time = $2, updated_at = NOW()
		WHERE id = $1
		  AND appointment_time IS DISTINCT FROM $2
		  AND status = 'SCHEDULED'
		  AND deleted_at IS NULL`,
		id, t)
	if err != nil {
		return 0, apperr.Database("update appointment time", err)
	}
	return tag.RowsAffected(), nil
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET status = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		id, status)
	if err != nil {
		return apperr.Database("update appointment status", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(apperr.CodeAppointmentNotFound, "appointment not found")
	}
	return nil
}

func (r *appointmentRepoPG) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return apperr.Database("soft delete appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(apperr.CodeAppointmentNotFound, "appointment not found")
	}
	return nil
}

func (r *appointmentRepoPG) HardDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return apperr.Database("hard delete appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(apperr.CodeAppointmentNotFound, "appointment not found")
	}
	return nil
}

func (r *appointmentRepoPG) LockDoctorCalendar(ctx context.Context, doctorID uuid.UUID) error {
	// The doctor row is the serialization point for bookings: locking it
	// blocks concurrent guard checks for this doctor even when the guard
	// window contains no appointment rows yet.
	var id uuid.UUID
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id FROM doctors WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE`, doctorID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(apperr.CodeDoctorNotFound, "doctor not found")
		}
		return apperr.Database("lock doctor calendar", err)
	}
	return nil
}

func (r *appointmentRepoPG) CountOccupyingNear(ctx context.Context, doctorID uuid.UUID, t time.Time, exclude uuid.UUID) (int, error) {
	// Strictly-within comparison: rows exactly 20 minutes away do not
	// conflict. Matched rows are locked until the transaction ends.
	var count int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM (
			SELECT id FROM appointments
			WHERE doctor_id = $1
			  AND status <> 'CANCELED'
			  AND deleted_at IS NULL
			  AND appointment_time > $2::timestamptz - interval '20 minutes'
			  AND appointment_time < $2::timestamptz + interval '20 minutes'
			  AND id <> $3
			FOR UPDATE
		) conflicts`,
		doctorID, t, exclude).Scan(&count)
	if err != nil {
		return 0, apperr.Database("count conflicting appointments", err)
	}
	return count, nil
}

func (r *appointmentRepoPG) ListOccupyingByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Appointment, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointments
		WHERE doctor_id = $1
		  AND status <> 'CANCELED'
		  AND deleted_at IS NULL
		  AND appointment_time >= $2
		  AND appointment_time < $3
		ORDER BY appointment_time`,
		doctorID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, apperr.Database("list occupying appointments", err)
	}
	return collectAppointments(rows)
}

func (r *appointmentRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `doctor_id`, doctorID, limit, offset)
}

func (r *appointmentRepoPG) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `client_id`, clientID, limit, offset)
}

func (r *appointmentRepoPG) list(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE `+col+` = $1 AND deleted_at IS NULL`, id).Scan(&total); err != nil {
		return nil, 0, apperr.Database("count appointments", err)
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointments
		WHERE `+col+` = $1 AND deleted_at IS NULL
		ORDER BY appointment_time DESC LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, apperr.Database("list appointments", err)
	}
	items, err := collectAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func collectAppointments(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, apperr.Database("scan appointment", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Database("iterate appointments", err)
	}
	return items, nil
}
