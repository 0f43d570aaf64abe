package availability

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medsched/medsched/internal/platform/apperr"
	"github.com/medsched/medsched/internal/platform/db"
)

type windowRepoPG struct{ pool db.Querier }

func NewWindowRepoPG(pool db.Querier) WindowRepository { return &windowRepoPG{pool: pool} }

func (r *windowRepoPG) conn(ctx context.Context) db.Querier { return db.Conn(ctx, r.pool) }

const windowCols = `id, doctor_id, weekday, start_minute, end_minute, created_at, updated_at`

func scanWindow(row pgx.Row) (*Window, error) {
	var w Window
	err := row.Scan(&w.ID, &w.DoctorID, &w.Weekday, &w.StartMinute, &w.EndMinute,
		&w.CreatedAt, &w.UpdatedAt)
	return &w, err
}

func (r *windowRepoPG) Create(ctx context.Context, w *Window) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO availability_windows (id, doctor_id, weekday, start_minute, end_minute)
		VALUES ($1, $2, $3, $4, $5)`,
		w.ID, w.DoctorID, int(w.Weekday), w.StartMinute, w.EndMinute)
	if err != nil {
		return apperr.Database("insert availability window", err)
	}
	return nil
}

func (r *windowRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Window, error) {
	w, err := scanWindow(r.conn(ctx).QueryRow(ctx, `
		SELECT `+windowCols+` FROM availability_windows WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeWindowNotFound, "availability window not found")
		}
		return nil, apperr.Database("select availability window", err)
	}
	return w, nil
}

func (r *windowRepoPG) Update(ctx context.Context, w *Window) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE availability_windows
		SET weekday = $2, start_minute = $3, end_minute = $4, updated_at = NOW()
		WHERE id = $1`,
		w.ID, int(w.Weekday), w.StartMinute, w.EndMinute)
	if err != nil {
		return apperr.Database("update availability window", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(apperr.CodeWindowNotFound, "availability window not found")
	}
	return nil
}

func (r *windowRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM availability_windows WHERE id = $1`, id)
	if err != nil {
		return apperr.Database("delete availability window", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(apperr.CodeWindowNotFound, "availability window not found")
	}
	return nil
}

func (r *windowRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Window, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+windowCols+` FROM availability_windows
		WHERE doctor_id = $1
		ORDER BY weekday, start_minute`, doctorID)
	if err != nil {
		return nil, apperr.Database("list availability windows", err)
	}
	defer rows.Close()
	var items []*Window
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, apperr.Database("scan availability window", err)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Database("list availability windows", err)
	}
	return items, nil
}
