package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medsched/medsched/internal/platform/apperr"
	"github.com/medsched/medsched/internal/platform/db"
)

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool db.Querier }

func NewDoctorRepoPG(pool db.Querier) DoctorRepository { return &doctorRepoPG{pool: pool} }

func (r *doctorRepoPG) conn(ctx context.Context) db.Querier { return db.Conn(ctx, r.pool) }

const doctorCols = `id, full_name, specialty, email, created_at, updated_at, deleted_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.FullName, &d.Specialty, &d.Email,
		&d.CreatedAt, &d.UpdatedAt, &d.DeletedAt)
	return &d, err
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctors (id, full_name, specialty, email)
		VALUES ($1, $2, $3, $4)`,
		d.ID, d.FullName, d.Specialty, d.Email)
	if err != nil {
		return apperr.Database("insert doctor", err)
	}
	return nil
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx, `
		SELECT `+doctorCols+` FROM doctors WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeDoctorNotFound, "doctor not found")
		}
		return nil, apperr.Database("select doctor", err)
	}
	return d, nil
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctors SET full_name = $2, specialty = $3, email = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		d.ID, d.FullName, d.Specialty, d.Email)
	if err != nil {
		return apperr.Database("update doctor", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(apperr.CodeDoctorNotFound, "doctor not found")
	}
	return nil
}

func (r *doctorRepoPG) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctors SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return apperr.Database("soft delete doctor", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(apperr.CodeDoctorNotFound, "doctor not found")
	}
	return nil
}

func (r *doctorRepoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM doctors WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, apperr.Database("count doctors", err)
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+doctorCols+` FROM doctors WHERE deleted_at IS NULL
		ORDER BY full_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, apperr.Database("list doctors", err)
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, apperr.Database("scan doctor", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Database("list doctors", err)
	}
	return items, total, nil
}

// =========== Client Repository ===========

type clientRepoPG struct{ pool db.Querier }

func NewClientRepoPG(pool db.Querier) ClientRepository { return &clientRepoPG{pool: pool} }

func (r *clientRepoPG) conn(ctx context.Context) db.Querier { return db.Conn(ctx, r.pool) }

const clientCols = `id, full_name, email, phone, created_at, updated_at, deleted_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	return &c, err
}

func (r *clientRepoPG) Create(ctx context.Context, c *Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO clients (id, full_name, email, phone)
		VALUES ($1, $2, $3, $4)`,
		c.ID, c.FullName, c.Email, c.Phone)
	if err != nil {
		return apperr.Database("insert client", err)
	}
	return nil
}

func (r *clientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	c, err := scanClient(r.conn(ctx).QueryRow(ctx, `
		SELECT `+clientCols+` FROM clients WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeClientNotFound, "client not found")
		}
		return nil, apperr.Database("select client", err)
	}
	return c, nil
}

func (r *clientRepoPG) Update(ctx context.Context, c *Client) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE clients SET full_name = $2, email = $3, phone = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		c.ID, c.FullName, c.Email, c.Phone)
	if err != nil {
		return apperr.Database("update client", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(apperr.CodeClientNotFound, "client not found")
	}
	return nil
}

func (r *clientRepoPG) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE clients SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return apperr.Database("soft delete client", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(apperr.CodeClientNotFound, "client not found")
	}
	return nil
}

func (r *clientRepoPG) List(ctx context.Context, limit, offset int) ([]*Client, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM clients WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, apperr.Database("count clients", err)
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+clientCols+` FROM clients WHERE deleted_at IS NULL
		ORDER BY full_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, apperr.Database("list clients", err)
	}
	defer rows.Close()
	var items []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, apperr.Database("scan client", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Database("list clients", err)
	}
	return items, total, nil
}
