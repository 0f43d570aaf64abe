package identity

import (
	"time"

	"github.com/google/uuid"
)

// Doctor maps to the doctors table. Deletion is soft: a deleted doctor keeps
// its row so historical appointments stay resolvable.
type Doctor struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	FullName  string     `db:"full_name" json:"full_name"`
	Specialty string     `db:"specialty" json:"specialty"`
	Email     string     `db:"email" json:"email"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// Active reports whether the doctor can take new appointments.
func (d *Doctor) Active() bool { return d.DeletedAt == nil }

// Client maps to the clients table.
type Client struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	FullName  string     `db:"full_name" json:"full_name"`
	Email     string     `db:"email" json:"email"`
	Phone     string     `db:"phone" json:"phone"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// Active reports whether the client can book appointments.
func (c *Client) Active() bool { return c.DeletedAt == nil }
