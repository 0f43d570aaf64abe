package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/medsched/medsched/internal/platform/apperr"
)

type Service struct {
	doctors DoctorRepository
	clients ClientRepository
}

func NewService(doctors DoctorRepository, clients ClientRepository) *Service {
	return &Service{doctors: doctors, clients: clients}
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if err := validateDoctor(d); err != nil {
		return err
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if err := validateDoctor(d); err != nil {
		return err
	}
	return s.doctors.Update(ctx, d)
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return s.doctors.SoftDelete(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}

func validateDoctor(d *Doctor) error {
	if strings.TrimSpace(d.FullName) == "" {
		return apperr.Validation(apperr.CodeInvalidInput, "full_name is required")
	}
	if d.Email != "" && !strings.Contains(d.Email, "@") {
		return apperr.Validation(apperr.CodeInvalidInput, "email is malformed")
	}
	return nil
}

// -- Client --

func (s *Service) CreateClient(ctx context.Context, c *Client) error {
	if err := validateClient(c); err != nil {
		return err
	}
	return s.clients.Create(ctx, c)
}

func (s *Service) GetClient(ctx context.Context, id uuid.UUID) (*Client, error) {
	return s.clients.GetByID(ctx, id)
}

func (s *Service) UpdateClient(ctx context.Context, c *Client) error {
	if err := validateClient(c); err != nil {
		return err
	}
	return s.clients.Update(ctx, c)
}

func (s *Service) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return s.clients.SoftDelete(ctx, id)
}

func (s *Service) ListClients(ctx context.Context, limit, offset int) ([]*Client, int, error) {
	return s.clients.List(ctx, limit, offset)
}

func validateClient(c *Client) error {
	if strings.TrimSpace(c.FullName) == "" {
		return apperr.Validation(apperr.CodeInvalidInput, "full_name is required")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return apperr.Validation(apperr.CodeInvalidInput, "email is malformed")
	}
	return nil
}
