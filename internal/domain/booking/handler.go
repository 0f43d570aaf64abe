package booking

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medsched/medsched/internal/platform/apperr"
	"github.com/medsched/medsched/internal/platform/auth"
	"github.com/medsched/medsched/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	authed := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RoleClient))
	authed.GET("/doctors/:id/slots", h.OpenSlots)
	authed.GET("/appointments", h.ListAppointments)
	authed.GET("/appointments/:id", h.GetAppointment)

	book := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleClient))
	book.POST("/appointments", h.Book)
	book.POST("/appointments/:id/reschedule", h.Reschedule)
	book.POST("/appointments/:id/cancel", h.Cancel)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/appointments/:id/complete", h.Complete)
	admin.DELETE("/appointments/:id", h.Delete)
}

func toHTTP(err error) error {
	return echo.NewHTTPError(apperr.HTTPStatus(err), map[string]interface{}{
		"code":    apperr.CodeOf(err),
		"message": err.Error(),
	})
}

type bookRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id"`
	ClientID        uuid.UUID `json:"client_id"`
	AppointmentTime time.Time `json:"appointment_time"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	clientID := req.ClientID
	if auth.RoleFromContext(ctx) == auth.RoleClient {
		// Clients always book for themselves
		id, err := uuid.Parse(auth.UserIDFromContext(ctx))
		if err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "caller is not a registered client")
		}
		clientID = id
	}

	appt, err := h.svc.Book(ctx, clientID, req.DoctorID, req.AppointmentTime)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusCreated, appt)
}

type rescheduleRequest struct {
	AppointmentTime time.Time `json:"appointment_time"`
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.authorizeOwner(c, id); err != nil {
		return err
	}

	appt, err := h.svc.Reschedule(c.Request().Context(), id, req.AppointmentTime)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.authorizeOwner(c, id); err != nil {
		return err
	}
	if err := h.svc.Cancel(c.Request().Context(), id); err != nil {
		return toHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Complete(c.Request().Context(), id); err != nil {
		return toHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete soft-deletes by default; ?hard=true removes the row permanently.
func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if c.QueryParam("hard") == "true" {
		if err := h.svc.HardDelete(c.Request().Context(), id); err != nil {
			return toHTTP(err)
		}
	} else {
		if err := h.svc.SoftDelete(c.Request().Context(), id); err != nil {
			return toHTTP(err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	appt, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return toHTTP(err)
	}
	if !mayView(c, appt) {
		return echo.NewHTTPError(http.StatusForbidden, "not a participant of this appointment")
	}
	return c.JSON(http.StatusOK, appt)
}

// ListAppointments serves the caller's own appointments; admins may filter
// by doctor_id or client_id and see anything.
func (h *Handler) ListAppointments(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	var (
		items []*Appointment
		total int
		err   error
	)
	switch auth.RoleFromContext(ctx) {
	case auth.RoleDoctor:
		doctorID, perr := uuid.Parse(auth.UserIDFromContext(ctx))
		if perr != nil {
			return echo.NewHTTPError(http.StatusForbidden, "caller is not a registered doctor")
		}
		items, total, err = h.svc.ListByDoctor(ctx, doctorID, pg.Limit, pg.Offset)
	case auth.RoleClient:
		clientID, perr := uuid.Parse(auth.UserIDFromContext(ctx))
		if perr != nil {
			return echo.NewHTTPError(http.StatusForbidden, "caller is not a registered client")
		}
		items, total, err = h.svc.ListByClient(ctx, clientID, pg.Limit, pg.Offset)
	case auth.RoleAdmin:
		if v := c.QueryParam("doctor_id"); v != "" {
			doctorID, perr := uuid.Parse(v)
			if perr != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
			}
			items, total, err = h.svc.ListByDoctor(ctx, doctorID, pg.Limit, pg.Offset)
		} else if v := c.QueryParam("client_id"); v != "" {
			clientID, perr := uuid.Parse(v)
			if perr != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid client_id")
			}
			items, total, err = h.svc.ListByClient(ctx, clientID, pg.Limit, pg.Offset)
		} else {
			return echo.NewHTTPError(http.StatusBadRequest, "doctor_id or client_id is required")
		}
	default:
		return echo.NewHTTPError(http.StatusForbidden, "unknown role")
	}
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// OpenSlots lists the doctor's free slots for ?date=YYYY-MM-DD.
func (h *Handler) OpenSlots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	slots, err := h.svc.OpenSlots(c.Request().Context(), doctorID, date)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"doctor_id": doctorID,
		"date":      date.Format("2006-01-02"),
		"slots":     slots,
	})
}

// authorizeOwner allows admins and the appointment's owning client.
func (h *Handler) authorizeOwner(c echo.Context, apptID uuid.UUID) error {
	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) == auth.RoleAdmin {
		return nil
	}
	appt, err := h.svc.Get(ctx, apptID)
	if err != nil {
		return toHTTP(err)
	}
	if appt.ClientID.String() != auth.UserIDFromContext(ctx) {
		return echo.NewHTTPError(http.StatusForbidden, "clients may only modify their own appointments")
	}
	return nil
}

func mayView(c echo.Context, appt *Appointment) bool {
	ctx := c.Request().Context()
	switch auth.RoleFromContext(ctx) {
	case auth.RoleAdmin:
		return true
	case auth.RoleDoctor:
		return appt.DoctorID.String() == auth.UserIDFromContext(ctx)
	case auth.RoleClient:
		return appt.ClientID.String() == auth.UserIDFromContext(ctx)
	}
	return false
}
