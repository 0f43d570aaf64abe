package availability

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medsched/medsched/internal/platform/apperr"
	"github.com/medsched/medsched/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RoleClient))
	read.GET("/doctors/:id/windows", h.ListWindows)

	// Doctors manage their own schedule; admin manages any
	write := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor))
	write.POST("/doctors/:id/windows", h.CreateWindow)
	write.PUT("/windows/:id", h.UpdateWindow)
	write.DELETE("/windows/:id", h.DeleteWindow)
}

func toHTTP(err error) error {
	return echo.NewHTTPError(apperr.HTTPStatus(err), map[string]interface{}{
		"code":    apperr.CodeOf(err),
		"message": err.Error(),
	})
}

// canManage reports whether the caller may change the given doctor's
// schedule. Doctors are restricted to their own.
func canManage(c echo.Context, doctorID uuid.UUID) bool {
	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) == auth.RoleAdmin {
		return true
	}
	return auth.UserIDFromContext(ctx) == doctorID.String()
}

func (h *Handler) CreateWindow(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	if !canManage(c, doctorID) {
		return echo.NewHTTPError(http.StatusForbidden, "doctors may only manage their own schedule")
	}

	var w Window
	if err := c.Bind(&w); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	w.DoctorID = doctorID
	if err := h.svc.CreateWindow(c.Request().Context(), &w); err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *Handler) ListWindows(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	windows, err := h.svc.WindowsForDoctor(c.Request().Context(), doctorID)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, windows)
}

func (h *Handler) UpdateWindow(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	existing, err := h.svc.GetWindow(c.Request().Context(), id)
	if err != nil {
		return toHTTP(err)
	}
	if !canManage(c, existing.DoctorID) {
		return echo.NewHTTPError(http.StatusForbidden, "doctors may only manage their own schedule")
	}

	var w Window
	if err := c.Bind(&w); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	w.ID = id
	w.DoctorID = existing.DoctorID
	if err := h.svc.UpdateWindow(c.Request().Context(), &w); err != nil {
		return toHTTP(err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) DeleteWindow(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	existing, err := h.svc.GetWindow(c.Request().Context(), id)
	if err != nil {
		return toHTTP(err)
	}
	if !canManage(c, existing.DoctorID) {
		return echo.NewHTTPError(http.StatusForbidden, "doctors may only manage their own schedule")
	}
	if err := h.svc.DeleteWindow(c.Request().Context(), id); err != nil {
		return toHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
