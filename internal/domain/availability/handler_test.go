package availability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medsched/medsched/internal/platform/auth"
)

func requestAs(c echo.Context, userID string, role auth.Role) echo.Context {
	ctx := c.Request().Context()
	ctx = context.WithValue(ctx, auth.UserIDKey, userID)
	ctx = context.WithValue(ctx, auth.RoleKey, role)
	c.SetRequest(c.Request().WithContext(ctx))
	return c
}

func TestCreateWindowHandler(t *testing.T) {
	repo := newMockWindowRepo()
	h := NewHandler(NewService(repo))
	e := echo.New()
	doctorID := uuid.New()

	body := `{"weekday":"MONDAY","start_minute":540,"end_minute":1020}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/doctors/:id/windows")
	c.SetParamNames("id")
	c.SetParamValues(doctorID.String())
	c = requestAs(c, doctorID.String(), auth.RoleDoctor)

	if err := h.CreateWindow(c); err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var w Window
	if err := json.Unmarshal(rec.Body.Bytes(), &w); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if w.DoctorID != doctorID {
		t.Errorf("doctor_id = %s, want %s", w.DoctorID, doctorID)
	}
	if w.Weekday != 1 {
		t.Errorf("weekday = %d, want 1", w.Weekday)
	}
}

func TestCreateWindowHandler_OtherDoctorForbidden(t *testing.T) {
	h := NewHandler(NewService(newMockWindowRepo()))
	e := echo.New()

	body := `{"weekday":"MONDAY","start_minute":540,"end_minute":1020}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/doctors/:id/windows")
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	c = requestAs(c, uuid.New().String(), auth.RoleDoctor)

	err := h.CreateWindow(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another doctor's schedule, got %v", err)
	}
}

func TestCreateWindowHandler_AdminMayManageAnyone(t *testing.T) {
	h := NewHandler(NewService(newMockWindowRepo()))
	e := echo.New()

	body := `{"weekday":"TUESDAY","start_minute":480,"end_minute":720}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/doctors/:id/windows")
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	c = requestAs(c, "admin-1", auth.RoleAdmin)

	if err := h.CreateWindow(c); err != nil {
		t.Fatalf("CreateWindow as admin: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
}

func TestListWindowsHandler(t *testing.T) {
	repo := newMockWindowRepo()
	h := NewHandler(NewService(repo))
	e := echo.New()
	doctorID := uuid.New()

	_ = repo.Create(context.Background(), &Window{
		DoctorID: doctorID, Weekday: 1, StartMinute: 540, EndMinute: 1020,
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/doctors/:id/windows")
	c.SetParamNames("id")
	c.SetParamValues(doctorID.String())

	if err := h.ListWindows(c); err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	var windows []Window
	if err := json.Unmarshal(rec.Body.Bytes(), &windows); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(windows) != 1 {
		t.Errorf("got %d windows, want 1", len(windows))
	}
}

func TestDeleteWindowHandler_NotFound(t *testing.T) {
	h := NewHandler(NewService(newMockWindowRepo()))
	e := echo.New()

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/windows/:id")
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	c = requestAs(c, "admin-1", auth.RoleAdmin)

	err := h.DeleteWindow(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}
