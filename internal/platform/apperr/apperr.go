package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for propagation and HTTP mapping. The scheduling
// core raises exactly three kinds: bad input (Validation), missing records
// (NotFound), and store/driver failures (Database).
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindDatabase
)

// Code identifies a specific failure within a kind. Codes are stable and
// safe to expose to API clients.
type Code string

const (
	CodeInvalidInput             Code = "invalid_input"
	CodeInvalidAppointmentTime   Code = "invalid_appointment_time"
	CodeSlotUnavailable          Code = "slot_unavailable"
	CodeNoChangeApplied          Code = "no_change_applied"
	CodeAppointmentInactive      Code = "appointment_inactive"
	CodeNoScheduleForDoctor      Code = "no_schedule_for_doctor"
	CodeDoctorNotAvailableOnDay  Code = "doctor_not_available_this_day"
	CodeAppointmentNotFound      Code = "appointment_not_found"
	CodeDoctorNotFound           Code = "doctor_not_found"
	CodeClientNotFound           Code = "client_not_found"
	CodeWindowNotFound           Code = "availability_window_not_found"
	CodeDatabase                 Code = "database_error"
)

// Error is the typed error carried across the booking core. Database errors
// always wrap the originating cause; Validation and NotFound usually do not.
type Error struct {
	Kind Kind
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a KindValidation error.
func Validation(code Code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Msg: msg}
}

// NotFound builds a KindNotFound error.
func NotFound(code Code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Msg: msg}
}

// Database wraps an unexpected store failure. The cause is preserved for
// logging and errors.Is/As inspection.
func Database(msg string, cause error) *Error {
	return &Error{Kind: KindDatabase, Code: CodeDatabase, Msg: msg, Err: cause}
}

// KindOf returns the kind of err, or KindUnknown for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf returns the code of err, or the empty code for untyped errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// HTTPStatus maps an error to the status code the API layer should return.
// Untyped errors are treated as internal failures.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
