package appointment

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/meditrack/meditrack/internal/domain/patient"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"unknown patient", patient.ErrNotFound, http.StatusNotFound},
		{"missing start", ErrMissingStart, http.StatusUnprocessableEntity},
		{"invalid range", ErrInvalidTimeRange, http.StatusUnprocessableEntity},
		{"invalid status", ErrInvalidStatus, http.StatusUnprocessableEntity},
		{"overlap", ErrOverlapConflict, http.StatusBadRequest},
		{"state precondition", ErrReminderNotConfirmed, http.StatusBadRequest},
		{"mail failure", &NotificationError{Err: errors.New("smtp down")}, http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var httpErr *echo.HTTPError
			if !errors.As(mapError(tt.err), &httpErr) {
				t.Fatal("expected an echo.HTTPError")
			}
			if httpErr.Code != tt.code {
				t.Errorf("got status %d, want %d", httpErr.Code, tt.code)
			}
		})
	}
}
