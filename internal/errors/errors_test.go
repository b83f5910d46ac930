package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"Validation is 400", NewValidationError("bad upload", nil), http.StatusBadRequest},
		{"Plant not detected is 400", NewPlantNotDetectedError("no leaf"), http.StatusBadRequest},
		{"Label store is 500", NewLabelStoreError("missing file", nil), http.StatusInternalServerError},
		{"Unknown class is 500", NewUnknownClassError("index 9", nil), http.StatusInternalServerError},
		{"Advisory is 500", NewAdvisoryError("timeout", nil), http.StatusInternalServerError},
		{"Internal is 500", NewInternalError("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetStatusCode(tt.err); got != tt.want {
				t.Errorf("GetStatusCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetStatusCode_PlainError(t *testing.T) {
	if got := GetStatusCode(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("Plain errors should map to 500, got %d", got)
	}
}

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewAdvisoryError("treatment lookup failed", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected Unwrap to expose the cause")
	}
	msg := err.Error()
	if msg != "advisory: treatment lookup failed (caused by: connection refused)" {
		t.Errorf("Unexpected message: %q", msg)
	}
}

func TestIsType(t *testing.T) {
	err := NewPlantNotDetectedError("no leaf")
	if !IsType(err, ErrorTypePlantNotDetected) {
		t.Error("IsType should match the error's own type")
	}
	if IsType(err, ErrorTypeAdvisory) {
		t.Error("IsType should not match a different type")
	}
	if IsType(errors.New("plain"), ErrorTypeInternal) {
		t.Error("Plain errors have no type")
	}
}
