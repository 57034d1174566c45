package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorCode_HTTPStatus(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationInvalidJSON, http.StatusBadRequest},
		{ErrCodeValidationEmptyPayload, http.StatusBadRequest},
		{ErrCodeValidationMissingField, http.StatusBadRequest},
		{ErrCodeValidationEmptyCountry, http.StatusBadRequest},
		{ErrCodeValidationNotANumber, http.StatusBadRequest},
		{ErrCodeValidationRateOutOfRange, http.StatusBadRequest},
		{ErrCodeValidationUnknownCountry, http.StatusBadRequest},
		{ErrCodeValidationBatchSize, http.StatusBadRequest},
		{ErrCodeAuthTokenMissing, http.StatusUnauthorized},
		{ErrCodeAuthTokenInvalid, http.StatusUnauthorized},
		{ErrCodeAuthTokenExpired, http.StatusUnauthorized},
		{ErrCodeAuthNotConfigured, http.StatusServiceUnavailable},
		{ErrCodeNotFoundCountry, http.StatusNotFound},
		{ErrCodeReadinessModelUnavailable, http.StatusServiceUnavailable},
		{ErrCodeReadinessDataUnavailable, http.StatusServiceUnavailable},
		{ErrCodeInternalSimulation, http.StatusInternalServerError},
		{ErrCodeInternalUnexpected, http.StatusInternalServerError},
		{ErrorCode("something_unknown"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Errorf("%s.HTTPStatus() = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("root cause")
	appErr := NewAppError(ErrCodeInternalSimulation, "simulation failed", inner)

	if appErr.Error() != "internal_simulation_error: simulation failed" {
		t.Errorf("Error() = %q", appErr.Error())
	}
	if !errors.Is(appErr, inner) {
		t.Error("errors.Is should reach the wrapped cause")
	}

	wrapped := fmt.Errorf("outer: %w", appErr)
	var target *AppError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should find the AppError through wrapping")
	}
	if target.Code != ErrCodeInternalSimulation {
		t.Errorf("code = %s", target.Code)
	}
}

func TestAppError_WithDetails(t *testing.T) {
	base := NewAppErrorWithDetails(ErrCodeValidationNotANumber, "bad value", nil,
		map[string]any{"field": "Exports_Growth_Rate"})

	enriched := base.WithDetails(map[string]any{"example": "payload"})

	if enriched.Details["field"] != "Exports_Growth_Rate" {
		t.Error("original details lost")
	}
	if enriched.Details["example"] != "payload" {
		t.Error("new details missing")
	}
	// The original is untouched.
	if _, ok := base.Details["example"]; ok {
		t.Error("WithDetails must not mutate the receiver")
	}
}

func TestAppError_WithDetailsOverride(t *testing.T) {
	base := NewAppErrorWithDetails(ErrCodeValidationNotANumber, "bad value", nil,
		map[string]any{"field": "old"})
	enriched := base.WithDetails(map[string]any{"field": "new"})
	if enriched.Details["field"] != "new" {
		t.Errorf("merged field = %v, want override", enriched.Details["field"])
	}
}
