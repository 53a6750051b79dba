package testutil

import (
	"errors"
	"strings"
	"testing"

	apperrors "cashtrackr/internal/errors"
)

// AssertAppError fails the test unless err is an *AppError with the given
// code, and returns it for further checks.
func AssertAppError(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError %q, got nil", code)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError %q, got %T: %v", code, err, err)
	}
	if appErr.Code != code {
		t.Errorf("expected error code %q, got %q (message: %s)", code, appErr.Code, appErr.Message)
	}
	return appErr
}

// AssertWrappedCause checks that err is an AppError with the given code
// carrying an internal cause that stays out of the client message.
func AssertWrappedCause(t *testing.T, err error, code string) {
	t.Helper()

	appErr := AssertAppError(t, err, code)
	if appErr.Internal == nil {
		t.Fatalf("expected %q to wrap an internal cause", code)
	}
	if strings.Contains(appErr.Message, appErr.Internal.Error()) {
		t.Errorf("client message %q exposes the cause %q", appErr.Message, appErr.Internal)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
