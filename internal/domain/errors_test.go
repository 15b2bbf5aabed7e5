package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		status   int
	}{
		{"not found", &NotFoundError{Message: "document x"}, ErrNotFound, http.StatusNotFound},
		{"validation", &ValidationError{Message: "name required"}, ErrValidation, http.StatusBadRequest},
		{"unauthorized", &UnauthorizedError{Message: "no token"}, ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", &ForbiddenError{Message: "missing role"}, ErrForbidden, http.StatusForbidden},
		{"conflict", &ConflictError{Message: "stale", ResourceType: "document"}, ErrConflict, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("resolve: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))

			var httpErr HTTPError
			assert.True(t, errors.As(wrapped, &httpErr))
			assert.Equal(t, tt.status, httpErr.StatusCode())
			assert.Equal(t, tt.status, StatusCode(wrapped))
		})
	}
}

func TestStatusCode_Sentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: invalid id", ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("document x: %w", ErrNotFound), http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("stale: %w", ErrConflict), http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusCode(tt.err), tt.err.Error())
	}
}
