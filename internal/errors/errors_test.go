package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"flyer missing", ErrFlyerNotFound, http.StatusNotFound, "FLYER_NOT_FOUND"},
		{"file missing", ErrFileNotFound, http.StatusNotFound, "FILE_NOT_FOUND"},
		{"wrapped extension", fmt.Errorf("upload: %w", ErrInvalidExtension), http.StatusBadRequest, "INVALID_EXTENSION"},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
			assert.Equal(t, httpErr.Message, httpErr.ToErrorResponse().Error)
		})
	}
}

func TestMapErrorToHTTP_HidesInternalDetail(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("dial tcp 10.0.0.4:3306: connection refused"))
	assert.Equal(t, "internal server error", httpErr.Message)
}
