package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrFlyerNotFound is returned when a flyer record does not exist.
	ErrFlyerNotFound = errors.New("flyer not found")
	// ErrFileNotFound is returned when a flyer record exists but its image file is gone.
	ErrFileNotFound = errors.New("file not found")
	// ErrEmptyFile is returned when an upload carries no payload.
	ErrEmptyFile = errors.New("no file uploaded")
	// ErrInvalidExtension is returned for uploads that are not PNG or JPG.
	ErrInvalidExtension = errors.New("only PNG and JPG files are allowed")
	// ErrTitleRequired is returned when an upload has a blank title.
	ErrTitleRequired = errors.New("title is required")
	// ErrCompanyNotFound is returned when a company reference does not resolve.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrInvalidPeriod is returned for a malformed year/month filter.
	ErrInvalidPeriod = errors.New("year and month must be given together, month in 1-12")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrForbidden is returned when the caller's role or company does not allow the action.
	ErrForbidden = errors.New("forbidden")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var mapping = []struct {
	err    error
	status int
	code   string
}{
	{ErrFlyerNotFound, http.StatusNotFound, "FLYER_NOT_FOUND"},
	{ErrFileNotFound, http.StatusNotFound, "FILE_NOT_FOUND"},
	{ErrEmptyFile, http.StatusBadRequest, "EMPTY_FILE"},
	{ErrInvalidExtension, http.StatusBadRequest, "INVALID_EXTENSION"},
	{ErrTitleRequired, http.StatusBadRequest, "TITLE_REQUIRED"},
	{ErrCompanyNotFound, http.StatusBadRequest, "COMPANY_NOT_FOUND"},
	{ErrInvalidPeriod, http.StatusBadRequest, "INVALID_PERIOD"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
}

// MapErrorToHTTP maps domain errors, including wrapped ones, to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mapping {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
