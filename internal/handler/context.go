package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"flyerhub/internal/auth"
	"flyerhub/internal/errors"
)

// TokenContextKey is where the JWT middleware stores the parsed token.
const TokenContextKey = "user"

// ClaimsFrom returns the claims of the bearer token presented with the
// request, or nil when the request carried none.
func ClaimsFrom(c echo.Context) *auth.Claims {
	token, ok := c.Get(TokenContextKey).(*jwt.Token)
	if !ok || token == nil {
		return nil
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// principalFrom returns the caller, or nil for an anonymous request. Anonymous
// requests only reach handlers when token enforcement is off.
func principalFrom(c echo.Context) *auth.Principal {
	claims := ClaimsFrom(c)
	if claims == nil {
		return nil
	}
	return claims.Principal()
}

func mapError(err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(message, code string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func forbidden() *echo.HTTPError {
	return mapError(errors.ErrForbidden)
}

func unauthorized(message string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}
