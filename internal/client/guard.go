package client

import "errors"

// ErrRedirectToLogin is returned when a view is opened without a session of
// the right role. It only drives navigation; the API enforces access itself.
var ErrRedirectToLogin = errors.New("login required")

// Route names a top-level view.
type Route string

const (
	RouteLogin   Route = "/login"
	RouteAdmin   Route = "/admin"
	RouteCompany Route = "/company"
)

// RouteFor picks the view for an identity.
func RouteFor(id *Identity) Route {
	switch {
	case id == nil:
		return RouteLogin
	case id.Role == RoleAdmin:
		return RouteAdmin
	case id.Role == RoleCompany && id.CompanyID != nil:
		return RouteCompany
	default:
		return RouteLogin
	}
}

// Require returns the session state when its identity routes to want.
func Require(s *Session, want Route) (State, error) {
	state, ok := s.Current()
	if !ok || RouteFor(&state.Identity) != want {
		return State{}, ErrRedirectToLogin
	}
	return state, nil
}
