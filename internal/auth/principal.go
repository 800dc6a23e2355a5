package auth

import "flyerhub/internal/model"

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    uint
	Role      model.Role
	CompanyID *uint
}

// IsAdmin reports whether the caller has the Admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == model.RoleAdmin
}

// CanUpload reports whether the caller may upload flyers.
func (p *Principal) CanUpload() bool {
	return p.IsAdmin()
}

// CanAccessCompany reports whether the caller may read or delete flyers of
// the given company.
func (p *Principal) CanAccessCompany(companyID uint) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	return p.Role == model.RoleCompany && p.CompanyID != nil && *p.CompanyID == companyID
}
