package client

import "time"

// Roles as reported by the API.
const (
	RoleAdmin   = "Admin"
	RoleCompany = "Company"
)

// Identity is the logged-in user.
type Identity struct {
	ID          uint    `json:"id" yaml:"id"`
	Email       string  `json:"email" yaml:"email"`
	Role        string  `json:"role" yaml:"role"`
	CompanyID   *uint   `json:"companyId" yaml:"company_id,omitempty"`
	CompanyName *string `json:"companyName" yaml:"company_name,omitempty"`
}

// IsAdmin reports whether the identity has the Admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Company is a tenant.
type Company struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Flyer is an uploaded image with its metadata.
type Flyer struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	ImagePath string    `json:"imagePath"`
	CompanyID uint      `json:"companyId"`
	CreatedAt time.Time `json:"createdAt"`
}

// File is downloaded flyer content.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type loginResponse struct {
	Identity
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
