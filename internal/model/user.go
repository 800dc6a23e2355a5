package model

import (
	"errors"

	"gorm.io/gorm"
)

// Role is the enumerated access level of a user.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleCompany Role = "Company"
)

var (
	// ErrCompanyRequired is returned when a company-role user has no company.
	ErrCompanyRequired = errors.New("company role requires a company")
	// ErrAdminHasCompany is returned when an admin user references a company.
	ErrAdminHasCompany = errors.New("admin must not reference a company")
	// ErrUnknownRole is returned for roles outside Admin and Company.
	ErrUnknownRole = errors.New("unknown role")
)

// User is a login identity. Email is indexed but not unique.
type User struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	Email     string   `json:"email" gorm:"size:255;not null;index"`
	Password  string   `json:"-" gorm:"size:255;not null"` // hashed or plain depending on PASSWORD_SCHEME
	Role      Role     `json:"role" gorm:"size:20;not null"`
	CompanyID *uint    `json:"companyId" gorm:"index"`
	Company   *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

// Validate checks the role/company invariant.
func (u *User) Validate() error {
	switch u.Role {
	case RoleAdmin:
		if u.CompanyID != nil {
			return ErrAdminHasCompany
		}
	case RoleCompany:
		if u.CompanyID == nil {
			return ErrCompanyRequired
		}
	default:
		return ErrUnknownRole
	}
	return nil
}

// BeforeSave rejects rows that break the role/company invariant.
func (u *User) BeforeSave(tx *gorm.DB) error {
	return u.Validate()
}

// CompanyName returns the joined company name, if loaded.
func (u *User) CompanyName() *string {
	if u.Company == nil {
		return nil
	}
	name := u.Company.Name
	return &name
}
