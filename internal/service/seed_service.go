package service

import (
	"context"
	"fmt"

	"flyerhub/internal/auth"
	"flyerhub/internal/model"
	"flyerhub/internal/repository"
)

// SeedUser is a user row of the initial data set.
type SeedUser struct {
	Email    string
	Password string
	Role     model.Role
	// CompanyIndex points into SeedData.Companies; ignored for admins.
	CompanyIndex int
}

// SeedData is the initial data set written on first start.
type SeedData struct {
	Companies []string
	Users     []SeedUser
}

// DefaultSeed returns the demo companies and accounts.
func DefaultSeed() SeedData {
	return SeedData{
		Companies: []string{"Company A", "Company B", "Company C"},
		Users: []SeedUser{
			{Email: "admin@flyer.com", Password: "admin123", Role: model.RoleAdmin},
			{Email: "companyA@flyer.com", Password: "company123", Role: model.RoleCompany, CompanyIndex: 0},
			{Email: "companyB@flyer.com", Password: "company123", Role: model.RoleCompany, CompanyIndex: 1},
			{Email: "companyC@flyer.com", Password: "company123", Role: model.RoleCompany, CompanyIndex: 2},
		},
	}
}

// SeedService writes the initial data set.
type SeedService interface {
	// SeedIfEmpty writes data when no company exists and reports whether it did.
	SeedIfEmpty(ctx context.Context, data SeedData) (bool, error)
}

type seedService struct {
	tx        repository.Transactor
	hasher    auth.PasswordHasher
	companies CompanyService
}

// NewSeedService creates a seed service.
func NewSeedService(tx repository.Transactor, hasher auth.PasswordHasher, companies CompanyService) SeedService {
	return &seedService{tx: tx, hasher: hasher, companies: companies}
}

func (s *seedService) SeedIfEmpty(ctx context.Context, data SeedData) (bool, error) {
	seeded := false
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		n, err := repos.Companies.Count(ctx)
		if err != nil {
			return fmt.Errorf("count companies: %w", err)
		}
		if n > 0 {
			return nil
		}

		companies := make([]model.Company, len(data.Companies))
		for i, name := range data.Companies {
			companies[i] = model.Company{Name: name}
			if err := repos.Companies.Create(ctx, &companies[i]); err != nil {
				return fmt.Errorf("create company %s: %w", name, err)
			}
		}

		for _, su := range data.Users {
			stored, err := s.hasher.Hash(su.Password)
			if err != nil {
				return err
			}
			user := model.User{Email: su.Email, Password: stored, Role: su.Role}
			if su.Role == model.RoleCompany {
				if su.CompanyIndex < 0 || su.CompanyIndex >= len(companies) {
					return fmt.Errorf("seed user %s: company index %d out of range", su.Email, su.CompanyIndex)
				}
				user.CompanyID = &companies[su.CompanyIndex].ID
			}
			if err := repos.Users.Create(ctx, &user); err != nil {
				return fmt.Errorf("create user %s: %w", su.Email, err)
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if seeded {
		s.companies.Invalidate(ctx)
	}
	return seeded, nil
}
