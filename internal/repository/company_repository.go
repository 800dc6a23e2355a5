package repository

import (
	"context"

	"gorm.io/gorm"

	"flyerhub/internal/model"
)

// CompanyRepository defines company persistence operations.
type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	List(ctx context.Context) ([]model.Company, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new company repository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

// Create inserts a company.
func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

// List returns all companies in storage order.
func (r *companyRepository) List(ctx context.Context) ([]model.Company, error) {
	companies := []model.Company{}
	if err := r.db.WithContext(ctx).Order("id").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// Exists reports whether a company with id is stored.
func (r *companyRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Company{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the number of companies.
func (r *companyRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Company{}).Count(&n).Error
	return n, err
}
