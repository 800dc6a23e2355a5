package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"flyerhub/internal/model"
)

// FlyerRepository defines flyer persistence operations.
type FlyerRepository interface {
	Create(ctx context.Context, flyer *model.Flyer) error
	FindByID(ctx context.Context, id uint) (*model.Flyer, error)
	// ListByCompany returns flyers newest first. A non-nil window restricts
	// results to from <= created_at < to.
	ListByCompany(ctx context.Context, companyID uint, window *TimeWindow) ([]model.Flyer, error)
	Delete(ctx context.Context, id uint) error
}

// TimeWindow is a half-open creation time range.
type TimeWindow struct {
	From time.Time
	To   time.Time
}

type flyerRepository struct {
	db *gorm.DB
}

// NewFlyerRepository creates a new flyer repository.
func NewFlyerRepository(db *gorm.DB) FlyerRepository {
	return &flyerRepository{db: db}
}

// Create inserts a flyer.
func (r *flyerRepository) Create(ctx context.Context, flyer *model.Flyer) error {
	return r.db.WithContext(ctx).Create(flyer).Error
}

// FindByID finds a flyer by ID.
func (r *flyerRepository) FindByID(ctx context.Context, id uint) (*model.Flyer, error) {
	var flyer model.Flyer
	if err := r.db.WithContext(ctx).First(&flyer, id).Error; err != nil {
		return nil, err
	}
	return &flyer, nil
}

// ListByCompany lists a company's flyers, newest first.
func (r *flyerRepository) ListByCompany(ctx context.Context, companyID uint, window *TimeWindow) ([]model.Flyer, error) {
	q := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if window != nil {
		q = q.Where("created_at >= ? AND created_at < ?", window.From.UTC(), window.To.UTC())
	}

	flyers := []model.Flyer{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&flyers).Error; err != nil {
		return nil, err
	}
	return flyers, nil
}

// Delete removes a flyer record. Deleting a missing row yields gorm.ErrRecordNotFound.
func (r *flyerRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Flyer{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
