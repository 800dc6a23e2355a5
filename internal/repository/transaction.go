package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles the repositories bound to one database handle.
type Repositories struct {
	Companies CompanyRepository
	Users     UserRepository
	Flyers    FlyerRepository
}

// New binds all repositories to db.
func New(db *gorm.DB) Repositories {
	return Repositories{
		Companies: NewCompanyRepository(db),
		Users:     NewUserRepository(db),
		Flyers:    NewFlyerRepository(db),
	}
}

// Transactor runs work inside a database transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type transactor struct {
	db *gorm.DB
}

// NewTransactor creates a Transactor over db.
func NewTransactor(db *gorm.DB) Transactor {
	return &transactor{db: db}
}

// WithTransaction executes fn with repositories bound to a transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (t *transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, New(tx))
	})
}
