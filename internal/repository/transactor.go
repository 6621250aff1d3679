package repository

import (
	"context"

	"gorm.io/gorm"
)

// GormTransactor is a GORM implementation of Transactor
type GormTransactor struct {
	db *gorm.DB
}

// NewTransactor creates a new Transactor
func NewTransactor(db *gorm.DB) Transactor {
	return &GormTransactor{db: db}
}

// WithinTransaction opens a transaction, hands fn repositories bound to it and
// commits when fn returns nil.
func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repositories{
			Tasks:        NewTaskRepository(tx),
			Profiles:     NewProfileRepository(tx),
			Achievements: NewAchievementRepository(tx),
		})
	})
}
