package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/levelup-todo-api/internal/utils"
)

// Paginate applies pagination to a GORM query. A zero limit leaves the query
// unpaginated.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Limit <= 0 {
			return db
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// OwnedBy restricts a query on table to rows of one user.
func OwnedBy(table string, userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".user_id = ?", userID)
	}
}

// NewestFirst orders rows of table by creation time, breaking ties by id.
func NewestFirst(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".created_at DESC").Order(table + ".id DESC")
	}
}
