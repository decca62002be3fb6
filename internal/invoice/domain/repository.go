package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	Scope      Scope
	Status     InvoiceStatus
	VendorName string
	Category   string
	DueFrom    *time.Time
	DueTo      *time.Time
}

// StatusAggregate is one GROUP BY row from the stats query.
type StatusAggregate struct {
	Status InvoiceStatus
	Count  int64
	Total  int64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice, logs []InvoiceLog) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Invoice, error)
	// ApplyTransition persists a status/assignee change plus its log entry in
	// one step, guarded by the invoice version. Returns ErrConflict when the
	// version no longer matches.
	ApplyTransition(ctx context.Context, db *gorm.DB, invoice *Invoice, expectedVersion int64, entry *InvoiceLog) error
	Aggregate(ctx context.Context, db *gorm.DB, scope Scope) ([]StatusAggregate, error)
	Activity(ctx context.Context, db *gorm.DB, scope Scope, limit int) ([]ActivityEntry, error)
	DeleteByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
}
