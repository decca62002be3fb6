package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/vendorly/invoicedesk/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice, logs []domain.InvoiceLog) error {
	if err := db.WithContext(ctx).Omit("Logs").Create(invoice).Error; err != nil {
		return err
	}
	for i := range logs {
		if err := db.WithContext(ctx).Create(&logs[i]).Error; err != nil {
			return err
		}
	}
	invoice.Logs = logs
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		Preload("Logs", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Where("id = ?", id).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Preload("Logs", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		})

	stmt = applyScope(stmt, filter.Scope)

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if vendor := strings.TrimSpace(filter.VendorName); vendor != "" {
		stmt = stmt.Where("LOWER(vendor_name) LIKE ?", "%"+strings.ToLower(vendor)+"%")
	}
	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}
	if filter.DueFrom != nil {
		stmt = stmt.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		stmt = stmt.Where("due_date <= ?", *filter.DueTo)
	}

	if err := stmt.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) ApplyTransition(ctx context.Context, db *gorm.DB, invoice *domain.Invoice, expectedVersion int64, entry *domain.InvoiceLog) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Invoice{}).
			Where("id = ? AND version = ?", invoice.ID, expectedVersion).
			Updates(map[string]any{
				"status":      invoice.Status,
				"assigned_to": invoice.AssignedTo,
				"version":     expectedVersion + 1,
				"updated_at":  invoice.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrConflict
		}
		invoice.Version = expectedVersion + 1
		return tx.Create(entry).Error
	})
}

func (r *repo) Aggregate(ctx context.Context, db *gorm.DB, scope domain.Scope) ([]domain.StatusAggregate, error) {
	var rows []domain.StatusAggregate
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount_cents), 0) AS total")
	stmt = applyScope(stmt, scope)
	err := stmt.Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Activity(ctx context.Context, db *gorm.DB, scope domain.Scope, limit int) ([]domain.ActivityEntry, error) {
	var entries []domain.ActivityEntry
	stmt := db.WithContext(ctx).
		Table("invoice_logs AS l").
		Select(`l.action,
			l.invoice_id,
			i.vendor_name,
			i.amount_cents,
			i.status,
			l.timestamp,
			l.note,
			COALESCE(actor.name, '') AS actor_name,
			COALESCE(actor.email, '') AS actor_email,
			COALESCE(creator.name, '') AS created_by_name,
			COALESCE(assignee.name, '') AS assigned_to_name`).
		Joins("JOIN invoices i ON i.id = l.invoice_id").
		Joins("LEFT JOIN users actor ON actor.id = l.actor_id").
		Joins("LEFT JOIN users creator ON creator.id = i.created_by").
		Joins("LEFT JOIN users assignee ON assignee.id = i.assigned_to")

	if !scope.Admin {
		stmt = stmt.Where("i.created_by = ? OR i.assigned_to = ?", scope.ActorID, scope.ActorID)
	}

	err := stmt.
		Order("l.timestamp desc, l.id desc").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) DeleteByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	var invoiceIDs []snowflake.ID
	if err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("created_by = ? OR assigned_to = ?", userID, userID).
		Pluck("id", &invoiceIDs).Error; err != nil {
		return 0, err
	}
	if len(invoiceIDs) == 0 {
		return 0, nil
	}

	if err := db.WithContext(ctx).
		Where("invoice_id IN ?", invoiceIDs).
		Delete(&domain.InvoiceLog{}).Error; err != nil {
		return 0, err
	}

	res := db.WithContext(ctx).
		Where("id IN ?", invoiceIDs).
		Delete(&domain.Invoice{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func applyScope(stmt *gorm.DB, scope domain.Scope) *gorm.DB {
	if scope.Admin {
		return stmt
	}
	return stmt.Where("created_by = ? OR assigned_to = ?", scope.ActorID, scope.ActorID)
}
