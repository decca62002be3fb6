package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/vendorly/invoicedesk/internal/actor"
	authdomain "github.com/vendorly/invoicedesk/internal/auth/domain"
	"github.com/vendorly/invoicedesk/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultSubmitNote     = "Invoice submitted."
	defaultTransitionNote = "Status updated"

	defaultActivityLimit = 10
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	UserRepo authdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	userRepo authdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("invoice.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		userRepo: p.UserRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	caller, ok := actor.FromContext(ctx)
	if !ok {
		return domain.Invoice{}, domain.ErrMissingActor
	}

	vendorName := strings.TrimSpace(req.VendorName)
	if vendorName == "" {
		return domain.Invoice{}, domain.ErrInvalidVendorName
	}

	amountCents, err := domain.ParseAmount(req.Amount)
	if err != nil || amountCents <= 0 {
		return domain.Invoice{}, domain.ErrInvalidAmount
	}

	dueDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.DueDate))
	if err != nil {
		return domain.Invoice{}, domain.ErrInvalidDueDate
	}

	category, ok := domain.NormalizeCategory(req.Category)
	if !ok {
		return domain.Invoice{}, domain.ErrInvalidCategory
	}

	assignedTo := caller.ID
	var assignee *authdomain.User
	if raw := strings.TrimSpace(req.AssignedTo); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.Invoice{}, domain.ErrInvalidAssignee
		}
		user, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, authdomain.ErrUserNotFound) {
				return domain.Invoice{}, domain.ErrAssigneeNotFound
			}
			return domain.Invoice{}, err
		}
		assignedTo = user.ID
		assignee = user
	}

	now := time.Now().UTC()
	invoice := domain.Invoice{
		ID:            s.genID.Generate(),
		VendorName:    vendorName,
		AmountCents:   amountCents,
		DueDate:       dueDate,
		Category:      category,
		Notes:         strings.TrimSpace(req.Notes),
		AttachmentRef: strings.TrimSpace(req.AttachmentRef),
		Status:        domain.StatusPending,
		CreatedBy:     caller.ID,
		AssignedTo:    assignedTo,
		Version:       0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	submitNote := invoice.Notes
	if submitNote == "" {
		submitNote = defaultSubmitNote
	}
	logs := []domain.InvoiceLog{{
		ID:        s.genID.Generate(),
		InvoiceID: invoice.ID,
		Action:    domain.ActionSubmitted,
		ActorID:   caller.ID,
		Timestamp: now,
		Note:      submitNote,
	}}

	if assignee != nil && assignee.ID != caller.ID {
		logs = append(logs, domain.InvoiceLog{
			ID:        s.genID.Generate(),
			InvoiceID: invoice.ID,
			Action:    domain.ActionReassigned,
			ActorID:   caller.ID,
			Timestamp: now,
			Note:      reassignNote(assignee),
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Insert(ctx, tx, &invoice, logs)
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	return invoice, nil
}

func (s *Service) Transition(ctx context.Context, req domain.TransitionRequest) (domain.Invoice, error) {
	caller, ok := actor.FromContext(ctx)
	if !ok {
		return domain.Invoice{}, domain.ErrMissingActor
	}

	invoiceID, err := snowflake.ParseString(strings.TrimSpace(req.InvoiceID))
	if err != nil || invoiceID == 0 {
		return domain.Invoice{}, domain.ErrInvalidID
	}

	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}

	if !domain.CanTransition(caller, *invoice) {
		return domain.Invoice{}, domain.ErrForbidden
	}

	statusChanged := false
	desired := domain.InvoiceStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if desired != "" {
		if !domain.ValidTargetStatus(desired) {
			return domain.Invoice{}, domain.ErrInvalidStatus
		}
		statusChanged = true
	}

	var assignee *authdomain.User
	assigneeChanged := false
	if raw := strings.TrimSpace(req.AssignedTo); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.Invoice{}, domain.ErrInvalidAssignee
		}
		user, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, authdomain.ErrUserNotFound) {
				return domain.Invoice{}, domain.ErrAssigneeNotFound
			}
			return domain.Invoice{}, err
		}
		if user.ID != invoice.AssignedTo {
			assignee = user
			assigneeChanged = true
		}
	}

	if !statusChanged && !assigneeChanged {
		return domain.Invoice{}, domain.ErrNoUpdate
	}

	expectedVersion := invoice.Version
	now := time.Now().UTC()

	action := domain.ActionReassigned
	if statusChanged {
		invoice.Status = desired
		action = domain.LogAction(desired)
	}
	if assigneeChanged {
		invoice.AssignedTo = assignee.ID
	}
	invoice.UpdatedAt = now

	note := strings.TrimSpace(req.Note)
	if note == "" {
		if statusChanged {
			note = defaultTransitionNote
		} else {
			note = reassignNote(assignee)
		}
	}

	entry := domain.InvoiceLog{
		ID:        s.genID.Generate(),
		InvoiceID: invoice.ID,
		Action:    action,
		ActorID:   caller.ID,
		Timestamp: now,
		Note:      note,
	}

	if err := s.repo.ApplyTransition(ctx, s.db, invoice, expectedVersion, &entry); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.log.Warn("invoice transition conflict",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Int64("expected_version", expectedVersion),
			)
		}
		return domain.Invoice{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, invoice.ID)
	if err != nil {
		return domain.Invoice{}, err
	}
	return *updated, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoicesRequest) ([]domain.Invoice, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	filter := domain.ListFilter{
		Scope:      scope,
		VendorName: strings.TrimSpace(req.VendorName),
		DueFrom:    req.DueFrom,
		DueTo:      req.DueTo,
	}

	if raw := strings.TrimSpace(req.Status); raw != "" {
		status := domain.InvoiceStatus(strings.ToLower(raw))
		if !validStatus(status) {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}

	if raw := strings.TrimSpace(req.Category); raw != "" {
		category, ok := domain.NormalizeCategory(raw)
		if !ok {
			return nil, domain.ErrInvalidCategory
		}
		filter.Category = category
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}
	return invoices, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}

	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || invoiceID == 0 {
		return domain.Invoice{}, domain.ErrInvalidID
	}

	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}

	if !scope.Admin && invoice.CreatedBy != scope.ActorID && invoice.AssignedTo != scope.ActorID {
		return domain.Invoice{}, domain.ErrNotFound
	}

	return *invoice, nil
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Aggregate(ctx, s.db, scope)
	if err != nil {
		return nil, err
	}

	stats := make(domain.Stats, len(domain.Statuses))
	for _, status := range domain.Statuses {
		stats[status] = domain.StatusBucket{}
	}
	for _, row := range rows {
		stats[row.Status] = domain.StatusBucket{
			Count:            row.Count,
			TotalAmountCents: row.Total,
		}
	}
	return stats, nil
}

func (s *Service) RecentActivity(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultActivityLimit
	}

	return s.repo.Activity(ctx, s.db, scope, limit)
}

func scopeFromContext(ctx context.Context) (domain.Scope, error) {
	caller, ok := actor.FromContext(ctx)
	if !ok {
		return domain.Scope{}, domain.ErrMissingActor
	}
	return domain.Scope{ActorID: caller.ID, Admin: caller.IsAdmin()}, nil
}

func validStatus(s domain.InvoiceStatus) bool {
	for _, status := range domain.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

func reassignNote(user *authdomain.User) string {
	if user == nil {
		return "Invoice reassigned"
	}
	return fmt.Sprintf("Invoice reassigned to %s (%s)", user.Name, user.Email)
}
