package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/vendorly/invoicedesk/internal/actor"
	authdomain "github.com/vendorly/invoicedesk/internal/auth/domain"
	"github.com/vendorly/invoicedesk/internal/directory/domain"
	invoicedomain "github.com/vendorly/invoicedesk/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Repo        domain.Repository
	AuthSvc     authdomain.Service
	InvoiceRepo invoicedomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	repo        domain.Repository
	authSvc     authdomain.Service
	invoiceRepo invoicedomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("directory.service"),
		repo:        p.Repo,
		authSvc:     p.AuthSvc,
		invoiceRepo: p.InvoiceRepo,
	}
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*authdomain.User, error) {
	return s.authSvc.CreateUser(ctx, authdomain.CreateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     authdomain.Role(strings.ToLower(strings.TrimSpace(req.Role))),
	})
}

func (s *Service) ListUsers(ctx context.Context) ([]authdomain.User, error) {
	caller, ok := actor.FromContext(ctx)
	if !ok {
		return nil, invoicedomain.ErrMissingActor
	}
	return s.repo.ListExcluding(ctx, s.db, caller.ID)
}

func (s *Service) DeleteUser(ctx context.Context, id string) (domain.DeleteResult, error) {
	caller, ok := actor.FromContext(ctx)
	if !ok {
		return domain.DeleteResult{}, invoicedomain.ErrMissingActor
	}

	userID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || userID == 0 {
		return domain.DeleteResult{}, domain.ErrInvalidID
	}
	if userID == caller.ID {
		return domain.DeleteResult{}, domain.ErrSelfDelete
	}

	var result domain.DeleteResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deleted, err := s.invoiceRepo.DeleteByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		result.InvoicesDeleted = deleted
		return s.repo.DeleteUser(ctx, tx, userID)
	})
	if err != nil {
		return domain.DeleteResult{}, err
	}

	s.log.Info("user deleted",
		zap.String("user_id", userID.String()),
		zap.Int64("invoices_deleted", result.InvoicesDeleted),
	)
	return result, nil
}
