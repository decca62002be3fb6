// Package domain defines the user directory boundary.
package domain

import (
	"context"
	"errors"

	authdomain "github.com/vendorly/invoicedesk/internal/auth/domain"
)

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*authdomain.User, error)
	// ListUsers returns every user except the caller.
	ListUsers(ctx context.Context) ([]authdomain.User, error)
	// DeleteUser removes the user, their sessions, and every invoice they
	// created or were assigned, as one atomic unit. The invoice cascade is
	// deliberate: orphaned approval records have no owner to act on them.
	DeleteUser(ctx context.Context, id string) (DeleteResult, error)
}

type CreateUserRequest struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type DeleteResult struct {
	InvoicesDeleted int64 `json:"invoices_deleted"`
}

var (
	ErrInvalidID  = errors.New("invalid_user_id")
	ErrSelfDelete = errors.New("self_delete")
)
