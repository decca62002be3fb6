package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	Transition(ctx context.Context, req TransitionRequest) (Invoice, error)
	List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	Stats(ctx context.Context) (Stats, error)
	RecentActivity(ctx context.Context, limit int) ([]ActivityEntry, error)
}

// CreateInvoiceRequest carries caller-supplied fields for a new invoice.
// Validation reports the first offending field in declaration order.
type CreateInvoiceRequest struct {
	VendorName    string
	Amount        string
	DueDate       string
	Category      string
	Notes         string
	AssignedTo    string
	AttachmentRef string
}

// TransitionRequest requests a status change, an assignee change, or both in
// one atomic step.
type TransitionRequest struct {
	InvoiceID  string
	Status     string
	AssignedTo string
	Note       string
}

// ListInvoicesRequest filters combine with AND semantics. Result ordering is
// whatever the store returns; callers must not depend on it.
type ListInvoicesRequest struct {
	Status     string
	VendorName string
	Category   string
	DueFrom    *time.Time
	DueTo      *time.Time
}

// StatusBucket aggregates the invoices sharing one status.
type StatusBucket struct {
	Count            int64 `json:"count"`
	TotalAmountCents int64 `json:"total_amount_cents"`
}

// Stats holds one bucket per lifecycle status, zero-valued when empty.
type Stats map[InvoiceStatus]StatusBucket

// ActivityEntry is one row of the flattened cross-invoice log stream.
type ActivityEntry struct {
	Action         LogAction     `json:"action"`
	InvoiceID      snowflake.ID  `json:"invoice_id"`
	VendorName     string        `json:"vendor_name"`
	AmountCents    int64         `json:"amount_cents"`
	Status         InvoiceStatus `json:"status"`
	Timestamp      time.Time     `json:"timestamp"`
	ActorName      string        `json:"actor_name"`
	ActorEmail     string        `json:"actor_email"`
	Note           string        `json:"note,omitempty"`
	CreatedByName  string        `json:"created_by_name"`
	AssignedToName string        `json:"assigned_to_name"`
}

// Scope is the subset of invoices a caller may see: everything for admins,
// own-created-or-assigned otherwise.
type Scope struct {
	ActorID snowflake.ID
	Admin   bool
}
