// Package domain contains the invoice approval workflow types.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	StatusPending  InvoiceStatus = "pending"
	StatusApproved InvoiceStatus = "approved"
	StatusRejected InvoiceStatus = "rejected"
	StatusPaid     InvoiceStatus = "paid"
)

// Statuses lists every lifecycle state in declaration order.
var Statuses = []InvoiceStatus{StatusPending, StatusApproved, StatusRejected, StatusPaid}

// ValidTargetStatus reports whether a status may be requested through a
// transition. "pending" is the creation state only and "reassigned" is an
// assignee change, not a status.
func ValidTargetStatus(s InvoiceStatus) bool {
	switch s {
	case StatusApproved, StatusRejected, StatusPaid:
		return true
	default:
		return false
	}
}

// LogAction identifies what a log entry records.
type LogAction string

const (
	ActionSubmitted  LogAction = "submitted"
	ActionApproved   LogAction = "approved"
	ActionRejected   LogAction = "rejected"
	ActionReassigned LogAction = "reassigned"
	ActionPaid       LogAction = "paid"
)

// Invoice represents a payable record moving through the approval workflow.
type Invoice struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	VendorName    string        `gorm:"type:text;not null" json:"vendor_name"`
	AmountCents   int64         `gorm:"not null" json:"amount_cents"`
	DueDate       time.Time     `gorm:"not null" json:"due_date"`
	Category      string        `gorm:"type:text;not null" json:"category"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`
	AttachmentRef string        `gorm:"type:text" json:"attachment_ref,omitempty"`
	Status        InvoiceStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	CreatedBy     snowflake.ID  `gorm:"not null;index" json:"created_by"`
	AssignedTo    snowflake.ID  `gorm:"not null;index" json:"assigned_to"`
	Version       int64         `gorm:"not null;default:0" json:"-"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Logs []InvoiceLog `gorm:"foreignKey:InvoiceID" json:"logs"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceLog is one immutable audit record of an action taken on an invoice.
// Rows are append-only; snowflake IDs are monotonic per node, so ordering by
// ID reproduces insertion order.
type InvoiceLog struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	Action    LogAction    `gorm:"type:text;not null" json:"action"`
	ActorID   snowflake.ID `gorm:"not null" json:"actor_id"`
	Timestamp time.Time    `gorm:"not null" json:"timestamp"`
	Note      string       `gorm:"type:text" json:"note,omitempty"`
}

// TableName sets the database table name.
func (InvoiceLog) TableName() string { return "invoice_logs" }
