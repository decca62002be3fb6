package domain

import "errors"

var (
	ErrInvalidVendorName = errors.New("invalid_vendor_name")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidDueDate    = errors.New("invalid_due_date")
	ErrInvalidCategory   = errors.New("invalid_category")
	ErrInvalidAssignee   = errors.New("invalid_assignee")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNoUpdate          = errors.New("no_update")
	ErrAssigneeNotFound  = errors.New("assignee_not_found")
	ErrNotFound          = errors.New("invoice_not_found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrMissingActor      = errors.New("missing_actor")
)
