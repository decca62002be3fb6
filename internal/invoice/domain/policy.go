package domain

import "github.com/vendorly/invoicedesk/internal/actor"

// CanTransition is the transition authorization policy: admins may act on any
// invoice, everyone else only on invoices currently assigned to them.
func CanTransition(a actor.Actor, inv Invoice) bool {
	if a.IsAdmin() {
		return true
	}
	return a.ID == inv.AssignedTo
}
