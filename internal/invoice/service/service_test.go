package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendorly/invoicedesk/internal/actor"
	authdomain "github.com/vendorly/invoicedesk/internal/auth/domain"
	authrepository "github.com/vendorly/invoicedesk/internal/auth/repository"
	"github.com/vendorly/invoicedesk/internal/invoice/domain"
	"github.com/vendorly/invoicedesk/internal/invoice/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&domain.Invoice{},
		&domain.InvoiceLog{},
	))
	return db
}

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db := newTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	userRepo, _ := authrepository.New(db)
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.Provide(),
		UserRepo: userRepo,
	})
	return svc, db, node
}

func seedUser(t *testing.T, db *gorm.DB, node *snowflake.Node, name string, role authdomain.Role) *authdomain.User {
	t.Helper()

	user := &authdomain.User{
		ID:    node.Generate(),
		Name:  name,
		Email: strings.ToLower(name) + "@example.com",
		Role:  role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func actorCtx(user *authdomain.User) context.Context {
	return actor.WithActor(context.Background(), actor.Actor{
		ID:   user.ID,
		Role: actor.Role(user.Role),
	})
}

func validCreateRequest() domain.CreateInvoiceRequest {
	return domain.CreateInvoiceRequest{
		VendorName: "Acme Corp",
		Amount:     "100.50",
		DueDate:    "2026-09-30",
		Category:   "Software",
	}
}

func TestCreateRecordsSubmittedLog(t *testing.T) {
	svc, db, node := newTestService(t)
	reviewer := seedUser(t, db, node, "rivka", authdomain.RoleReviewer)

	inv, err := svc.Create(actorCtx(reviewer), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", inv.VendorName)
	assert.Equal(t, int64(10050), inv.AmountCents)
	assert.Equal(t, "software", inv.Category)
	assert.Equal(t, domain.StatusPending, inv.Status)
	assert.Equal(t, reviewer.ID, inv.CreatedBy)
	assert.Equal(t, reviewer.ID, inv.AssignedTo)

	require.Len(t, inv.Logs, 1)
	assert.Equal(t, domain.ActionSubmitted, inv.Logs[0].Action)
	assert.Equal(t, reviewer.ID, inv.Logs[0].ActorID)
	assert.Equal(t, "Invoice submitted.", inv.Logs[0].Note)
}

func TestCreateUsesNotesAsSubmitNote(t *testing.T) {
	svc, db, node := newTestService(t)
	reviewer := seedUser(t, db, node, "noa", authdomain.RoleReviewer)

	req := validCreateRequest()
	req.Notes = "Quarterly license renewal"

	inv, err := svc.Create(actorCtx(reviewer), req)
	require.NoError(t, err)
	require.Len(t, inv.Logs, 1)
	assert.Equal(t, "Quarterly license renewal", inv.Logs[0].Note)
}

func TestCreateAssignedToOtherRecordsReassignment(t *testing.T) {
	svc, db, node := newTestService(t)
	creator := seedUser(t, db, node, "creator", authdomain.RoleReviewer)
	assignee := seedUser(t, db, node, "assignee", authdomain.RoleReviewer)

	req := validCreateRequest()
	req.AssignedTo = assignee.ID.String()

	inv, err := svc.Create(actorCtx(creator), req)
	require.NoError(t, err)

	assert.Equal(t, assignee.ID, inv.AssignedTo)
	require.Len(t, inv.Logs, 2)
	assert.Equal(t, domain.ActionSubmitted, inv.Logs[0].Action)
	assert.Equal(t, domain.ActionReassigned, inv.Logs[1].Action)
	assert.Equal(t, fmt.Sprintf("Invoice reassigned to %s (%s)", assignee.Name, assignee.Email), inv.Logs[1].Note)
}

func TestCreateValidation(t *testing.T) {
	svc, db, node := newTestService(t)
	reviewer := seedUser(t, db, node, "val", authdomain.RoleReviewer)
	ctx := actorCtx(reviewer)

	cases := []struct {
		name    string
		mutate  func(*domain.CreateInvoiceRequest)
		wantErr error
	}{
		{"empty vendor", func(r *domain.CreateInvoiceRequest) { r.VendorName = "  " }, domain.ErrInvalidVendorName},
		{"zero amount", func(r *domain.CreateInvoiceRequest) { r.Amount = "0" }, domain.ErrInvalidAmount},
		{"negative amount", func(r *domain.CreateInvoiceRequest) { r.Amount = "-3.50" }, domain.ErrInvalidAmount},
		{"non numeric amount", func(r *domain.CreateInvoiceRequest) { r.Amount = "ten" }, domain.ErrInvalidAmount},
		{"too many decimals", func(r *domain.CreateInvoiceRequest) { r.Amount = "1.005" }, domain.ErrInvalidAmount},
		{"bad due date", func(r *domain.CreateInvoiceRequest) { r.DueDate = "30-09-2026" }, domain.ErrInvalidDueDate},
		{"unknown category", func(r *domain.CreateInvoiceRequest) { r.Category = "snacks" }, domain.ErrInvalidCategory},
		{"malformed assignee", func(r *domain.CreateInvoiceRequest) { r.AssignedTo = "not-an-id" }, domain.ErrInvalidAssignee},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.mutate(&req)
			_, err := svc.Create(ctx, req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateAssigneeNotFound(t *testing.T) {
	svc, db, node := newTestService(t)
	reviewer := seedUser(t, db, node, "orphan", authdomain.RoleReviewer)

	req := validCreateRequest()
	req.AssignedTo = node.Generate().String()

	_, err := svc.Create(actorCtx(reviewer), req)
	assert.ErrorIs(t, err, domain.ErrAssigneeNotFound)
}

func TestCreateRequiresActor(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), validCreateRequest())
	assert.ErrorIs(t, err, domain.ErrMissingActor)
}

func TestTransitionAppendsLog(t *testing.T) {
	svc, db, node := newTestService(t)
	reviewer := seedUser(t, db, node, "owner", authdomain.RoleReviewer)
	ctx := actorCtx(reviewer)

	inv, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	updated, err := svc.Transition(ctx, domain.TransitionRequest{
		InvoiceID: inv.ID.String(),
		Status:    "approved",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApproved, updated.Status)
	require.Len(t, updated.Logs, 2)
	assert.Equal(t, domain.ActionApproved, updated.Logs[1].Action)
	assert.Equal(t, "Status updated", updated.Logs[1].Note)

	var stored domain.Invoice
	require.NoError(t, db.First(&stored, "id = ?", inv.ID).Error)
	assert.Equal(t, int64(1), stored.Version)
}

func TestTransitionStatusAndAssigneeSingleEntry(t *testing.T) {
	svc, db, node := newTestService(t)
	admin := seedUser(t, db, node, "boss", authdomain.RoleAdmin)
	next := seedUser(t, db, node, "next", authdomain.RoleReviewer)
	ctx := actorCtx(admin)

	inv, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	updated, err := svc.Transition(ctx, domain.TransitionRequest{
		InvoiceID:  inv.ID.String(),
		Status:     "rejected",
		AssignedTo: next.ID.String(),
		Note:       "Wrong PO number",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRejected, updated.Status)
	assert.Equal(t, next.ID, updated.AssignedTo)
	require.Len(t, updated.Logs, 2)
	assert.Equal(t, domain.ActionRejected, updated.Logs[1].Action)
	assert.Equal(t, "Wrong PO number", updated.Logs[1].Note)
}

func TestTransitionReassignOnly(t *testing.T) {
	svc, db, node := newTestService(t)
	admin := seedUser(t, db, node, "chief", authdomain.RoleAdmin)
	next := seedUser(t, db, node, "handoff", authdomain.RoleReviewer)
	ctx := actorCtx(admin)

	inv, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	updated, err := svc.Transition(ctx, domain.TransitionRequest{
		InvoiceID:  inv.ID.String(),
		AssignedTo: next.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, updated.Status)
	assert.Equal(t, next.ID, updated.AssignedTo)
	require.Len(t, updated.Logs, 2)
	assert.Equal(t, domain.ActionReassigned, updated.Logs[1].Action)
	assert.Contains(t, updated.Logs[1].Note, next.Name)
}

func TestTransitionForbiddenForNonAssignee(t *testing.T) {
	svc, db, node := newTestService(t)
	creator := seedUser(t, db, node, "author", authdomain.RoleReviewer)
	assignee := seedUser(t, db, node, "approver", authdomain.RoleReviewer)

	req := validCreateRequest()
	req.AssignedTo = assignee.ID.String()
	inv, err := svc.Create(actorCtx(creator), req)
	require.NoError(t, err)

	// The creator no longer holds the invoice, so even a garbage payload is
	// rejected with forbidden rather than a validation error.
	_, err = svc.Transition(actorCtx(creator), domain.TransitionRequest{
		InvoiceID: inv.ID.String(),
		Status:    "not-a-status",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTransitionAdminOverridesAssignee(t *testing.T) {
	svc, db, node := newTestService(t)
	admin := seedUser(t, db, node, "root", authdomain.RoleAdmin)
	reviewer := seedUser(t, db, node, "worker", authdomain.RoleReviewer)

	inv, err := svc.Create(actorCtx(reviewer), validCreateRequest())
	require.NoError(t, err)

	updated, err := svc.Transition(actorCtx(admin), domain.TransitionRequest{
		InvoiceID: inv.ID.String(),
		Status:    "paid",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, updated.Status)
}

func TestTransitionNoUpdate(t *testing.T) {
	svc, db, node := newTestService(t)
	reviewer := seedUser(t, db, node, "idle", authdomain.RoleReviewer)
	ctx := actorCtx(reviewer)

	inv, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.Transition(ctx, domain.TransitionRequest{InvoiceID: inv.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNoUpdate)

	// Re-assigning to the current assignee is not a change either.
	_, err = svc.Transition(ctx, domain.TransitionRequest{
		InvoiceID:  inv.ID.String(),
		AssignedTo: reviewer.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrNoUpdate)
}

func TestTransitionUnknownInvoice(t *testing.T) {
	svc, db, node := newTestService(t)
	reviewer := seedUser(t, db, node, "ghost", authdomain.RoleReviewer)

	_, err := svc.Transition(actorCtx(reviewer), domain.TransitionRequest{
		InvoiceID: node.Generate().String(),
		Status:    "approved",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListScopesToCaller(t *testing.T) {
	svc, db, node := newTestService(t)
	admin := seedUser(t, db, node, "admin", authdomain.RoleAdmin)
	alice := seedUser(t, db, node, "alice", authdomain.RoleReviewer)
	bob := seedUser(t, db, node, "bob", authdomain.RoleReviewer)

	_, err := svc.Create(actorCtx(alice), validCreateRequest())
	require.NoError(t, err)

	req := validCreateRequest()
	req.VendorName = "Globex"
	req.AssignedTo = alice.ID.String()
	_, err = svc.Create(actorCtx(bob), req)
	require.NoError(t, err)

	req = validCreateRequest()
	req.VendorName = "Initech"
	_, err = svc.Create(actorCtx(bob), req)
	require.NoError(t, err)

	adminList, err := svc.List(actorCtx(admin), domain.ListInvoicesRequest{})
	require.NoError(t, err)
	assert.Len(t, adminList, 3)

	// Alice sees her own invoice plus the one assigned to her.
	aliceList, err := svc.List(actorCtx(alice), domain.ListInvoicesRequest{})
	require.NoError(t, err)
	assert.Len(t, aliceList, 2)

	bobList, err := svc.List(actorCtx(bob), domain.ListInvoicesRequest{})
	require.NoError(t, err)
	assert.Len(t, bobList, 2)
}

func TestListFilters(t *testing.T) {
	svc, db, node := newTestService(t)
	admin := seedUser(t, db, node, "filters", authdomain.RoleAdmin)
	ctx := actorCtx(admin)

	first := validCreateRequest()
	first.VendorName = "Acme Corp"
	first.DueDate = "2026-09-01"
	created, err := svc.Create(ctx, first)
	require.NoError(t, err)

	second := validCreateRequest()
	second.VendorName = "Globex"
	second.Category = "Travel"
	second.DueDate = "2026-10-15"
	_, err = svc.Create(ctx, second)
	require.NoError(t, err)

	_, err = svc.Transition(ctx, domain.TransitionRequest{
		InvoiceID: created.ID.String(),
		Status:    "approved",
	})
	require.NoError(t, err)

	byStatus, err := svc.List(ctx, domain.ListInvoicesRequest{Status: "approved"})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "Acme Corp", byStatus[0].VendorName)

	byVendor, err := svc.List(ctx, domain.ListInvoicesRequest{VendorName: "acme"})
	require.NoError(t, err)
	assert.Len(t, byVendor, 1)

	byCategory, err := svc.List(ctx, domain.ListInvoicesRequest{Category: "Travel"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Globex", byCategory[0].VendorName)

	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	byDue, err := svc.List(ctx, domain.ListInvoicesRequest{DueFrom: &from})
	require.NoError(t, err)
	require.Len(t, byDue, 1)
	assert.Equal(t, "Globex", byDue[0].VendorName)

	_, err = svc.List(ctx, domain.ListInvoicesRequest{Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.List(ctx, domain.ListInvoicesRequest{Category: "snacks"})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestGetByIDScope(t *testing.T) {
	svc, db, node := newTestService(t)
	alice := seedUser(t, db, node, "mine", authdomain.RoleReviewer)
	bob := seedUser(t, db, node, "theirs", authdomain.RoleReviewer)

	inv, err := svc.Create(actorCtx(alice), validCreateRequest())
	require.NoError(t, err)

	got, err := svc.GetByID(actorCtx(alice), inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)

	// Out-of-scope invoices are indistinguishable from missing ones.
	_, err = svc.GetByID(actorCtx(bob), inv.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatsBucketsAllStatuses(t *testing.T) {
	svc, db, node := newTestService(t)
	admin := seedUser(t, db, node, "counter", authdomain.RoleAdmin)
	ctx := actorCtx(admin)

	empty, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, empty, 4)
	for _, status := range domain.Statuses {
		assert.Equal(t, domain.StatusBucket{}, empty[status])
	}

	first := validCreateRequest()
	first.Amount = "100.50"
	_, err = svc.Create(ctx, first)
	require.NoError(t, err)

	second := validCreateRequest()
	second.Amount = "49.50"
	created, err := svc.Create(ctx, second)
	require.NoError(t, err)

	_, err = svc.Transition(ctx, domain.TransitionRequest{
		InvoiceID: created.ID.String(),
		Status:    "approved",
	})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBucket{Count: 1, TotalAmountCents: 10050}, stats[domain.StatusPending])
	assert.Equal(t, domain.StatusBucket{Count: 1, TotalAmountCents: 4950}, stats[domain.StatusApproved])
	assert.Equal(t, domain.StatusBucket{}, stats[domain.StatusRejected])
	assert.Equal(t, domain.StatusBucket{}, stats[domain.StatusPaid])
}

func TestRecentActivityOrderingAndScope(t *testing.T) {
	svc, db, node := newTestService(t)
	alice := seedUser(t, db, node, "ana", authdomain.RoleReviewer)
	bob := seedUser(t, db, node, "ben", authdomain.RoleReviewer)

	first, err := svc.Create(actorCtx(alice), validCreateRequest())
	require.NoError(t, err)

	other := validCreateRequest()
	other.VendorName = "Globex"
	_, err = svc.Create(actorCtx(bob), other)
	require.NoError(t, err)

	_, err = svc.Transition(actorCtx(alice), domain.TransitionRequest{
		InvoiceID: first.ID.String(),
		Status:    "approved",
	})
	require.NoError(t, err)

	entries, err := svc.RecentActivity(actorCtx(alice), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first: the approval precedes the original submission.
	assert.Equal(t, domain.ActionApproved, entries[0].Action)
	assert.Equal(t, first.ID, entries[0].InvoiceID)
	assert.Equal(t, alice.Name, entries[0].ActorName)
	assert.Equal(t, domain.ActionSubmitted, entries[1].Action)
	assert.Equal(t, first.ID, entries[1].InvoiceID)

	adminView := seedUser(t, db, node, "audit", authdomain.RoleAdmin)
	all, err := svc.RecentActivity(actorCtx(adminView), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := svc.RecentActivity(actorCtx(adminView), 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, domain.ActionApproved, limited[0].Action)
}
