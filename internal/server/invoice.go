package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/vendorly/invoicedesk/internal/invoice/domain"
)

type createInvoiceRequest struct {
	VendorName    string `json:"vendor_name"`
	Amount        string `json:"amount"`
	DueDate       string `json:"due_date"`
	Category      string `json:"category"`
	Notes         string `json:"notes"`
	AssignedTo    string `json:"assigned_to"`
	AttachmentRef string `json:"attachment_ref"`
}

type transitionRequest struct {
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to"`
	Note       string `json:"note"`
}

func (s *Server) handleCreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	inv, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		VendorName:    req.VendorName,
		Amount:        req.Amount,
		DueDate:       req.DueDate,
		Category:      req.Category,
		Notes:         req.Notes,
		AssignedTo:    req.AssignedTo,
		AttachmentRef: req.AttachmentRef,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invoice": inv})
}

func (s *Server) handleListInvoices(c *gin.Context) {
	req := invoicedomain.ListInvoicesRequest{
		Status:     c.Query("status"),
		VendorName: c.Query("vendor_name"),
		Category:   c.Query("category"),
	}

	dueFrom, err := parseDateQuery(c, "due_from")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	dueTo, err := parseDateQuery(c, "due_to")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	req.DueFrom = dueFrom
	req.DueTo = dueTo

	invoices, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (s *Server) handleGetInvoice(c *gin.Context) {
	inv, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) handleTransitionInvoice(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	inv, err := s.invoiceSvc.Transition(c.Request.Context(), invoicedomain.TransitionRequest{
		InvoiceID:  c.Param("id"),
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
		Note:       req.Note,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) handleInvoiceStats(c *gin.Context) {
	stats, err := s.invoiceSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (s *Server) handleRecentActivity(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	entries, err := s.invoiceSvc.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": entries})
}

func parseDateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, newValidationError(name, "invalid_date", "dates use the YYYY-MM-DD format")
	}
	return &t, nil
}
