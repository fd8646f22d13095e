package handler

import (
	"context"
	"net/http"
	"strconv"

	"invoice-dashboard-backend/internal/models"
	"invoice-dashboard-backend/internal/services/dashboard"

	"github.com/gin-gonic/gin"
)

type DashboardReader interface {
	CardData(ctx context.Context) (models.CardData, error)
	Revenue(ctx context.Context) ([]models.Revenue, error)
	LatestInvoices(ctx context.Context) ([]models.LatestInvoice, error)
	FilteredInvoices(ctx context.Context, query string, page int) ([]models.InvoiceRow, error)
	InvoicePages(ctx context.Context, query string) (int, error)
	InvoiceByID(ctx context.Context, id string) (*models.InvoiceForm, error)
	Customers(ctx context.Context) ([]models.CustomerField, error)
	FilteredCustomers(ctx context.Context, query string) ([]models.CustomersTableRow, error)
}

type DashboardHandler struct {
	service DashboardReader
}

func NewDashboardHandler(s DashboardReader) *DashboardHandler {
	return &DashboardHandler{service: s}
}

func (h *DashboardHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()

	cards, err := h.service.CardData(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	revenue, err := h.service.Revenue(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	latest, err := h.service.LatestInvoices(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cards":           cards,
		"revenue":         revenue,
		"latest_invoices": latest,
	})
}

// Invoices serves ?query=&page=; a missing or malformed page is page 1 and
// pages past dashboard.MaxPage are capped.
func (h *DashboardHandler) Invoices(c *gin.Context) {
	ctx := c.Request.Context()
	query := c.Query("query")
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	page = min(page, dashboard.MaxPage)

	invoices, err := h.service.FilteredInvoices(ctx, query, page)
	if err != nil {
		h.fail(c, err)
		return
	}
	totalPages, err := h.service.InvoicePages(ctx, query)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":       query,
		"page":        page,
		"total_pages": totalPages,
		"invoices":    invoices,
	})
}

func (h *DashboardHandler) EditInvoice(c *gin.Context) {
	ctx := c.Request.Context()

	invoice, err := h.service.InvoiceByID(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	customers, err := h.service.Customers(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invoice":   invoice,
		"customers": customers,
	})
}

func (h *DashboardHandler) Customers(c *gin.Context) {
	customers, err := h.service.FilteredCustomers(c.Request.Context(), c.Query("query"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *DashboardHandler) fail(c *gin.Context, err error) {
	status, payload := mapReadError(err)
	abortWith(c, status, payload)
}
