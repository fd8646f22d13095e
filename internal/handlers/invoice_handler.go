package handler

import (
	"context"
	"net/http"
	"strings"

	"invoice-dashboard-backend/internal/services/intake"
	"invoice-dashboard-backend/internal/services/invoicing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxFormMemory bounds the multipart form kept in memory.
const maxFormMemory = 1 << 20

type InvoiceCreator interface {
	Create(ctx context.Context, draft intake.Draft) (invoicing.Result, error)
}

type InvoiceHandler struct {
	service InvoiceCreator
	log     *zap.Logger
}

func NewInvoiceHandler(s InvoiceCreator, log *zap.Logger) *InvoiceHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &InvoiceHandler{service: s, log: log.Named("handler.invoice")}
}

// Create handles the invoice form. Browsers are redirected to the invoice list
// with 303; clients asking for JSON get the created invoice.
func (h *InvoiceHandler) Create(c *gin.Context) {
	if err := parseForm(c.Request); err != nil {
		abortWith(c, http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: "invalid form payload",
		})
		return
	}

	result, err := h.service.Create(c.Request.Context(), intake.DraftFromForm(c.Request.PostForm))
	if err != nil {
		status, payload := mapCreateError(err)
		abortWith(c, status, payload)
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{
			"data":     result.Invoice,
			"redirect": result.RedirectTo,
		})
		return
	}
	c.Redirect(http.StatusSeeOther, result.RedirectTo)
}

// parseForm fills PostForm from urlencoded and multipart bodies alike.
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), gin.MIMEMultipartPOSTForm) {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), gin.MIMEJSON)
}
