package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"invoice-dashboard-backend/internal/models"
	"invoice-dashboard-backend/internal/services/importer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InvoiceImporter interface {
	Import(ctx context.Context, filename string, src io.Reader) (*models.ImportReport, error)
}

type ImportHandler struct {
	importer InvoiceImporter
	log      *zap.Logger
}

func NewImportHandler(im InvoiceImporter, log *zap.Logger) *ImportHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImportHandler{importer: im, log: log.Named("handler.import")}
}

// Upload accepts a multipart "file" field holding a CSV of invoices.
func (h *ImportHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		abortWith(c, http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: "file required",
		})
		return
	}
	defer file.Close()

	h.log.Info("received invoice file", zap.String("filename", header.Filename), zap.Int64("size", header.Size))

	report, err := h.importer.Import(c.Request.Context(), header.Filename, file)
	if errors.Is(err, importer.ErrInvalidFile) {
		abortWith(c, http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		})
		return
	}
	if err != nil {
		h.log.Error("invoice import failed", zap.String("filename", header.Filename), zap.Error(err))
		abortWith(c, http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "could not import invoices",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}
