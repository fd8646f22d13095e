package handler

import (
	"errors"
	"net/http"

	"invoice-dashboard-backend/internal/services/dashboard"
	"invoice-dashboard-backend/internal/services/intake"
	"invoice-dashboard-backend/internal/services/invoicing"

	"github.com/gin-gonic/gin"
)

type errorPayload struct {
	Type    string              `json:"type"`
	Message string              `json:"message"`
	Errors  []intake.FieldError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func abortWith(c *gin.Context, status int, payload errorPayload) {
	c.AbortWithStatusJSON(status, errorResponse{Error: payload})
}

// mapCreateError turns an invoicing.Service.Create error into a response.
// Causes behind write failures never reach the client.
func mapCreateError(err error) (int, errorPayload) {
	switch invoicing.OutcomeOf(err) {
	case invoicing.OutcomeValidationFailed:
		var verr *intake.ValidationError
		errors.As(err, &verr)
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "validation_error",
			Message: "Missing or invalid fields. Failed to create invoice.",
			Errors:  verr.Fields,
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "could not create invoice",
		}
	}
}

func mapReadError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, dashboard.ErrInvalidID), errors.Is(err, dashboard.ErrInvoiceNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "invoice not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "failed to fetch dashboard data",
		}
	}
}
