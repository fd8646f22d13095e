package intake

import (
	"net/url"

	"github.com/shopspring/decimal"

	"invoice-dashboard-backend/internal/models"
)

// Form field names accepted from the invoice form.
const (
	FieldCustomerID = "customerId"
	FieldAmount     = "amount"
	FieldStatus     = "status"
)

var draftFields = []string{FieldCustomerID, FieldAmount, FieldStatus}

// Draft is the raw, unvalidated invoice form keyed by field name.
type Draft map[string]string

// DraftFromForm keeps the first value of each recognized field and drops everything else.
func DraftFromForm(values url.Values) Draft {
	draft := make(Draft, len(draftFields))
	for _, field := range draftFields {
		if vs, ok := values[field]; ok && len(vs) > 0 {
			draft[field] = vs[0]
		}
	}
	return draft
}

type Status string

const (
	StatusPending Status = models.InvoiceStatusPending
	StatusPaid    Status = models.InvoiceStatusPaid
)

// ValidatedInvoice is a draft that passed every intake rule.
type ValidatedInvoice struct {
	CustomerID string          `json:"customerId"`
	Amount     decimal.Decimal `json:"amount"`
	Status     Status          `json:"status"`
}
