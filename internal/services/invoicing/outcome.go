package invoicing

import (
	"errors"

	"invoice-dashboard-backend/internal/services/intake"
)

// Outcome classifies the result of Create.
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeValidationFailed Outcome = "validation_failed"
	OutcomeWriteFailed      Outcome = "write_failed"
)

// OutcomeOf maps an error returned by Create to its outcome. Anything that is
// not a validation error counts as a failed write.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	var verr *intake.ValidationError
	if errors.As(err, &verr) {
		return OutcomeValidationFailed
	}
	return OutcomeWriteFailed
}
