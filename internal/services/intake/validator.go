package intake

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const statusRule = "required,oneof=pending paid"

type Validator struct {
	validate *validator.Validate
	log      *zap.Logger
}

func NewValidator(log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{
		validate: validator.New(),
		log:      log.Named("intake.validator"),
	}
}

// Validate turns a draft into a ValidatedInvoice or a *ValidationError naming each bad field.
// It has no side effects besides logging.
func (v *Validator) Validate(draft Draft) (ValidatedInvoice, error) {
	v.log.Debug("validating invoice draft", zap.Any("draft", map[string]string(draft)))

	var fields []FieldError

	customerID := strings.TrimSpace(draft[FieldCustomerID])
	if err := v.validate.Var(customerID, "required"); err != nil {
		fields = append(fields, v.fieldError(FieldCustomerID, customerID, err))
	}

	var amount decimal.Decimal
	rawAmount := strings.TrimSpace(draft[FieldAmount])
	if err := v.validate.Var(rawAmount, "required"); err != nil {
		fields = append(fields, v.fieldError(FieldAmount, rawAmount, err))
	} else if parsed, err := decimal.NewFromString(rawAmount); err != nil {
		fields = append(fields, FieldError{
			Field:   FieldAmount,
			Code:    CodeInvalidNumber,
			Message: fmt.Sprintf("expected number, received %q", rawAmount),
		})
	} else {
		amount = parsed
	}

	status := draft[FieldStatus]
	if err := v.validate.Var(status, statusRule); err != nil {
		fields = append(fields, v.fieldError(FieldStatus, status, err))
	}

	if len(fields) > 0 {
		v.log.Info("invoice draft rejected", zap.Any("errors", fields))
		return ValidatedInvoice{}, &ValidationError{Fields: fields}
	}

	return ValidatedInvoice{
		CustomerID: customerID,
		Amount:     amount,
		Status:     Status(status),
	}, nil
}

func (v *Validator) fieldError(field, value string, err error) FieldError {
	tag := ""
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		tag = verrs[0].Tag()
	}

	switch tag {
	case "required":
		return FieldError{Field: field, Code: CodeRequired, Message: field + " is required"}
	case "oneof":
		return FieldError{
			Field:   field,
			Code:    CodeInvalidEnum,
			Message: fmt.Sprintf("expected 'pending' | 'paid', received %q", value),
		}
	default:
		return FieldError{Field: field, Code: tag, Message: err.Error()}
	}
}
