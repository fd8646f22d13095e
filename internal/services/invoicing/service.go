package invoicing

import (
	"context"
	"errors"
	"time"

	"invoice-dashboard-backend/internal/clock"
	"invoice-dashboard-backend/internal/models"
	"invoice-dashboard-backend/internal/services/intake"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// InvoicesPath is both the view refreshed after a write and the redirect target.
const InvoicesPath = "/dashboard/invoices"

const (
	dateLayout          = "2006-01-02"
	defaultWriteTimeout = 5 * time.Second
)

var (
	ErrCreateFailed = errors.New("failed to create invoice")
	ErrUnexpected   = errors.New("unexpected error while creating invoice")
)

// Store persists a single invoice row.
type Store interface {
	Insert(ctx context.Context, invoice *models.Invoice) error
}

// Revalidator marks a cached view stale.
type Revalidator interface {
	Invalidate(ctx context.Context, path string) error
}

type Recorder interface {
	RecordIntake(outcome string)
	RecordInvalidation(err error)
}

// PersistedInvoice is the invoice as written. Date is YYYY-MM-DD in UTC.
type PersistedInvoice struct {
	ID         uuid.UUID       `json:"id"`
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	Date       string          `json:"date"`
}

type Result struct {
	Invoice    PersistedInvoice `json:"data"`
	RedirectTo string           `json:"redirect"`
}

type Config struct {
	WriteTimeout time.Duration
}

type Service struct {
	validator   *intake.Validator
	store       Store
	revalidator Revalidator
	clock       clock.Clock
	metrics     Recorder
	timeout     time.Duration
	log         *zap.Logger
}

func NewService(
	validator *intake.Validator,
	store Store,
	revalidator Revalidator,
	clk clock.Clock,
	metrics Recorder,
	cfg Config,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if clk == nil {
		clk = clock.New()
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return &Service{
		validator:   validator,
		store:       store,
		revalidator: revalidator,
		clock:       clk,
		metrics:     metrics,
		timeout:     timeout,
		log:         log.Named("invoicing.service"),
	}
}

// Create validates the draft, stamps today's UTC date, inserts one row and
// refreshes the invoices view. The returned error is a *intake.ValidationError,
// ErrCreateFailed or ErrUnexpected.
func (s *Service) Create(ctx context.Context, draft intake.Draft) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("invoice creation panicked", zap.Any("panic", r), zap.Stack("stack"))
			result, err = Result{}, ErrUnexpected
		}
		if s.metrics != nil {
			s.metrics.RecordIntake(string(OutcomeOf(err)))
		}
	}()

	validated, err := s.validator.Validate(draft)
	if err != nil {
		return Result{}, err
	}

	today := s.clock.Now().UTC()
	invoice := &models.Invoice{
		CustomerID: validated.CustomerID,
		Amount:     validated.Amount,
		Status:     string(validated.Status),
		Date:       datatypes.Date(time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)),
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.Insert(writeCtx, invoice); err != nil {
		s.log.Error("failed to insert invoice",
			zap.String("customer_id", invoice.CustomerID),
			zap.String("amount", invoice.Amount.String()),
			zap.String("status", invoice.Status),
			zap.Error(err),
		)
		return Result{}, ErrCreateFailed
	}

	s.invalidate(ctx)

	s.log.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("customer_id", invoice.CustomerID),
	)

	return Result{
		Invoice: PersistedInvoice{
			ID:         invoice.ID,
			CustomerID: invoice.CustomerID,
			Amount:     invoice.Amount,
			Status:     invoice.Status,
			Date:       today.Format(dateLayout),
		},
		RedirectTo: InvoicesPath,
	}, nil
}

// invalidate is best effort: the row is already committed.
func (s *Service) invalidate(ctx context.Context) {
	if s.revalidator == nil {
		return
	}
	err := s.revalidator.Invalidate(ctx, InvoicesPath)
	if s.metrics != nil {
		s.metrics.RecordInvalidation(err)
	}
	if err != nil {
		s.log.Warn("failed to invalidate invoices view", zap.String("path", InvoicesPath), zap.Error(err))
	}
}
