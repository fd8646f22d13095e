package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"

	"invoice-dashboard-backend/internal/format"
	"invoice-dashboard-backend/internal/models"
	"invoice-dashboard-backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	ItemsPerPage       = 6
	latestInvoiceCount = 5

	// MaxPage keeps the row offset within int32.
	MaxPage = math.MaxInt32 / ItemsPerPage
)

var (
	ErrFetchFailed     = errors.New("fetch_failed")
	ErrInvoiceNotFound = errors.New("invoice_not_found")
	ErrInvalidID       = errors.New("invalid_id")

	errNoAggregates = errors.New("aggregate queries need a postgres pool")
)

// Queries is the aggregate SQL side of the dashboard.
type Queries interface {
	Revenue(ctx context.Context) ([]models.Revenue, error)
	LatestInvoices(ctx context.Context, limit int) ([]repository.LatestInvoiceRaw, error)
	CountInvoices(ctx context.Context) (int64, error)
	CountCustomers(ctx context.Context) (int64, error)
	StatusTotals(ctx context.Context) (repository.StatusTotals, error)
	InvoiceByID(ctx context.Context, id uuid.UUID) (*models.InvoiceForm, error)
	FilteredCustomers(ctx context.Context, search string) ([]models.CustomerTotals, error)
}

type InvoiceSearcher interface {
	Search(ctx context.Context, query string, limit, offset int) ([]models.InvoiceRow, error)
	CountMatching(ctx context.Context, query string) (int64, error)
}

type CustomerLister interface {
	ListFields(ctx context.Context) ([]models.CustomerField, error)
}

type Service struct {
	queries   Queries
	invoices  InvoiceSearcher
	customers CustomerLister
	log       *zap.Logger
}

func NewService(queries Queries, invoices InvoiceSearcher, customers CustomerLister, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		queries:   queries,
		invoices:  invoices,
		customers: customers,
		log:       log.Named("dashboard.service"),
	}
}

// aggregates fails on sqlite, where no pgx pool backs the raw SQL.
func (s *Service) aggregates(op string) (Queries, error) {
	if s.queries == nil {
		return nil, s.fail(op, errNoAggregates)
	}
	return s.queries, nil
}

func (s *Service) fail(op string, err error) error {
	s.log.Error("dashboard query failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, ErrFetchFailed)
}

func (s *Service) Revenue(ctx context.Context) ([]models.Revenue, error) {
	q, err := s.aggregates("revenue")
	if err != nil {
		return nil, err
	}
	revenue, err := q.Revenue(ctx)
	if err != nil {
		return nil, s.fail("revenue", err)
	}
	return revenue, nil
}

func (s *Service) LatestInvoices(ctx context.Context) ([]models.LatestInvoice, error) {
	q, err := s.aggregates("latest invoices")
	if err != nil {
		return nil, err
	}
	raw, err := q.LatestInvoices(ctx, latestInvoiceCount)
	if err != nil {
		return nil, s.fail("latest invoices", err)
	}

	latest := make([]models.LatestInvoice, 0, len(raw))
	for _, inv := range raw {
		latest = append(latest, models.LatestInvoice{
			ID:       inv.ID,
			Name:     inv.Name,
			Email:    inv.Email,
			ImageURL: inv.ImageURL,
			Amount:   format.Currency(inv.Amount),
		})
	}
	return latest, nil
}

// CardData runs the count and total queries concurrently.
func (s *Service) CardData(ctx context.Context) (models.CardData, error) {
	q, err := s.aggregates("card data")
	if err != nil {
		return models.CardData{}, err
	}

	var (
		invoices, customers int64
		totals              repository.StatusTotals
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invoices, err = q.CountInvoices(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		customers, err = q.CountCustomers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = q.StatusTotals(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.CardData{}, s.fail("card data", err)
	}

	return models.CardData{
		NumberOfInvoices:     invoices,
		NumberOfCustomers:    customers,
		TotalPaidInvoices:    format.Currency(totals.Paid),
		TotalPendingInvoices: format.Currency(totals.Pending),
	}, nil
}

// FilteredInvoices returns one page of invoices matching query. Pages start at 1
// and are capped at MaxPage.
func (s *Service) FilteredInvoices(ctx context.Context, query string, page int) ([]models.InvoiceRow, error) {
	page = min(max(page, 1), MaxPage)
	rows, err := s.invoices.Search(ctx, query, ItemsPerPage, (page-1)*ItemsPerPage)
	if err != nil {
		return nil, s.fail("filtered invoices", err)
	}
	if rows == nil {
		rows = []models.InvoiceRow{}
	}
	return rows, nil
}

func (s *Service) InvoicePages(ctx context.Context, query string) (int, error) {
	count, err := s.invoices.CountMatching(ctx, query)
	if err != nil {
		return 0, s.fail("invoice pages", err)
	}
	return int(math.Ceil(float64(count) / ItemsPerPage)), nil
}

// InvoiceByID loads the edit form of an invoice with the amount converted from cents.
func (s *Service) InvoiceByID(ctx context.Context, rawID string) (*models.InvoiceForm, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrInvalidID
	}

	q, err := s.aggregates("invoice by id")
	if err != nil {
		return nil, err
	}
	form, err := q.InvoiceByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, s.fail("invoice by id", err)
	}

	form.Amount = form.Amount.Shift(-2)
	return form, nil
}

func (s *Service) Customers(ctx context.Context) ([]models.CustomerField, error) {
	customers, err := s.customers.ListFields(ctx)
	if err != nil {
		return nil, s.fail("customers", err)
	}
	return customers, nil
}

func (s *Service) FilteredCustomers(ctx context.Context, query string) ([]models.CustomersTableRow, error) {
	q, err := s.aggregates("customer table")
	if err != nil {
		return nil, err
	}
	totals, err := q.FilteredCustomers(ctx, query)
	if err != nil {
		return nil, s.fail("customer table", err)
	}

	rows := make([]models.CustomersTableRow, 0, len(totals))
	for _, c := range totals {
		rows = append(rows, models.CustomersTableRow{
			ID:            c.ID,
			Name:          c.Name,
			Email:         c.Email,
			ImageURL:      c.ImageURL,
			TotalInvoices: c.TotalInvoices,
			TotalPending:  format.Currency(c.TotalPending),
			TotalPaid:     format.Currency(c.TotalPaid),
		})
	}
	return rows, nil
}
