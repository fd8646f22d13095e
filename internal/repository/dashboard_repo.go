package repository

import (
	"context"
	"errors"
	"fmt"

	"invoice-dashboard-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("not found")

// Querier is the subset of *pgxpool.Pool the dashboard queries need.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DashboardRepository runs the aggregate SQL behind the dashboard. Amounts are cents.
type DashboardRepository struct {
	db Querier
}

func NewDashboardRepository(db Querier) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// LatestInvoiceRaw is a LatestInvoice before currency formatting.
type LatestInvoiceRaw struct {
	ID       uuid.UUID
	Name     string
	Email    string
	ImageURL string
	Amount   int64
}

type StatusTotals struct {
	Paid    int64
	Pending int64
}

func (r *DashboardRepository) Revenue(ctx context.Context) ([]models.Revenue, error) {
	rows, err := r.db.Query(ctx, `SELECT month, revenue FROM revenue`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revenue []models.Revenue
	for rows.Next() {
		var rev models.Revenue
		if err := rows.Scan(&rev.Month, &rev.Revenue); err != nil {
			return nil, err
		}
		revenue = append(revenue, rev)
	}
	return revenue, rows.Err()
}

func (r *DashboardRepository) LatestInvoices(ctx context.Context, limit int) ([]LatestInvoiceRaw, error) {
	query := `
		SELECT invoices.id, customers.name, customers.email, customers.image_url, invoices.amount::bigint
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		ORDER BY invoices.date DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var latest []LatestInvoiceRaw
	for rows.Next() {
		var inv LatestInvoiceRaw
		if err := rows.Scan(&inv.ID, &inv.Name, &inv.Email, &inv.ImageURL, &inv.Amount); err != nil {
			return nil, err
		}
		latest = append(latest, inv)
	}
	return latest, rows.Err()
}

func (r *DashboardRepository) CountInvoices(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&count)
	return count, err
}

func (r *DashboardRepository) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count)
	return count, err
}

func (r *DashboardRepository) StatusTotals(ctx context.Context) (StatusTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'paid' THEN amount ELSE 0 END), 0)::bigint AS paid,
			COALESCE(SUM(CASE WHEN status = 'pending' THEN amount ELSE 0 END), 0)::bigint AS pending
		FROM invoices
	`
	var totals StatusTotals
	err := r.db.QueryRow(ctx, query).Scan(&totals.Paid, &totals.Pending)
	return totals, err
}

// InvoiceByID returns the edit-form view of an invoice with its amount still in cents.
func (r *DashboardRepository) InvoiceByID(ctx context.Context, id uuid.UUID) (*models.InvoiceForm, error) {
	query := `
		SELECT invoices.id, invoices.customer_id::text, invoices.amount::text, invoices.status
		FROM invoices
		WHERE invoices.id = $1
	`
	var (
		form   models.InvoiceForm
		amount string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(&form.ID, &form.CustomerID, &amount, &form.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	form.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	return &form, nil
}

func (r *DashboardRepository) FilteredCustomers(ctx context.Context, search string) ([]models.CustomerTotals, error) {
	query := `
		SELECT
			customers.id,
			customers.name,
			customers.email,
			customers.image_url,
			COUNT(invoices.id) AS total_invoices,
			COALESCE(SUM(CASE WHEN invoices.status = 'pending' THEN invoices.amount ELSE 0 END), 0)::bigint AS total_pending,
			COALESCE(SUM(CASE WHEN invoices.status = 'paid' THEN invoices.amount ELSE 0 END), 0)::bigint AS total_paid
		FROM customers
		LEFT JOIN invoices ON customers.id = invoices.customer_id
		WHERE customers.name ILIKE $1 OR customers.email ILIKE $1
		GROUP BY customers.id, customers.name, customers.email, customers.image_url
		ORDER BY customers.name ASC
	`
	rows, err := r.db.Query(ctx, query, "%"+search+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.CustomerTotals
	for rows.Next() {
		var c models.CustomerTotals
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL, &c.TotalInvoices, &c.TotalPending, &c.TotalPaid); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
