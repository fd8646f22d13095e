package repository

import (
	"context"
	"strings"

	"invoice-dashboard-backend/internal/models"

	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Insert writes one invoice row. The row id is assigned by the model hook when empty.
func (r *InvoiceRepository) Insert(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

// Search returns one page of invoices joined with their customers, newest first.
func (r *InvoiceRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.InvoiceRow, error) {
	var rows []models.InvoiceRow
	err := r.filtered(ctx, query).
		Select(`invoices.id, invoices.customer_id, customers.name, customers.email, customers.image_url,
			invoices.amount, invoices.date, invoices.status`).
		Order("invoices.date DESC, invoices.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}

// CountMatching counts the invoices Search would page through.
func (r *InvoiceRepository) CountMatching(ctx context.Context, query string) (int64, error) {
	var count int64
	err := r.filtered(ctx, query).Count(&count).Error
	return count, err
}

func (r *InvoiceRepository) filtered(ctx context.Context, query string) *gorm.DB {
	stmt := r.db.WithContext(ctx).
		Table("invoices").
		Joins("JOIN customers ON customers.id = invoices.customer_id")

	query = strings.TrimSpace(query)
	if query == "" {
		return stmt
	}

	like := "%" + strings.ToLower(query) + "%"
	return stmt.Where(
		`LOWER(customers.name) LIKE ? OR LOWER(customers.email) LIKE ?
		OR CAST(invoices.amount AS TEXT) LIKE ? OR CAST(invoices.date AS TEXT) LIKE ?
		OR LOWER(invoices.status) LIKE ?`,
		like, like, like, like, like,
	)
}
