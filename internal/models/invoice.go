package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
)

// Invoice is a row of the invoices table. CustomerID is stored as customer_id.
type Invoice struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID string          `gorm:"column:customer_id;not null;index" json:"customer_id"`
	Amount     decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Status     string          `gorm:"not null;index" json:"status"`
	Date       datatypes.Date  `gorm:"column:date;type:date;not null" json:"date"`
}

func (Invoice) TableName() string { return "invoices" }

// BeforeCreate assigns the row identity when the caller left it empty.
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
