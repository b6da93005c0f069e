package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bill statuses.
const (
	BillDraft   = "Draft"
	BillOpen    = "Open"
	BillPartial = "Partial"
	BillPaid    = "Paid"
	BillOverdue = "Overdue"
	BillVoided  = "Voided"
)

type Bill struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BillNumber string          `gorm:"index" json:"bill_number"`
	SupplierID uuid.UUID       `gorm:"index" json:"supplier_id"`
	BillDate   time.Time       `json:"bill_date"`
	DueDate    time.Time       `json:"due_date"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(15,2)" json:"subtotal"`
	TaxAmount  decimal.Decimal `gorm:"type:decimal(15,2)" json:"tax_amount"`
	Total      decimal.Decimal `gorm:"type:decimal(15,2)" json:"total"`
	AmountPaid decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount_paid"`
	AmountDue  decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount_due"`
	Status     string          `gorm:"index" json:"status"`
	Memo       string          `json:"memo"`
	LineItems  []BillLineItem  `gorm:"foreignKey:BillID" json:"line_items"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type BillLineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BillID      uuid.UUID       `gorm:"index" json:"bill_id"`
	AccountID   *uuid.UUID      `json:"account_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(15,2)" json:"tax_amount"`
	SortOrder   int             `json:"sort_order"`
}
