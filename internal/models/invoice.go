package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice statuses.
const (
	InvoiceDraft     = "Draft"
	InvoiceSent      = "Sent"
	InvoicePartial   = "Partial"
	InvoicePaid      = "Paid"
	InvoiceOverdue   = "Overdue"
	InvoiceDeposited = "Deposited"
	InvoiceVoided    = "Voided"
)

type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"uniqueIndex" json:"invoice_number"`
	CustomerID    uuid.UUID       `gorm:"index" json:"customer_id"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       time.Time       `json:"due_date"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(15,2)" json:"subtotal"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(15,2)" json:"tax_amount"`
	Total         decimal.Decimal `gorm:"type:decimal(15,2)" json:"total"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount_paid"`
	AmountDue     decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount_due"`
	Status        string          `gorm:"index" json:"status"`
	Currency      string          `gorm:"size:3" json:"currency"`
	ExchangeRate  decimal.Decimal `gorm:"type:decimal(15,6)" json:"exchange_rate"`
	Notes         string          `json:"notes"`
	RecurringTransactionID *uuid.UUID `gorm:"index" json:"recurring_transaction_id"`
	LineItems     []InvoiceLineItem `gorm:"foreignKey:InvoiceID" json:"line_items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type InvoiceLineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"index" json:"invoice_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(10,2)" json:"quantity"`
	Rate        decimal.Decimal `gorm:"type:decimal(15,2)" json:"rate"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(15,2)" json:"tax_amount"`
	SortOrder   int             `json:"sort_order"`
}
