package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ExpenseRecorded = "Recorded"
	ExpenseVoided   = "Voided"
)

type Expense struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PayeeName     string          `json:"payee_name"`
	SupplierID    *uuid.UUID      `gorm:"index" json:"supplier_id"`
	// PaymentAccountID is the bank/cash account the expense was paid from.
	PaymentAccountID *uuid.UUID   `json:"payment_account_id"`
	ExpenseDate   time.Time       `json:"expense_date"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(15,2)" json:"subtotal"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(15,2)" json:"tax_amount"`
	Total         decimal.Decimal `gorm:"type:decimal(15,2)" json:"total"`
	Status        string          `gorm:"index" json:"status"`
	Memo          string          `json:"memo"`
	Currency      string          `gorm:"size:3" json:"currency"`
	ExchangeRate  decimal.Decimal `gorm:"type:decimal(15,6)" json:"exchange_rate"`
	LineItems     []ExpenseLineItem `gorm:"foreignKey:ExpenseID" json:"line_items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ExpenseLineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ExpenseID   uuid.UUID       `gorm:"index" json:"expense_id"`
	AccountID   *uuid.UUID      `json:"account_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(15,2)" json:"tax_amount"`
	SortOrder   int             `json:"sort_order"`
}
