package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Payment struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID         uuid.UUID       `gorm:"index" json:"customer_id"`
	PaymentDate        time.Time       `json:"payment_date"`
	Amount             decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	PaymentMethod      string          `json:"payment_method"`
	ReferenceNumber    string          `json:"reference_number"`
	DepositToAccountID *uuid.UUID      `json:"deposit_to_account_id"`
	Memo               string          `json:"memo"`
	IsVoided           bool            `json:"is_voided"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// PaymentApplication links a payment to the invoice it pays down.
type PaymentApplication struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentID uuid.UUID       `gorm:"index" json:"payment_id"`
	InvoiceID uuid.UUID       `gorm:"index" json:"invoice_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
}
