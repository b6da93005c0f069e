package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bank transaction review statuses.
const (
	BankTxnForReview   = "For Review"
	BankTxnCategorized = "Categorized"
	BankTxnExcluded    = "Excluded"
	BankTxnMatched     = "Matched"
)

type BankTransaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID       uuid.UUID       `gorm:"index" json:"account_id"`
	TransactionDate time.Time       `gorm:"column:transaction_date;index" json:"transaction_date"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);index" json:"amount"`
	// FitID is the bank feed's external id, used for duplicate suppression on import.
	FitID                  string     `gorm:"index" json:"fit_id"`
	Status                 string     `gorm:"index" json:"status"`
	MatchedTransactionType string     `json:"matched_transaction_type"`
	MatchedTransactionID   *uuid.UUID `json:"matched_transaction_id"`
	CategoryAccountID      *uuid.UUID `json:"category_account_id"`
	Category               string     `json:"category"`
	Payee                  string     `json:"payee"`
	Memo                   string     `json:"memo"`
	IsReconciled           bool       `gorm:"index" json:"is_reconciled"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}
