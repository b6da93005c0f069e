package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ReconciliationInProgress = "In Progress"
	ReconciliationCompleted  = "Completed"
)

type Reconciliation struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID        uuid.UUID       `gorm:"index" json:"account_id"`
	StatementDate    time.Time       `json:"statement_date"`
	StatementBalance decimal.Decimal `gorm:"type:decimal(15,2)" json:"statement_balance"`
	ClearedBalance   decimal.Decimal `gorm:"type:decimal(15,2)" json:"cleared_balance"`
	Difference       decimal.Decimal `gorm:"type:decimal(15,2)" json:"difference"`
	Status           string          `gorm:"index" json:"status"`
	CompletedAt      *time.Time      `json:"completed_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
