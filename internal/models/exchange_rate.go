package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExchangeRate struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	FromCurrency  string          `gorm:"size:3;index:idx_rate_pair" json:"from_currency"`
	ToCurrency    string          `gorm:"size:3;index:idx_rate_pair" json:"to_currency"`
	Rate          decimal.Decimal `gorm:"type:decimal(15,6)" json:"rate"`
	EffectiveDate time.Time       `gorm:"index" json:"effective_date"`
	Source        string          `json:"source"`
	CreatedAt     time.Time       `json:"created_at"`
}
