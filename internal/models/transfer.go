package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountTransfer moves money between two balance-sheet accounts.
type AccountTransfer struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	FromAccountID  uuid.UUID       `gorm:"index" json:"from_account_id"`
	ToAccountID    uuid.UUID       `gorm:"index" json:"to_account_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	TransferDate   time.Time       `json:"transfer_date"`
	Memo           string          `json:"memo"`
	JournalEntryID *uuid.UUID      `json:"journal_entry_id"`
	IsVoided       bool            `json:"is_voided"`
	CreatedAt      time.Time       `json:"created_at"`
}
