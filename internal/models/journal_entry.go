package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Source transaction kinds a journal entry can be tagged with.
const (
	SourceTypeInvoice     = "invoice"
	SourceTypeExpense     = "expense"
	SourceTypeBill        = "bill"
	SourceTypePayment     = "payment"
	SourceTypeBillPayment = "bill_payment"
	SourceTypeTransfer    = "transfer"
)

// JournalEntry is immutable once posted. Corrections are made by posting a
// reversing entry and flagging the original, never by editing or deleting.
type JournalEntry struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EntryNumber      string     `gorm:"uniqueIndex" json:"entry_number"`
	EntryDate        time.Time  `gorm:"index" json:"entry_date"`
	Memo             string     `json:"memo"`
	IsAdjusting      bool       `json:"is_adjusting"`
	SourceType       string     `gorm:"index:idx_entry_source" json:"source_type"`
	SourceID         *uuid.UUID `gorm:"index:idx_entry_source" json:"source_id"`
	IsReversed       bool       `gorm:"index" json:"is_reversed"`
	ReversedByEntryID *uuid.UUID `json:"reversed_by_entry_id"`
	Lines            []JournalEntryLine `gorm:"foreignKey:JournalEntryID" json:"lines"`
	CreatedAt        time.Time  `json:"created_at"`
}

type JournalEntryLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	JournalEntryID uuid.UUID       `gorm:"index" json:"journal_entry_id"`
	AccountID      uuid.UUID       `gorm:"index" json:"account_id"`
	Debit          decimal.Decimal `gorm:"type:decimal(15,2)" json:"debit"`
	Credit         decimal.Decimal `gorm:"type:decimal(15,2)" json:"credit"`
	Description    string          `json:"description"`
	CustomerID     *uuid.UUID      `gorm:"index" json:"customer_id"`
	SupplierID     *uuid.UUID      `gorm:"index" json:"supplier_id"`
	SortOrder      int             `json:"sort_order"`
}
