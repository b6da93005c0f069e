package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeAsset     AccountType = "Asset"
	AccountTypeLiability AccountType = "Liability"
	AccountTypeEquity    AccountType = "Equity"
	AccountTypeIncome    AccountType = "Income"
	AccountTypeExpense   AccountType = "Expense"
)

// NormalDebit reports whether the account type's normal balance side is debit.
// Assets and Expenses grow with debits; everything else grows with credits.
func (t AccountType) NormalDebit() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

type Account struct {
	ID       uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string      `gorm:"index" json:"name"`
	Type     AccountType `gorm:"index" json:"type"`
	ParentID *uuid.UUID  `gorm:"index" json:"parent_id"`
	// Balance is a display cache rebuilt from journal lines; never authoritative.
	Balance   decimal.Decimal `gorm:"type:decimal(15,2)" json:"balance"`
	IsActive  bool            `gorm:"index" json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
