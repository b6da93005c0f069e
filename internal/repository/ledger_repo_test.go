package repository

import (
	"testing"
	"time"

	"accounting-ledger-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.JournalEntry{},
		&models.JournalEntryLine{},
		&models.Customer{},
		&models.Supplier{},
		&models.Invoice{},
		&models.InvoiceLineItem{},
		&models.Bill{},
		&models.BillLineItem{},
		&models.Expense{},
		&models.ExpenseLineItem{},
		&models.Payment{},
		&models.PaymentApplication{},
		&models.AccountTransfer{},
		&models.ExchangeRate{},
		&models.RecurringTransaction{},
		&models.RecurringGenerationLog{},
		&models.BankTransaction{},
		&models.BankRule{},
		&models.Reconciliation{},
	))
	return db
}

func mustCreateAccount(t *testing.T, db *gorm.DB, name string, accountType models.AccountType) *models.Account {
	t.Helper()
	acct, err := NewAccountRepository(db).Create(name, accountType, nil)
	require.NoError(t, err)
	return acct
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPostEntryBalanced(t *testing.T) {
	db := openTestDB(t)
	repo := NewLedgerRepository(db)
	cash := mustCreateAccount(t, db, "Cash", models.AccountTypeAsset)
	sales := mustCreateAccount(t, db, "Sales", models.AccountTypeIncome)

	entry := &models.JournalEntry{
		EntryDate: time.Now(),
		Memo:      "cash sale",
		Lines: []models.JournalEntryLine{
			{AccountID: cash.ID, Debit: d("100")},
			{AccountID: sales.ID, Credit: d("100")},
		},
	}
	require.NoError(t, repo.PostEntry(entry))
	assert.Equal(t, "JE-0001", entry.EntryNumber)

	balance, err := repo.AccountBalance(cash.ID, nil)
	require.NoError(t, err)
	assert.True(t, balance.Equal(d("100")), "cash balance = %s", balance)

	balance, err = repo.AccountBalance(sales.ID, nil)
	require.NoError(t, err)
	assert.True(t, balance.Equal(d("100")), "sales balance = %s", balance)
}

func TestPostEntryRejectsImbalance(t *testing.T) {
	db := openTestDB(t)
	repo := NewLedgerRepository(db)
	cash := mustCreateAccount(t, db, "Cash", models.AccountTypeAsset)
	sales := mustCreateAccount(t, db, "Sales", models.AccountTypeIncome)

	err := repo.PostEntry(&models.JournalEntry{
		EntryDate: time.Now(),
		Lines: []models.JournalEntryLine{
			{AccountID: cash.ID, Debit: d("100")},
			{AccountID: sales.ID, Credit: d("99.50")},
		},
	})
	assert.ErrorIs(t, err, ErrImbalance)

	// nothing may be written on failure
	var count int64
	require.NoError(t, db.Model(&models.JournalEntry{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.JournalEntryLine{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPostEntryToleratesOneCentRounding(t *testing.T) {
	db := openTestDB(t)
	repo := NewLedgerRepository(db)
	cash := mustCreateAccount(t, db, "Cash", models.AccountTypeAsset)
	sales := mustCreateAccount(t, db, "Sales", models.AccountTypeIncome)

	err := repo.PostEntry(&models.JournalEntry{
		EntryDate: time.Now(),
		Lines: []models.JournalEntryLine{
			{AccountID: cash.ID, Debit: d("33.34")},
			{AccountID: sales.ID, Credit: d("33.33")},
		},
	})
	assert.NoError(t, err)
}

func TestPostEntryLineValidation(t *testing.T) {
	db := openTestDB(t)
	repo := NewLedgerRepository(db)
	cash := mustCreateAccount(t, db, "Cash", models.AccountTypeAsset)
	sales := mustCreateAccount(t, db, "Sales", models.AccountTypeIncome)

	err := repo.PostEntry(&models.JournalEntry{
		EntryDate: time.Now(),
		Lines: []models.JournalEntryLine{
			{AccountID: cash.ID, Debit: d("50")},
		},
	})
	assert.ErrorIs(t, err, ErrTooFewLines)

	err = repo.PostEntry(&models.JournalEntry{
		EntryDate: time.Now(),
		Lines: []models.JournalEntryLine{
			{AccountID: cash.ID, Debit: d("50"), Credit: d("50")},
			{AccountID: sales.ID, Credit: d("50")},
		},
	})
	assert.ErrorIs(t, err, ErrBothSides)

	err = repo.PostEntry(&models.JournalEntry{
		EntryDate: time.Now(),
		Lines: []models.JournalEntryLine{
			{AccountID: cash.ID},
			{AccountID: sales.ID, Credit: d("0")},
		},
	})
	assert.ErrorIs(t, err, ErrZeroAmount)

	err = repo.PostEntry(&models.JournalEntry{
		EntryDate: time.Now(),
		Lines: []models.JournalEntryLine{
			{AccountID: cash.ID, Debit: d("-10")},
			{AccountID: sales.ID, Credit: d("-10")},
		},
	})
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestPostEntryRejectsUnknownAccount(t *testing.T) {
	db := openTestDB(t)
	repo := NewLedgerRepository(db)
	cash := mustCreateAccount(t, db, "Cash", models.AccountTypeAsset)

	err := repo.PostEntry(&models.JournalEntry{
		EntryDate: time.Now(),
		Lines: []models.JournalEntryLine{
			{AccountID: cash.ID, Debit: d("10")},
			{AccountID: uuid.New(), Credit: d("10")},
		},
	})
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestEntryNumbersAreSequential(t *testing.T) {
	db := openTestDB(t)
	repo := NewLedgerRepository(db)
	cash := mustCreateAccount(t, db, "Cash", models.AccountTypeAsset)
	sales := mustCreateAccount(t, db, "Sales", models.AccountTypeIncome)

	for i, want := range []string{"JE-0001", "JE-0002", "JE-0003"} {
		entry := &models.JournalEntry{
			EntryDate: time.Now().AddDate(0, 0, i),
			Lines: []models.JournalEntryLine{
				{AccountID: cash.ID, Debit: d("10")},
				{AccountID: sales.ID, Credit: d("10")},
			},
		}
		require.NoError(t, repo.PostEntry(entry))
		assert.Equal(t, want, entry.EntryNumber)
	}
}

func TestActiveEntryForSource(t *testing.T) {
	db := openTestDB(t)
	repo := NewLedgerRepository(db)
	cash := mustCreateAccount(t, db, "Cash", models.AccountTypeAsset)
	sales := mustCreateAccount(t, db, "Sales", models.AccountTypeIncome)

	sourceID := uuid.New()
	entry := &models.JournalEntry{
		EntryDate:  time.Now(),
		SourceType: models.SourceTypeInvoice,
		SourceID:   &sourceID,
		Lines: []models.JournalEntryLine{
			{AccountID: cash.ID, Debit: d("25")},
			{AccountID: sales.ID, Credit: d("25")},
		},
	}
	require.NoError(t, repo.PostEntry(entry))

	found, err := repo.ActiveEntryForSource(models.SourceTypeInvoice, sourceID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, entry.ID, found.ID)
	assert.Len(t, found.Lines, 2)

	// reversed entries no longer count as active
	require.NoError(t, repo.MarkReversed(entry.ID, uuid.New()))
	found, err = repo.ActiveEntryForSource(models.SourceTypeInvoice, sourceID)
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = repo.ActiveEntryForSource(models.SourceTypeInvoice, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestAccountBalanceNormalSides(t *testing.T) {
	db := openTestDB(t)
	repo := NewLedgerRepository(db)
	cash := mustCreateAccount(t, db, "Cash", models.AccountTypeAsset)
	loan := mustCreateAccount(t, db, "Bank Loan", models.AccountTypeLiability)

	require.NoError(t, repo.PostEntry(&models.JournalEntry{
		EntryDate: time.Now(),
		Lines: []models.JournalEntryLine{
			{AccountID: cash.ID, Debit: d("500")},
			{AccountID: loan.ID, Credit: d("500")},
		},
	}))

	cashBal, err := repo.AccountBalance(cash.ID, nil)
	require.NoError(t, err)
	assert.True(t, cashBal.Equal(d("500")))

	loanBal, err := repo.AccountBalance(loan.ID, nil)
	require.NoError(t, err)
	assert.True(t, loanBal.Equal(d("500")))
}

func TestRecalculateBalancesUpdatesCache(t *testing.T) {
	db := openTestDB(t)
	repo := NewLedgerRepository(db)
	cash := mustCreateAccount(t, db, "Cash", models.AccountTypeAsset)
	sales := mustCreateAccount(t, db, "Sales", models.AccountTypeIncome)

	require.NoError(t, repo.PostEntry(&models.JournalEntry{
		EntryDate: time.Now(),
		Lines: []models.JournalEntryLine{
			{AccountID: cash.ID, Debit: d("75.25")},
			{AccountID: sales.ID, Credit: d("75.25")},
		},
	}))

	var reloaded models.Account
	require.NoError(t, db.First(&reloaded, "id = ?", cash.ID).Error)
	assert.True(t, reloaded.Balance.Equal(d("75.25")), "cached balance = %s", reloaded.Balance)
}
