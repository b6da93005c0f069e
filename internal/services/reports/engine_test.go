package reports

import (
	"testing"
	"time"

	"accounting-ledger-backend/internal/models"
	"accounting-ledger-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db       *gorm.DB
	ledger   *repository.LedgerRepository
	accounts *repository.AccountRepository
	invoices *repository.InvoiceRepository
	bills    *repository.BillRepository
	engine   *Engine
}

func newFixture(t *testing.T) *fixture {
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
		&models.Invoice{},
		&models.InvoiceLineItem{},
		&models.Bill{},
		&models.BillLineItem{},
		&models.Expense{},
		&models.ExpenseLineItem{},
		&models.Payment{},
	))

	f := &fixture{
		db:       db,
		ledger:   repository.NewLedgerRepository(db),
		accounts: repository.NewAccountRepository(db),
		invoices: repository.NewInvoiceRepository(db),
		bills:    repository.NewBillRepository(db),
	}
	f.engine = NewEngine(
		f.ledger, f.accounts, f.invoices, f.bills,
		repository.NewExpenseRepository(db),
		repository.NewPaymentRepository(db),
	)
	return f
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) post(t *testing.T, date time.Time, lines []models.JournalEntryLine) {
	t.Helper()
	require.NoError(t, f.ledger.PostEntry(&models.JournalEntry{EntryDate: date, Lines: lines}))
}

func (f *fixture) account(t *testing.T, name string, accountType models.AccountType) *models.Account {
	t.Helper()
	acct, err := f.accounts.Create(name, accountType, nil)
	require.NoError(t, err)
	return acct
}

func TestTrialBalanceDebitsEqualCredits(t *testing.T) {
	f := newFixture(t)
	cash := f.account(t, "Cash", models.AccountTypeAsset)
	sales := f.account(t, "Sales", models.AccountTypeIncome)
	rent := f.account(t, "Rent", models.AccountTypeExpense)

	now := time.Now()
	f.post(t, now, []models.JournalEntryLine{
		{AccountID: cash.ID, Debit: d("1000")},
		{AccountID: sales.ID, Credit: d("1000")},
	})
	f.post(t, now, []models.JournalEntryLine{
		{AccountID: rent.ID, Debit: d("300")},
		{AccountID: cash.ID, Credit: d("300")},
	})

	tb, err := f.engine.TrialBalance(now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, tb.TotalDebits.Equal(tb.TotalCredits),
		"debits %s != credits %s", tb.TotalDebits, tb.TotalCredits)
	assert.True(t, tb.TotalDebits.Equal(d("1300")))
	assert.Len(t, tb.Rows, 3)
}

func TestProfitAndLossEmptyPeriodIsZero(t *testing.T) {
	f := newFixture(t)
	f.account(t, "Sales", models.AccountTypeIncome)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)
	pl, err := f.engine.ProfitAndLoss(start, end)
	require.NoError(t, err)
	assert.True(t, pl.TotalIncome.IsZero())
	assert.True(t, pl.TotalExpenses.IsZero())
	assert.True(t, pl.NetProfit.IsZero())
	assert.Empty(t, pl.Income)
	assert.Empty(t, pl.Expenses)
}

func TestProfitAndLossRespectsDateRange(t *testing.T) {
	f := newFixture(t)
	cash := f.account(t, "Cash", models.AccountTypeAsset)
	sales := f.account(t, "Sales", models.AccountTypeIncome)

	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	jul := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	f.post(t, jan, []models.JournalEntryLine{
		{AccountID: cash.ID, Debit: d("500")},
		{AccountID: sales.ID, Credit: d("500")},
	})
	f.post(t, jul, []models.JournalEntryLine{
		{AccountID: cash.ID, Debit: d("700")},
		{AccountID: sales.ID, Credit: d("700")},
	})

	pl, err := f.engine.ProfitAndLoss(
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.True(t, pl.TotalIncome.Equal(d("700")))
	assert.True(t, pl.NetProfit.Equal(d("700")))
}

func TestBalanceSheetBalancesWithRetainedEarnings(t *testing.T) {
	f := newFixture(t)
	cash := f.account(t, "Cash", models.AccountTypeAsset)
	loan := f.account(t, "Bank Loan", models.AccountTypeLiability)
	sales := f.account(t, "Sales", models.AccountTypeIncome)
	rent := f.account(t, "Rent", models.AccountTypeExpense)

	now := time.Now()
	f.post(t, now, []models.JournalEntryLine{
		{AccountID: cash.ID, Debit: d("5000")},
		{AccountID: loan.ID, Credit: d("5000")},
	})
	f.post(t, now, []models.JournalEntryLine{
		{AccountID: cash.ID, Debit: d("900")},
		{AccountID: sales.ID, Credit: d("900")},
	})
	f.post(t, now, []models.JournalEntryLine{
		{AccountID: rent.ID, Debit: d("400")},
		{AccountID: cash.ID, Credit: d("400")},
	})

	bs, err := f.engine.BalanceSheet(now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, bs.RetainedEarnings.Equal(d("500")))
	assert.True(t, bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity)),
		"assets %s != liabilities %s + equity %s", bs.TotalAssets, bs.TotalLiabilities, bs.TotalEquity)
	assert.True(t, bs.TotalAssets.Equal(d("5500")))
}

func TestAgingBucketsOpenInvoices(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	mkInvoice := func(number string, dueDaysAgo int, amountDue string) {
		due := now.AddDate(0, 0, -dueDaysAgo)
		inv := &models.Invoice{
			InvoiceNumber: number,
			CustomerID:    uuid.New(),
			InvoiceDate:   due.AddDate(0, 0, -30),
			DueDate:       due,
			Total:         d(amountDue),
			AmountDue:     d(amountDue),
			Status:        models.InvoiceSent,
		}
		require.NoError(t, f.invoices.Create(inv))
	}
	mkInvoice("INV-A", -10, "100.00") // not yet due
	mkInvoice("INV-B", 15, "200.00")  // 1-30
	mkInvoice("INV-C", 45, "300.00")  // 31-60
	mkInvoice("INV-D", 120, "400.00") // 90+

	// paid invoices stay out of the report
	paid := &models.Invoice{
		InvoiceNumber: "INV-E", CustomerID: uuid.New(),
		DueDate: now.AddDate(0, 0, -200),
		Total:   d("50.00"), AmountDue: decimal.Zero, Status: models.InvoicePaid,
	}
	require.NoError(t, f.invoices.Create(paid))

	report, err := f.engine.Aging(AgingReceivable, now)
	require.NoError(t, err)
	assert.Len(t, report.Rows, 4)
	assert.True(t, report.Buckets["current"].Equal(d("100.00")))
	assert.True(t, report.Buckets["1-30"].Equal(d("200.00")))
	assert.True(t, report.Buckets["31-60"].Equal(d("300.00")))
	assert.True(t, report.Buckets["90+"].Equal(d("400.00")))
	assert.True(t, report.Total.Equal(d("1000.00")))
}

func TestCustomerBalancesMatchControlAccount(t *testing.T) {
	f := newFixture(t)
	ar, err := f.accounts.FindOrCreateSystem("Accounts Receivable", models.AccountTypeAsset)
	require.NoError(t, err)
	sales := f.account(t, "Sales", models.AccountTypeIncome)

	alice := uuid.New()
	bob := uuid.New()
	now := time.Now()
	f.post(t, now, []models.JournalEntryLine{
		{AccountID: ar.ID, Debit: d("100"), CustomerID: &alice},
		{AccountID: sales.ID, Credit: d("100")},
	})
	f.post(t, now, []models.JournalEntryLine{
		{AccountID: ar.ID, Debit: d("250"), CustomerID: &bob},
		{AccountID: sales.ID, Credit: d("250")},
	})

	balances, err := f.engine.CustomerBalances()
	require.NoError(t, err)
	require.Len(t, balances, 2)

	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Balance)
	}
	control, err := f.ledger.AccountBalance(ar.ID, nil)
	require.NoError(t, err)
	assert.True(t, total.Equal(control), "sub-ledger %s != control %s", total, control)
}

func TestUnpostedTransactionsFlagsMissingEntries(t *testing.T) {
	f := newFixture(t)

	inv := &models.Invoice{
		InvoiceNumber: "INV-1", CustomerID: uuid.New(),
		Total: d("100.00"), AmountDue: d("100.00"), Status: models.InvoiceSent,
	}
	require.NoError(t, f.invoices.Create(inv))

	unposted, err := f.engine.UnpostedTransactions()
	require.NoError(t, err)
	require.Len(t, unposted, 1)
	assert.Equal(t, models.SourceTypeInvoice, unposted[0].SourceType)
	assert.Equal(t, inv.ID, unposted[0].SourceID)

	// journalize it and the report comes back clean
	ar, err := f.accounts.FindOrCreateSystem("Accounts Receivable", models.AccountTypeAsset)
	require.NoError(t, err)
	sales := f.account(t, "Sales", models.AccountTypeIncome)
	sourceID := inv.ID
	require.NoError(t, f.ledger.PostEntry(&models.JournalEntry{
		EntryDate:  time.Now(),
		SourceType: models.SourceTypeInvoice,
		SourceID:   &sourceID,
		Lines: []models.JournalEntryLine{
			{AccountID: ar.ID, Debit: d("100.00")},
			{AccountID: sales.ID, Credit: d("100.00")},
		},
	}))

	unposted, err = f.engine.UnpostedTransactions()
	require.NoError(t, err)
	assert.Empty(t, unposted)
}

func TestGeneralLedgerRunningBalance(t *testing.T) {
	f := newFixture(t)
	cash := f.account(t, "Cash", models.AccountTypeAsset)
	sales := f.account(t, "Sales", models.AccountTypeIncome)

	day1 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	f.post(t, day1, []models.JournalEntryLine{
		{AccountID: cash.ID, Debit: d("100")},
		{AccountID: sales.ID, Credit: d("100")},
	})
	f.post(t, day2, []models.JournalEntryLine{
		{AccountID: cash.ID, Debit: d("50")},
		{AccountID: sales.ID, Credit: d("50")},
	})

	gl, err := f.engine.GeneralLedger(day1, day2)
	require.NoError(t, err)
	require.Len(t, gl, 2)

	for _, acct := range gl {
		if acct.AccountID == cash.ID {
			require.Len(t, acct.Lines, 2)
			assert.True(t, acct.Closing.Equal(d("150")))
		}
	}
}
