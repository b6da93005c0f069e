package recurring

import (
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"accounting-ledger-backend/internal/models"
	"accounting-ledger-backend/internal/repository"
	"accounting-ledger-backend/internal/services/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db        *gorm.DB
	recurring *repository.RecurringRepository
	invoices  *repository.InvoiceRepository
	scheduler *Scheduler
}

func newFixture(t *testing.T, now time.Time) *fixture {
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
		&models.AccountTransfer{},
		&models.RecurringTransaction{},
		&models.RecurringGenerationLog{},
	))

	log := logrus.New()
	log.SetOutput(io.Discard)

	ledgerRepo := repository.NewLedgerRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	billRepo := repository.NewBillRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	journalizer := ledger.NewJournalizer(
		ledgerRepo, accountRepo, invoiceRepo, billRepo, expenseRepo,
		repository.NewPaymentRepository(db),
		repository.NewTransferRepository(db),
		log,
	)

	f := &fixture{
		db:        db,
		recurring: repository.NewRecurringRepository(db),
		invoices:  invoiceRepo,
	}
	f.scheduler = NewScheduler(f.recurring, invoiceRepo, expenseRepo, billRepo, journalizer, log)
	f.scheduler.SetClock(func() time.Time { return now })
	return f
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func invoiceTemplateJSON(t *testing.T) datatypes.JSON {
	t.Helper()
	data, err := json.Marshal(InvoiceTemplate{
		CustomerID: uuid.New(),
		LineItems: []TemplateLineItem{
			{Description: "Monthly retainer", Quantity: d("1"), Rate: d("500.00")},
		},
		TaxRate:   d("0.13"),
		DueInDays: 15,
	})
	require.NoError(t, err)
	return datatypes.JSON(data)
}

func TestCreateTemplateValidation(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	err := f.scheduler.CreateTemplate(&models.RecurringTransaction{
		TemplateName:    "bad frequency",
		TransactionType: models.RecurringTypeInvoice,
		Frequency:       "Fortnightly",
		StartDate:       now,
		TemplateData:    invoiceTemplateJSON(t),
	})
	assert.ErrorIs(t, err, ErrInvalidFrequency)

	err = f.scheduler.CreateTemplate(&models.RecurringTransaction{
		TemplateName:    "bad type",
		TransactionType: "Dividend",
		Frequency:       models.FrequencyMonthly,
		StartDate:       now,
		TemplateData:    invoiceTemplateJSON(t),
	})
	assert.ErrorIs(t, err, ErrInvalidTemplateType)

	err = f.scheduler.CreateTemplate(&models.RecurringTransaction{
		TemplateName:    "no data",
		TransactionType: models.RecurringTypeInvoice,
		Frequency:       models.FrequencyMonthly,
		StartDate:       now,
	})
	assert.ErrorIs(t, err, ErrEmptyTemplate)

	err = f.scheduler.CreateTemplate(&models.RecurringTransaction{
		TemplateName:    "no customer",
		TransactionType: models.RecurringTypeInvoice,
		Frequency:       models.FrequencyMonthly,
		StartDate:       now,
		TemplateData:    datatypes.JSON(`{"line_items":[{"amount":"10"}]}`),
	})
	assert.ErrorContains(t, err, "customer")
}

func TestProcessDueGeneratesAndAdvances(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	tmpl := &models.RecurringTransaction{
		TemplateName:    "Monthly retainer",
		TransactionType: models.RecurringTypeInvoice,
		Frequency:       models.FrequencyMonthly,
		StartDate:       now,
		TemplateData:    invoiceTemplateJSON(t),
	}
	require.NoError(t, f.scheduler.CreateTemplate(tmpl))

	report, err := f.scheduler.ProcessDue()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Succeeded)
	assert.Zero(t, report.Failed)

	// invoice created from the template, posted, and numbered
	invoices, err := f.invoices.List("")
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.True(t, strings.HasPrefix(invoices[0].InvoiceNumber, "REC-"))
	assert.True(t, invoices[0].Subtotal.Equal(d("500.00")))
	assert.True(t, invoices[0].TaxAmount.Equal(d("65.00")))
	assert.True(t, invoices[0].Total.Equal(d("565.00")))
	require.NotNil(t, invoices[0].RecurringTransactionID)
	assert.Equal(t, tmpl.ID, *invoices[0].RecurringTransactionID)

	// next date advanced one month; success logged
	reloaded, err := f.recurring.GetByID(tmpl.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.NextDate)
	assert.True(t, reloaded.NextDate.Equal(now.AddDate(0, 1, 0)), "next date = %s", reloaded.NextDate)
	require.NotNil(t, reloaded.LastGenerated)

	logs, err := f.recurring.GenerationLog(&tmpl.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.GenerationSuccess, logs[0].Status)

	// nothing further is due until the next occurrence
	report, err = f.scheduler.ProcessDue()
	require.NoError(t, err)
	assert.Zero(t, report.Processed)
}

func TestProcessDueDoesNotAdvanceOnFailure(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	// stored template with a corrupt payload; generation must fail
	next := now.AddDate(0, 0, -1)
	tmpl := &models.RecurringTransaction{
		TemplateName:    "broken",
		TransactionType: models.RecurringTypeInvoice,
		Frequency:       models.FrequencyMonthly,
		StartDate:       next,
		NextDate:        &next,
		TemplateData:    datatypes.JSON(`{not json`),
		IsActive:        true,
	}
	require.NoError(t, f.recurring.Create(tmpl))

	report, err := f.scheduler.ProcessDue()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Failed)

	// next date unchanged so the occurrence is retried, failure logged
	reloaded, err := f.recurring.GetByID(tmpl.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.NextDate.Equal(next), "next date = %s", reloaded.NextDate)
	assert.Nil(t, reloaded.LastGenerated)

	logs, err := f.recurring.GenerationLog(&tmpl.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.GenerationFailed, logs[0].Status)
	assert.NotEmpty(t, logs[0].ErrorMessage)
}

func TestProcessDueFailureDoesNotStopBatch(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	earlier := now.AddDate(0, 0, -2)
	broken := &models.RecurringTransaction{
		TemplateName:    "broken",
		TransactionType: models.RecurringTypeInvoice,
		Frequency:       models.FrequencyMonthly,
		StartDate:       earlier,
		NextDate:        &earlier,
		TemplateData:    datatypes.JSON(`{not json`),
		IsActive:        true,
	}
	require.NoError(t, f.recurring.Create(broken))

	healthy := &models.RecurringTransaction{
		TemplateName:    "healthy",
		TransactionType: models.RecurringTypeInvoice,
		Frequency:       models.FrequencyMonthly,
		StartDate:       now,
		TemplateData:    invoiceTemplateJSON(t),
	}
	require.NoError(t, f.scheduler.CreateTemplate(healthy))

	report, err := f.scheduler.ProcessDue()
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
}

func TestProcessDueDeactivatesPastEndDate(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	endDate := now.AddDate(0, 0, 10)
	tmpl := &models.RecurringTransaction{
		TemplateName:    "expiring",
		TransactionType: models.RecurringTypeInvoice,
		Frequency:       models.FrequencyMonthly,
		StartDate:       now,
		EndDate:         &endDate,
		TemplateData:    invoiceTemplateJSON(t),
	}
	require.NoError(t, f.scheduler.CreateTemplate(tmpl))

	// the advanced next date (June 1) passes the end date, so the
	// template retires after this final generation
	report, err := f.scheduler.ProcessDue()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)

	reloaded, err := f.recurring.GetByID(tmpl.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
}

func TestNextOccurrenceFrequencies(t *testing.T) {
	base := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, base.AddDate(0, 0, 1), nextOccurrence(base, models.FrequencyDaily, 1))
	assert.Equal(t, base.AddDate(0, 0, 14), nextOccurrence(base, models.FrequencyWeekly, 2))
	assert.Equal(t, base.AddDate(0, 1, 0), nextOccurrence(base, models.FrequencyMonthly, 1))
	assert.Equal(t, base.AddDate(1, 0, 0), nextOccurrence(base, models.FrequencyYearly, 1))
}
