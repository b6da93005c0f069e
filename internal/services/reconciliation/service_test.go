package reconciliation

import (
	"io"
	"testing"
	"time"

	"accounting-ledger-backend/internal/models"
	"accounting-ledger-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db           *gorm.DB
	transactions *repository.BankTransactionRepository
	service      *Service
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
	require.NoError(t, db.AutoMigrate(&models.BankTransaction{}, &models.Reconciliation{}))

	log := logrus.New()
	log.SetOutput(io.Discard)

	f := &fixture{
		db:           db,
		transactions: repository.NewBankTransactionRepository(db),
	}
	f.service = NewService(repository.NewReconciliationRepository(db), f.transactions, log)
	return f
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) importTxns(t *testing.T, accountID uuid.UUID, date time.Time, amounts ...string) []uuid.UUID {
	t.Helper()
	rows := make([]repository.BankTransactionImport, 0, len(amounts))
	for _, a := range amounts {
		rows = append(rows, repository.BankTransactionImport{
			TransactionDate: date,
			Description:     "feed row",
			Amount:          d(a),
		})
	}
	_, _, err := f.transactions.Import(accountID, rows)
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(amounts))
	for _, a := range amounts {
		var tx models.BankTransaction
		require.NoError(t, f.db.First(&tx, "account_id = ? AND amount = ?", accountID, d(a)).Error)
		ids = append(ids, tx.ID)
	}
	return ids
}

func TestOpenStartsSessionWithFullDifference(t *testing.T) {
	f := newFixture(t)
	accountID := uuid.New()
	statementDate := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	f.importTxns(t, accountID, statementDate.AddDate(0, 0, -5), "100.00", "-40.00")

	ws, err := f.service.Open(accountID, statementDate, d("60.00"))
	require.NoError(t, err)
	assert.Len(t, ws.Uncleared, 2)
	assert.Empty(t, ws.Cleared)
	assert.True(t, ws.ClearedTotal.IsZero())
	assert.True(t, ws.Difference.Equal(d("60.00")))

	// reopening the same statement resumes the session
	again, err := f.service.Open(accountID, statementDate, d("60.00"))
	require.NoError(t, err)
	assert.Equal(t, ws.Reconciliation.ID, again.Reconciliation.ID)
}

func TestToggleRecomputesDifference(t *testing.T) {
	f := newFixture(t)
	accountID := uuid.New()
	statementDate := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	ids := f.importTxns(t, accountID, statementDate.AddDate(0, 0, -5), "100.00", "-40.00")

	ws, err := f.service.Open(accountID, statementDate, d("60.00"))
	require.NoError(t, err)

	ws, err = f.service.Toggle(ws.Reconciliation.ID, ids[0], true)
	require.NoError(t, err)
	assert.Len(t, ws.Cleared, 1)
	assert.True(t, ws.ClearedTotal.Equal(d("100.00")))
	assert.True(t, ws.Difference.Equal(d("-40.00")))

	ws, err = f.service.Toggle(ws.Reconciliation.ID, ids[1], true)
	require.NoError(t, err)
	assert.True(t, ws.ClearedTotal.Equal(d("60.00")))
	assert.True(t, ws.Difference.IsZero())

	// unmarking restores the difference
	ws, err = f.service.Toggle(ws.Reconciliation.ID, ids[1], false)
	require.NoError(t, err)
	assert.True(t, ws.Difference.Equal(d("-40.00")))
}

func TestToggleRejectsForeignTransaction(t *testing.T) {
	f := newFixture(t)
	accountID := uuid.New()
	otherAccount := uuid.New()
	statementDate := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	foreign := f.importTxns(t, otherAccount, statementDate.AddDate(0, 0, -5), "10.00")

	ws, err := f.service.Open(accountID, statementDate, d("0.00"))
	require.NoError(t, err)

	_, err = f.service.Toggle(ws.Reconciliation.ID, foreign[0], true)
	assert.Error(t, err)
}

func TestCompleteRequiresZeroDifference(t *testing.T) {
	f := newFixture(t)
	accountID := uuid.New()
	statementDate := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	ids := f.importTxns(t, accountID, statementDate.AddDate(0, 0, -5), "100.00", "-40.00")

	ws, err := f.service.Open(accountID, statementDate, d("60.00"))
	require.NoError(t, err)

	_, err = f.service.Complete(ws.Reconciliation.ID)
	assert.ErrorIs(t, err, ErrNotBalanced)

	_, err = f.service.Toggle(ws.Reconciliation.ID, ids[0], true)
	require.NoError(t, err)
	_, err = f.service.Toggle(ws.Reconciliation.ID, ids[1], true)
	require.NoError(t, err)

	rec, err := f.service.Complete(ws.Reconciliation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReconciliationCompleted, rec.Status)
	require.NotNil(t, rec.CompletedAt)

	// a completed session refuses further mutation
	_, err = f.service.Toggle(rec.ID, ids[0], false)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	_, err = f.service.Complete(rec.ID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestExcludedTransactionsStayOutOfWorkspace(t *testing.T) {
	f := newFixture(t)
	accountID := uuid.New()
	statementDate := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	ids := f.importTxns(t, accountID, statementDate.AddDate(0, 0, -5), "100.00", "-40.00")

	require.NoError(t, f.transactions.Update(ids[1], map[string]interface{}{
		"status": models.BankTxnExcluded,
	}))

	ws, err := f.service.Open(accountID, statementDate, d("100.00"))
	require.NoError(t, err)
	assert.Len(t, ws.Uncleared, 1)
	assert.True(t, ws.UnclearedTotal.Equal(d("100.00")))
}

func TestTransactionsAfterStatementDateAreIgnored(t *testing.T) {
	f := newFixture(t)
	accountID := uuid.New()
	statementDate := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	f.importTxns(t, accountID, statementDate.AddDate(0, 0, 3), "999.00")

	ws, err := f.service.Open(accountID, statementDate, d("0.00"))
	require.NoError(t, err)
	assert.Empty(t, ws.Uncleared)
	assert.Empty(t, ws.Cleared)
}
