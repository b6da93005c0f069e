package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"accounting-ledger-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) *gin.Engine {
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

	log := logrus.New()
	log.SetOutput(io.Discard)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, db, log)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func TestVoidUnknownDocumentReturnsNotFound(t *testing.T) {
	r := setupRouter(t)
	missing := uuid.New().String()

	for _, path := range []string{
		"/api/invoices/" + missing + "/void",
		"/api/expenses/" + missing + "/void",
		"/api/bills/" + missing + "/void",
		"/api/payments/" + missing + "/void",
		"/api/transfers/" + missing + "/void",
	} {
		code, _ := doJSON(t, r, http.MethodPost, path, nil)
		assert.Equal(t, http.StatusNotFound, code, path)
	}
}

func TestVoidPaymentReopensInvoice(t *testing.T) {
	r := setupRouter(t)
	customerID := uuid.New().String()

	code, resp := doJSON(t, r, http.MethodPost, "/api/invoices", map[string]interface{}{
		"customer_id":  customerID,
		"invoice_date": "2026-01-10",
		"due_date":     "2026-02-09",
		"tax_amount":   "13.00",
		"line_items": []map[string]interface{}{
			{"description": "Consulting", "quantity": "1", "rate": "100.00"},
		},
	})
	require.Equal(t, http.StatusOK, code, resp)
	invoiceID := resp["invoice"].(map[string]interface{})["id"].(string)

	code, resp = doJSON(t, r, http.MethodPost, "/api/payments", map[string]interface{}{
		"customer_id":  customerID,
		"invoice_id":   invoiceID,
		"payment_date": "2026-01-20",
		"amount":       "113.00",
	})
	require.Equal(t, http.StatusOK, code, resp)
	assert.Equal(t, models.InvoicePaid, resp["invoice_status"])
	paymentID := resp["payment"].(map[string]interface{})["id"].(string)

	code, resp = doJSON(t, r, http.MethodPost, "/api/payments/"+paymentID+"/void", nil)
	require.Equal(t, http.StatusOK, code, resp)

	code, resp = doJSON(t, r, http.MethodGet, "/api/invoices/"+invoiceID, nil)
	require.Equal(t, http.StatusOK, code, resp)
	inv := resp["invoice"].(map[string]interface{})
	assert.Equal(t, models.InvoiceSent, inv["status"])
	assert.InDelta(t, 113.0, inv["amount_due"].(float64), 0.001)
	assert.InDelta(t, 0.0, inv["amount_paid"].(float64), 0.001)
}

func TestManualBankTransactionCategorization(t *testing.T) {
	r := setupRouter(t)
	accountID := uuid.New().String()

	code, resp := doJSON(t, r, http.MethodPost, "/api/banking/accounts/"+accountID+"/import", map[string]interface{}{
		"transactions": []map[string]interface{}{
			{"transaction_date": "2026-01-05", "description": "E-TRANSFER JANE", "amount": "250.00", "fit_id": "fit-77"},
		},
	})
	require.Equal(t, http.StatusOK, code, resp)

	code, resp = doJSON(t, r, http.MethodGet, "/api/banking/transactions?account_id="+accountID, nil)
	require.Equal(t, http.StatusOK, code, resp)
	txs := resp["transactions"].([]interface{})
	require.Len(t, txs, 1)
	txID := txs[0].(map[string]interface{})["id"].(string)

	matchedID := uuid.New().String()
	code, resp = doJSON(t, r, http.MethodPut, "/api/banking/transactions/"+txID, map[string]interface{}{
		"status":                   models.BankTxnMatched,
		"matched_transaction_type": "payment",
		"matched_transaction_id":   matchedID,
	})
	require.Equal(t, http.StatusOK, code, resp)
	tx := resp["transaction"].(map[string]interface{})
	assert.Equal(t, models.BankTxnMatched, tx["status"])
	assert.Equal(t, "payment", tx["matched_transaction_type"])
	assert.Equal(t, matchedID, tx["matched_transaction_id"])

	code, resp = doJSON(t, r, http.MethodGet, "/api/banking/transactions?status=Matched", nil)
	require.Equal(t, http.StatusOK, code, resp)
	assert.Len(t, resp["transactions"].([]interface{}), 1)
}

func TestUpdateBankTransactionValidation(t *testing.T) {
	r := setupRouter(t)

	code, _ := doJSON(t, r, http.MethodPut, "/api/banking/transactions/"+uuid.New().String(), map[string]interface{}{
		"status": models.BankTxnExcluded,
	})
	assert.Equal(t, http.StatusNotFound, code)

	accountID := uuid.New().String()
	code, resp := doJSON(t, r, http.MethodPost, "/api/banking/accounts/"+accountID+"/import", map[string]interface{}{
		"transactions": []map[string]interface{}{
			{"transaction_date": "2026-01-06", "description": "RENT", "amount": "-1800.00", "fit_id": "fit-78"},
		},
	})
	require.Equal(t, http.StatusOK, code, resp)

	code, resp = doJSON(t, r, http.MethodGet, "/api/banking/transactions?account_id="+accountID, nil)
	require.Equal(t, http.StatusOK, code, resp)
	txID := resp["transactions"].([]interface{})[0].(map[string]interface{})["id"].(string)

	code, _ = doJSON(t, r, http.MethodPut, "/api/banking/transactions/"+txID, map[string]interface{}{
		"status": "Settled",
	})
	assert.Equal(t, http.StatusBadRequest, code)
}
