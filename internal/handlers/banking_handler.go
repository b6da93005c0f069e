package handler

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"accounting-ledger-backend/internal/models"
	"accounting-ledger-backend/internal/repository"
	"accounting-ledger-backend/internal/services/bankrules"
	"accounting-ledger-backend/internal/services/reconciliation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BankingHandler struct {
	transactions    *repository.BankTransactionRepository
	rules           *repository.BankRuleRepository
	ruleEngine      *bankrules.Engine
	reconciliations *reconciliation.Service
}

func NewBankingHandler(
	transactions *repository.BankTransactionRepository,
	rules *repository.BankRuleRepository,
	ruleEngine *bankrules.Engine,
	reconciliations *reconciliation.Service,
) *BankingHandler {
	return &BankingHandler{
		transactions:    transactions,
		rules:           rules,
		ruleEngine:      ruleEngine,
		reconciliations: reconciliations,
	}
}

type importRowPayload struct {
	TransactionDate string          `json:"transaction_date"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	FitID           string          `json:"fit_id"`
}

func (h *BankingHandler) ImportTransactions(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account ID"})
		return
	}
	var payload struct {
		Transactions []importRowPayload `json:"transactions"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	rows := make([]repository.BankTransactionImport, 0, len(payload.Transactions))
	for _, row := range payload.Transactions {
		date, err := parseDate(row.TransactionDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction date, expected yyyy-mm-dd"})
			return
		}
		rows = append(rows, repository.BankTransactionImport{
			TransactionDate: date,
			Description:     row.Description,
			Amount:          row.Amount,
			FitID:           row.FitID,
		})
	}

	imported, skipped, err := h.transactions.Import(accountID, rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	matched, err := h.ruleEngine.ApplyToAccount(accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "bank transactions imported",
		"imported": imported,
		"skipped":  skipped,
		"matched":  matched,
	})
}

// UploadTransactions imports a bank feed CSV: date, description, amount, fitId.
func (h *BankingHandler) UploadTransactions(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account ID"})
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	// Skip header
	_, _ = reader.Read()

	var rows []repository.BankTransactionImport
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		if len(record) < 3 || strings.Join(record, "") == "" {
			continue
		}

		date, err := time.Parse(dateLayout, strings.TrimSpace(record[0]))
		if err != nil {
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil {
			continue
		}
		fitID := ""
		if len(record) > 3 {
			fitID = strings.TrimSpace(record[3])
		}
		rows = append(rows, repository.BankTransactionImport{
			TransactionDate: date,
			Description:     strings.TrimSpace(record[1]),
			Amount:          amount,
			FitID:           fitID,
		})
	}

	imported, skipped, err := h.transactions.Import(accountID, rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	matched, err := h.ruleEngine.ApplyToAccount(accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file":     header.Filename,
		"imported": imported,
		"skipped":  skipped,
		"matched":  matched,
	})
}

func (h *BankingHandler) ListTransactions(c *gin.Context) {
	accountID, err := parseOptionalUUID(c.Query("account_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account ID"})
		return
	}
	txs, err := h.transactions.List(accountID, c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// UpdateTransaction is the manual categorization path: the reviewer confirms
// a rule suggestion, matches the feed row to an existing transaction, or
// recategorizes it by hand.
func (h *BankingHandler) UpdateTransaction(c *gin.Context) {
	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}
	if _, err := h.transactions.GetByID(txID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "bank transaction not found"})
		return
	}
	var payload struct {
		Status                 *string `json:"status"`
		CategoryAccountID      *string `json:"category_account_id"`
		Category               *string `json:"category"`
		Payee                  *string `json:"payee"`
		Memo                   *string `json:"memo"`
		MatchedTransactionType *string `json:"matched_transaction_type"`
		MatchedTransactionID   *string `json:"matched_transaction_id"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	updates := map[string]interface{}{}
	if payload.Status != nil {
		switch *payload.Status {
		case models.BankTxnForReview, models.BankTxnCategorized, models.BankTxnExcluded, models.BankTxnMatched:
			updates["status"] = *payload.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}
	if payload.CategoryAccountID != nil {
		categoryAccountID, err := parseOptionalUUID(*payload.CategoryAccountID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category account ID"})
			return
		}
		updates["category_account_id"] = categoryAccountID
	}
	if payload.Category != nil {
		updates["category"] = *payload.Category
	}
	if payload.Payee != nil {
		updates["payee"] = *payload.Payee
	}
	if payload.Memo != nil {
		updates["memo"] = *payload.Memo
	}
	if payload.MatchedTransactionType != nil {
		updates["matched_transaction_type"] = *payload.MatchedTransactionType
	}
	if payload.MatchedTransactionID != nil {
		matchedID, err := parseOptionalUUID(*payload.MatchedTransactionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid matched transaction ID"})
			return
		}
		updates["matched_transaction_id"] = matchedID
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no updatable fields in payload"})
		return
	}

	if err := h.transactions.Update(txID, updates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	tx, err := h.transactions.GetByID(txID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bank transaction updated", "transaction": tx})
}

func (h *BankingHandler) ApplyRules(c *gin.Context) {
	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}
	app, err := h.ruleEngine.ApplyRules(txID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": app})
}

func (h *BankingHandler) ExcludeTransaction(c *gin.Context) {
	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}
	if err := h.transactions.Update(txID, map[string]interface{}{"status": models.BankTxnExcluded}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction excluded"})
}

func (h *BankingHandler) CreateRule(c *gin.Context) {
	var payload struct {
		Name            string                 `json:"name"`
		Priority        int                    `json:"priority"`
		Conditions      []models.RuleCondition `json:"conditions"`
		AssignAccountID string                 `json:"assign_account_id"`
		AssignCategory  string                 `json:"assign_category"`
		AssignPayee     string                 `json:"assign_payee"`
		AutoConfirm     bool                   `json:"auto_confirm"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rule name required"})
		return
	}
	assignAccountID, err := parseOptionalUUID(payload.AssignAccountID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account ID"})
		return
	}

	rule, err := h.rules.Create(repository.BankRuleInput{
		Name:            payload.Name,
		Priority:        payload.Priority,
		Conditions:      payload.Conditions,
		AssignAccountID: assignAccountID,
		AssignCategory:  payload.AssignCategory,
		AssignPayee:     payload.AssignPayee,
		AutoConfirm:     payload.AutoConfirm,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bank rule created", "rule": rule})
}

func (h *BankingHandler) ListRules(c *gin.Context) {
	rules, err := h.rules.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

func (h *BankingHandler) UpdateRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule ID"})
		return
	}
	var payload struct {
		Name        *string `json:"name"`
		Priority    *int    `json:"priority"`
		AutoConfirm *bool   `json:"auto_confirm"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	updates := map[string]interface{}{}
	if payload.Name != nil {
		updates["name"] = *payload.Name
	}
	if payload.Priority != nil {
		updates["priority"] = *payload.Priority
	}
	if payload.AutoConfirm != nil {
		updates["auto_confirm"] = *payload.AutoConfirm
	}
	if payload.IsActive != nil {
		updates["is_active"] = *payload.IsActive
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no updatable fields in payload"})
		return
	}

	if err := h.rules.Update(id, updates); err != nil {
		if errors.Is(err, repository.ErrBankRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "bank rule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bank rule updated"})
}

func (h *BankingHandler) DeleteRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule ID"})
		return
	}
	if err := h.rules.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bank rule deleted"})
}

func (h *BankingHandler) OpenReconciliation(c *gin.Context) {
	var payload struct {
		AccountID        string          `json:"account_id"`
		StatementDate    string          `json:"statement_date"`
		StatementBalance decimal.Decimal `json:"statement_balance"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	accountID, err := uuid.Parse(payload.AccountID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account ID"})
		return
	}
	statementDate, err := parseDate(payload.StatementDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement date, expected yyyy-mm-dd"})
		return
	}

	ws, err := h.reconciliations.Open(accountID, statementDate, payload.StatementBalance)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (h *BankingHandler) GetReconciliation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reconciliation ID"})
		return
	}
	ws, err := h.reconciliations.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "reconciliation not found"})
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (h *BankingHandler) ToggleReconciled(c *gin.Context) {
	recID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reconciliation ID"})
		return
	}
	var payload struct {
		TransactionID string `json:"transaction_id"`
		Reconciled    bool   `json:"reconciled"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	txID, err := uuid.Parse(payload.TransactionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	ws, err := h.reconciliations.Toggle(recID, txID, payload.Reconciled)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (h *BankingHandler) CompleteReconciliation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reconciliation ID"})
		return
	}
	rec, err := h.reconciliations.Complete(id)
	if err != nil {
		if errors.Is(err, reconciliation.ErrNotBalanced) || errors.Is(err, reconciliation.ErrAlreadyCompleted) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reconciliation completed", "reconciliation": rec})
}
