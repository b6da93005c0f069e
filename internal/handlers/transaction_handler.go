package handler

import (
	"net/http"
	"time"

	"accounting-ledger-backend/internal/models"
	"accounting-ledger-backend/internal/repository"
	"accounting-ledger-backend/internal/services/ledger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// TransactionHandler records business documents (invoices, expenses, bills,
// payments, transfers) and immediately journalizes them.
type TransactionHandler struct {
	invoices    *repository.InvoiceRepository
	expenses    *repository.ExpenseRepository
	bills       *repository.BillRepository
	payments    *repository.PaymentRepository
	transfers   *repository.TransferRepository
	journalizer *ledger.Journalizer
}

func NewTransactionHandler(
	invoices *repository.InvoiceRepository,
	expenses *repository.ExpenseRepository,
	bills *repository.BillRepository,
	payments *repository.PaymentRepository,
	transfers *repository.TransferRepository,
	journalizer *ledger.Journalizer,
) *TransactionHandler {
	return &TransactionHandler{
		invoices:    invoices,
		expenses:    expenses,
		bills:       bills,
		payments:    payments,
		transfers:   transfers,
		journalizer: journalizer,
	}
}

type lineItemPayload struct {
	Description string          `json:"description"`
	AccountID   string          `json:"account_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	return time.Parse(dateLayout, s)
}

func parseOptionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (h *TransactionHandler) CreateInvoice(c *gin.Context) {
	var payload struct {
		InvoiceNumber string            `json:"invoice_number"`
		CustomerID    string            `json:"customer_id"`
		InvoiceDate   string            `json:"invoice_date"`
		DueDate       string            `json:"due_date"`
		TaxAmount     decimal.Decimal   `json:"tax_amount"`
		Currency      string            `json:"currency"`
		Notes         string            `json:"notes"`
		LineItems     []lineItemPayload `json:"line_items"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	customerID, err := uuid.Parse(payload.CustomerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer ID"})
		return
	}
	invoiceDate, err := parseDate(payload.InvoiceDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice date, expected yyyy-mm-dd"})
		return
	}
	dueDate, err := parseDate(payload.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due date, expected yyyy-mm-dd"})
		return
	}
	if len(payload.LineItems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one line item required"})
		return
	}

	subtotal := decimal.Zero
	items := make([]models.InvoiceLineItem, 0, len(payload.LineItems))
	for _, li := range payload.LineItems {
		amount := li.Amount
		if amount.IsZero() {
			amount = li.Quantity.Mul(li.Rate).Round(2)
		}
		subtotal = subtotal.Add(amount)
		items = append(items, models.InvoiceLineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			Rate:        li.Rate,
			Amount:      amount,
			TaxAmount:   li.TaxAmount,
		})
	}
	total := subtotal.Add(payload.TaxAmount)

	invoiceNumber := payload.InvoiceNumber
	if invoiceNumber == "" {
		invoiceNumber = uuid.New().String()
	}
	currency := payload.Currency
	if currency == "" {
		currency = "CAD"
	}

	inv := &models.Invoice{
		InvoiceNumber: invoiceNumber,
		CustomerID:    customerID,
		InvoiceDate:   invoiceDate,
		DueDate:       dueDate,
		Subtotal:      subtotal,
		TaxAmount:     payload.TaxAmount,
		Total:         total,
		AmountDue:     total,
		Status:        models.InvoiceSent,
		Currency:      currency,
		ExchangeRate:  decimal.NewFromInt(1),
		Notes:         payload.Notes,
		LineItems:     items,
	}
	if err := h.invoices.Create(inv); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := h.journalizer.JournalizeInvoice(inv.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "invoice": inv})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "invoice created", "invoice": inv, "posting": result})
}

func (h *TransactionHandler) GetInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID"})
		return
	}
	inv, err := h.invoices.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (h *TransactionHandler) ListInvoices(c *gin.Context) {
	invoices, err := h.invoices.List(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (h *TransactionHandler) VoidInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID"})
		return
	}
	if _, err := h.invoices.GetByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
		return
	}
	result, err := h.journalizer.Reverse(models.SourceTypeInvoice, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.invoices.Update(id, map[string]interface{}{
		"status":     models.InvoiceVoided,
		"amount_due": decimal.Zero,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "invoice voided", "posting": result})
}

func (h *TransactionHandler) CreateExpense(c *gin.Context) {
	var payload struct {
		PayeeName        string            `json:"payee_name"`
		SupplierID       string            `json:"supplier_id"`
		PaymentAccountID string            `json:"payment_account_id"`
		ExpenseDate      string            `json:"expense_date"`
		TaxAmount        decimal.Decimal   `json:"tax_amount"`
		Memo             string            `json:"memo"`
		LineItems        []lineItemPayload `json:"line_items"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.PayeeName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payee name required"})
		return
	}
	supplierID, err := parseOptionalUUID(payload.SupplierID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supplier ID"})
		return
	}
	paymentAccountID, err := parseOptionalUUID(payload.PaymentAccountID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment account ID"})
		return
	}
	expenseDate, err := parseDate(payload.ExpenseDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expense date, expected yyyy-mm-dd"})
		return
	}

	subtotal := decimal.Zero
	items := make([]models.ExpenseLineItem, 0, len(payload.LineItems))
	for _, li := range payload.LineItems {
		accountID, err := parseOptionalUUID(li.AccountID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line item account ID"})
			return
		}
		subtotal = subtotal.Add(li.Amount)
		items = append(items, models.ExpenseLineItem{
			AccountID:   accountID,
			Description: li.Description,
			Amount:      li.Amount,
			TaxAmount:   li.TaxAmount,
		})
	}

	exp := &models.Expense{
		PayeeName:        payload.PayeeName,
		SupplierID:       supplierID,
		PaymentAccountID: paymentAccountID,
		ExpenseDate:      expenseDate,
		Subtotal:         subtotal,
		TaxAmount:        payload.TaxAmount,
		Total:            subtotal.Add(payload.TaxAmount),
		Status:           models.ExpenseRecorded,
		Memo:             payload.Memo,
		Currency:         "CAD",
		ExchangeRate:     decimal.NewFromInt(1),
		LineItems:        items,
	}
	if err := h.expenses.Create(exp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := h.journalizer.JournalizeExpense(exp.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "expense": exp})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "expense recorded", "expense": exp, "posting": result})
}

func (h *TransactionHandler) VoidExpense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expense ID"})
		return
	}
	if _, err := h.expenses.GetByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "expense not found"})
		return
	}
	result, err := h.journalizer.Reverse(models.SourceTypeExpense, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.expenses.Update(id, map[string]interface{}{"status": models.ExpenseVoided}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "expense voided", "posting": result})
}

func (h *TransactionHandler) CreateBill(c *gin.Context) {
	var payload struct {
		BillNumber string            `json:"bill_number"`
		SupplierID string            `json:"supplier_id"`
		BillDate   string            `json:"bill_date"`
		DueDate    string            `json:"due_date"`
		TaxAmount  decimal.Decimal   `json:"tax_amount"`
		Memo       string            `json:"memo"`
		LineItems  []lineItemPayload `json:"line_items"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	supplierID, err := uuid.Parse(payload.SupplierID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supplier ID"})
		return
	}
	billDate, err := parseDate(payload.BillDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bill date, expected yyyy-mm-dd"})
		return
	}
	dueDate, err := parseDate(payload.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due date, expected yyyy-mm-dd"})
		return
	}

	subtotal := decimal.Zero
	items := make([]models.BillLineItem, 0, len(payload.LineItems))
	for _, li := range payload.LineItems {
		accountID, err := parseOptionalUUID(li.AccountID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line item account ID"})
			return
		}
		subtotal = subtotal.Add(li.Amount)
		items = append(items, models.BillLineItem{
			AccountID:   accountID,
			Description: li.Description,
			Amount:      li.Amount,
			TaxAmount:   li.TaxAmount,
		})
	}
	total := subtotal.Add(payload.TaxAmount)

	billNumber := payload.BillNumber
	if billNumber == "" {
		billNumber = uuid.New().String()
	}

	bill := &models.Bill{
		BillNumber: billNumber,
		SupplierID: supplierID,
		BillDate:   billDate,
		DueDate:    dueDate,
		Subtotal:   subtotal,
		TaxAmount:  payload.TaxAmount,
		Total:      total,
		AmountDue:  total,
		Status:     models.BillOpen,
		Memo:       payload.Memo,
		LineItems:  items,
	}
	if err := h.bills.Create(bill); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := h.journalizer.JournalizeBill(bill.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "bill": bill})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bill recorded", "bill": bill, "posting": result})
}

func (h *TransactionHandler) VoidBill(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bill ID"})
		return
	}
	if _, err := h.bills.GetByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "bill not found"})
		return
	}
	result, err := h.journalizer.Reverse(models.SourceTypeBill, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.bills.Update(id, map[string]interface{}{
		"status":     models.BillVoided,
		"amount_due": decimal.Zero,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bill voided", "posting": result})
}

func (h *TransactionHandler) CreatePayment(c *gin.Context) {
	var payload struct {
		CustomerID         string          `json:"customer_id"`
		InvoiceID          string          `json:"invoice_id"`
		PaymentDate        string          `json:"payment_date"`
		Amount             decimal.Decimal `json:"amount"`
		PaymentMethod      string          `json:"payment_method"`
		ReferenceNumber    string          `json:"reference_number"`
		DepositToAccountID string          `json:"deposit_to_account_id"`
		Memo               string          `json:"memo"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	customerID, err := uuid.Parse(payload.CustomerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer ID"})
		return
	}
	if !payload.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment amount must be positive"})
		return
	}
	paymentDate, err := parseDate(payload.PaymentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment date, expected yyyy-mm-dd"})
		return
	}
	depositTo, err := parseOptionalUUID(payload.DepositToAccountID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deposit account ID"})
		return
	}

	pmt := &models.Payment{
		CustomerID:         customerID,
		PaymentDate:        paymentDate,
		Amount:             payload.Amount,
		PaymentMethod:      payload.PaymentMethod,
		ReferenceNumber:    payload.ReferenceNumber,
		DepositToAccountID: depositTo,
		Memo:               payload.Memo,
	}
	if err := h.payments.Create(pmt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var invoiceStatus string
	if payload.InvoiceID != "" {
		invoiceID, err := uuid.Parse(payload.InvoiceID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID"})
			return
		}
		if err := h.payments.Apply(pmt.ID, invoiceID, payload.Amount); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		invoiceStatus, err = h.invoices.ApplyPayment(invoiceID, payload.Amount)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.journalizer.JournalizePayment(pmt.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "payment": pmt})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "payment recorded",
		"payment":        pmt,
		"posting":        result,
		"invoice_status": invoiceStatus,
	})
}

func (h *TransactionHandler) VoidPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment ID"})
		return
	}
	if _, err := h.payments.GetByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	result, err := h.journalizer.Reverse(models.SourceTypePayment, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.payments.MarkVoided(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Reopen any invoices the payment had been applied to.
	apps, err := h.payments.ApplicationsFor(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, app := range apps {
		if _, err := h.invoices.UnapplyPayment(app.InvoiceID, app.Amount); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment voided", "posting": result})
}

func (h *TransactionHandler) PayBill(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bill ID"})
		return
	}
	var payload struct {
		Amount           decimal.Decimal `json:"amount"`
		PaymentAccountID string          `json:"payment_account_id"`
		PaymentDate      string          `json:"payment_date"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if !payload.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment amount must be positive"})
		return
	}
	paymentAccountID, err := uuid.Parse(payload.PaymentAccountID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment account ID"})
		return
	}
	paymentDate, err := parseDate(payload.PaymentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment date, expected yyyy-mm-dd"})
		return
	}

	result, err := h.journalizer.JournalizeBillPayment(billID, payload.Amount, paymentAccountID, paymentDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	status, err := h.bills.ApplyPayment(billID, payload.Amount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bill payment recorded", "posting": result, "bill_status": status})
}

func (h *TransactionHandler) CreateTransfer(c *gin.Context) {
	var payload struct {
		FromAccountID string          `json:"from_account_id"`
		ToAccountID   string          `json:"to_account_id"`
		Amount        decimal.Decimal `json:"amount"`
		TransferDate  string          `json:"transfer_date"`
		Memo          string          `json:"memo"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	fromID, err := uuid.Parse(payload.FromAccountID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source account ID"})
		return
	}
	toID, err := uuid.Parse(payload.ToAccountID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid destination account ID"})
		return
	}
	if fromID == toID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source and destination accounts must differ"})
		return
	}
	if !payload.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transfer amount must be positive"})
		return
	}
	transferDate, err := parseDate(payload.TransferDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transfer date, expected yyyy-mm-dd"})
		return
	}

	tr := &models.AccountTransfer{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        payload.Amount,
		TransferDate:  transferDate,
		Memo:          payload.Memo,
	}
	if err := h.transfers.Create(tr); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := h.journalizer.JournalizeTransfer(tr.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "transfer": tr})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transfer recorded", "transfer": tr, "posting": result})
}

func (h *TransactionHandler) VoidTransfer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transfer ID"})
		return
	}
	if _, err := h.transfers.GetByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transfer not found"})
		return
	}
	result, err := h.journalizer.Reverse(models.SourceTypeTransfer, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.transfers.MarkVoided(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transfer voided", "posting": result})
}
