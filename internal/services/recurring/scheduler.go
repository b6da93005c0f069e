// Package recurring generates invoices, expenses and bills from saved
// templates on a schedule.
package recurring

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"accounting-ledger-backend/internal/models"
	"accounting-ledger-backend/internal/repository"
	"accounting-ledger-backend/internal/services/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

var (
	ErrInvalidFrequency    = errors.New("invalid frequency")
	ErrInvalidTemplateType = errors.New("invalid recurring transaction type")
	ErrEmptyTemplate       = errors.New("recurring template has no data")
)

// Template payloads, stored as JSON on the recurring transaction row.
// Each transaction type has its own shape and is validated at creation.

type InvoiceTemplate struct {
	CustomerID uuid.UUID           `json:"customer_id"`
	LineItems  []TemplateLineItem  `json:"line_items"`
	TaxRate    decimal.Decimal     `json:"tax_rate"`
	Currency   string              `json:"currency"`
	DueInDays  int                 `json:"due_in_days"`
	Notes      string              `json:"notes"`
}

type ExpenseTemplate struct {
	PayeeName        string             `json:"payee_name"`
	SupplierID       *uuid.UUID         `json:"supplier_id"`
	PaymentAccountID *uuid.UUID         `json:"payment_account_id"`
	LineItems        []TemplateLineItem `json:"line_items"`
	TaxRate          decimal.Decimal    `json:"tax_rate"`
	Memo             string             `json:"memo"`
}

type BillTemplate struct {
	SupplierID uuid.UUID          `json:"supplier_id"`
	LineItems  []TemplateLineItem `json:"line_items"`
	TaxRate    decimal.Decimal    `json:"tax_rate"`
	DueInDays  int                `json:"due_in_days"`
	Memo       string             `json:"memo"`
}

type TemplateLineItem struct {
	Description string          `json:"description"`
	AccountID   *uuid.UUID      `json:"account_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// ProcessReport summarizes one scheduler run.
type ProcessReport struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

type Scheduler struct {
	recurring   *repository.RecurringRepository
	invoices    *repository.InvoiceRepository
	expenses    *repository.ExpenseRepository
	bills       *repository.BillRepository
	journalizer *ledger.Journalizer
	log         *logrus.Logger

	// now is injectable for deterministic scheduling in tests.
	now func() time.Time
}

func NewScheduler(
	recurring *repository.RecurringRepository,
	invoices *repository.InvoiceRepository,
	expenses *repository.ExpenseRepository,
	bills *repository.BillRepository,
	journalizer *ledger.Journalizer,
	log *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		recurring:   recurring,
		invoices:    invoices,
		expenses:    expenses,
		bills:       bills,
		journalizer: journalizer,
		log:         log,
		now:         time.Now,
	}
}

// SetClock overrides the scheduler's notion of now.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// CreateTemplate validates and stores a recurring template. The template
// payload must decode into the shape matching its transaction type.
func (s *Scheduler) CreateTemplate(rec *models.RecurringTransaction) error {
	if !rec.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if rec.IntervalCount < 1 {
		rec.IntervalCount = 1
	}
	if err := validateTemplateData(rec.TransactionType, rec.TemplateData); err != nil {
		return err
	}
	if rec.NextDate == nil {
		start := rec.StartDate
		rec.NextDate = &start
	}
	rec.IsActive = true
	return s.recurring.Create(rec)
}

func validateTemplateData(transactionType string, data datatypes.JSON) error {
	if len(data) == 0 {
		return ErrEmptyTemplate
	}
	switch transactionType {
	case models.RecurringTypeInvoice:
		var t InvoiceTemplate
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("invalid invoice template: %w", err)
		}
		if t.CustomerID == uuid.Nil {
			return errors.New("invoice template requires a customer")
		}
		if len(t.LineItems) == 0 {
			return errors.New("invoice template requires at least one line item")
		}
	case models.RecurringTypeExpense:
		var t ExpenseTemplate
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("invalid expense template: %w", err)
		}
		if t.PayeeName == "" {
			return errors.New("expense template requires a payee")
		}
		if len(t.LineItems) == 0 {
			return errors.New("expense template requires at least one line item")
		}
	case models.RecurringTypeBill:
		var t BillTemplate
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("invalid bill template: %w", err)
		}
		if t.SupplierID == uuid.Nil {
			return errors.New("bill template requires a supplier")
		}
		if len(t.LineItems) == 0 {
			return errors.New("bill template requires at least one line item")
		}
	default:
		return ErrInvalidTemplateType
	}
	return nil
}

// ProcessDue generates a transaction for each active template whose next
// date has arrived. Templates are processed sequentially; a failure is
// logged against its template and does not stop the batch. The next date
// only advances after a successful generation, so a failed occurrence is
// retried on the next run rather than silently skipped.
func (s *Scheduler) ProcessDue() (*ProcessReport, error) {
	now := s.now()
	due, err := s.recurring.Due(now)
	if err != nil {
		return nil, err
	}

	report := &ProcessReport{}
	for _, tmpl := range due {
		report.Processed++
		entityType, entityID, err := s.generate(&tmpl)
		logRow := &models.RecurringGenerationLog{
			RecurringTransactionID: tmpl.ID,
			GeneratedEntityType:    entityType,
			GeneratedEntityID:      entityID,
			GeneratedAt:            now,
		}
		if err != nil {
			report.Failed++
			logRow.Status = models.GenerationFailed
			logRow.ErrorMessage = err.Error()
			s.log.WithFields(logrus.Fields{
				"template_id":   tmpl.ID,
				"template_name": tmpl.TemplateName,
			}).WithError(err).Error("recurring generation failed")
			if logErr := s.recurring.AppendLog(logRow); logErr != nil {
				return report, logErr
			}
			continue
		}

		report.Succeeded++
		logRow.Status = models.GenerationSuccess
		if logErr := s.recurring.AppendLog(logRow); logErr != nil {
			return report, logErr
		}

		next := nextOccurrence(*tmpl.NextDate, tmpl.Frequency, tmpl.IntervalCount)
		if err := s.recurring.Advance(tmpl.ID, next, now); err != nil {
			return report, err
		}
		if tmpl.EndDate != nil && next.After(*tmpl.EndDate) {
			if err := s.recurring.Deactivate(tmpl.ID); err != nil {
				return report, err
			}
		}
	}
	return report, nil
}

// nextOccurrence advances a date by the template's frequency and interval.
func nextOccurrence(from time.Time, freq models.Frequency, interval int) time.Time {
	if interval < 1 {
		interval = 1
	}
	switch freq {
	case models.FrequencyDaily:
		return from.AddDate(0, 0, interval)
	case models.FrequencyWeekly:
		return from.AddDate(0, 0, 7*interval)
	case models.FrequencyMonthly:
		return from.AddDate(0, interval, 0)
	case models.FrequencyYearly:
		return from.AddDate(interval, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}

func (s *Scheduler) generate(tmpl *models.RecurringTransaction) (string, *uuid.UUID, error) {
	switch tmpl.TransactionType {
	case models.RecurringTypeInvoice:
		return s.generateInvoice(tmpl)
	case models.RecurringTypeExpense:
		return s.generateExpense(tmpl)
	case models.RecurringTypeBill:
		return s.generateBill(tmpl)
	}
	return "", nil, ErrInvalidTemplateType
}

func (s *Scheduler) generateInvoice(tmpl *models.RecurringTransaction) (string, *uuid.UUID, error) {
	var t InvoiceTemplate
	if err := json.Unmarshal(tmpl.TemplateData, &t); err != nil {
		return models.RecurringTypeInvoice, nil, err
	}

	date := *tmpl.NextDate
	subtotal := decimal.Zero
	items := make([]models.InvoiceLineItem, 0, len(t.LineItems))
	for _, li := range t.LineItems {
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
		})
	}
	tax := subtotal.Mul(t.TaxRate).Round(2)

	currency := t.Currency
	if currency == "" {
		currency = "CAD"
	}
	dueInDays := t.DueInDays
	if dueInDays <= 0 {
		dueInDays = 30
	}

	inv := &models.Invoice{
		InvoiceNumber:          fmt.Sprintf("REC-%s-%s", date.Format("20060102"), shortID(tmpl.ID)),
		CustomerID:             t.CustomerID,
		InvoiceDate:            date,
		DueDate:                date.AddDate(0, 0, dueInDays),
		Subtotal:               subtotal,
		TaxAmount:              tax,
		Total:                  subtotal.Add(tax),
		AmountDue:              subtotal.Add(tax),
		Status:                 models.InvoiceSent,
		Currency:               currency,
		ExchangeRate:           decimal.NewFromInt(1),
		Notes:                  t.Notes,
		RecurringTransactionID: &tmpl.ID,
		LineItems:              items,
	}
	if err := s.invoices.Create(inv); err != nil {
		return models.RecurringTypeInvoice, nil, err
	}
	if _, err := s.journalizer.JournalizeInvoice(inv.ID); err != nil {
		return models.RecurringTypeInvoice, &inv.ID, err
	}
	return models.RecurringTypeInvoice, &inv.ID, nil
}

func (s *Scheduler) generateExpense(tmpl *models.RecurringTransaction) (string, *uuid.UUID, error) {
	var t ExpenseTemplate
	if err := json.Unmarshal(tmpl.TemplateData, &t); err != nil {
		return models.RecurringTypeExpense, nil, err
	}

	date := *tmpl.NextDate
	subtotal := decimal.Zero
	items := make([]models.ExpenseLineItem, 0, len(t.LineItems))
	for _, li := range t.LineItems {
		subtotal = subtotal.Add(li.Amount)
		items = append(items, models.ExpenseLineItem{
			AccountID:   li.AccountID,
			Description: li.Description,
			Amount:      li.Amount,
		})
	}
	tax := subtotal.Mul(t.TaxRate).Round(2)

	exp := &models.Expense{
		PayeeName:        t.PayeeName,
		SupplierID:       t.SupplierID,
		PaymentAccountID: t.PaymentAccountID,
		ExpenseDate:      date,
		Subtotal:         subtotal,
		TaxAmount:        tax,
		Total:            subtotal.Add(tax),
		Status:           models.ExpenseRecorded,
		Memo:             t.Memo,
		Currency:         "CAD",
		ExchangeRate:     decimal.NewFromInt(1),
		LineItems:        items,
	}
	if err := s.expenses.Create(exp); err != nil {
		return models.RecurringTypeExpense, nil, err
	}
	if _, err := s.journalizer.JournalizeExpense(exp.ID); err != nil {
		return models.RecurringTypeExpense, &exp.ID, err
	}
	return models.RecurringTypeExpense, &exp.ID, nil
}

func (s *Scheduler) generateBill(tmpl *models.RecurringTransaction) (string, *uuid.UUID, error) {
	var t BillTemplate
	if err := json.Unmarshal(tmpl.TemplateData, &t); err != nil {
		return models.RecurringTypeBill, nil, err
	}

	date := *tmpl.NextDate
	subtotal := decimal.Zero
	items := make([]models.BillLineItem, 0, len(t.LineItems))
	for _, li := range t.LineItems {
		subtotal = subtotal.Add(li.Amount)
		items = append(items, models.BillLineItem{
			AccountID:   li.AccountID,
			Description: li.Description,
			Amount:      li.Amount,
		})
	}
	tax := subtotal.Mul(t.TaxRate).Round(2)

	dueInDays := t.DueInDays
	if dueInDays <= 0 {
		dueInDays = 30
	}

	bill := &models.Bill{
		BillNumber: fmt.Sprintf("REC-%s-%s", date.Format("20060102"), shortID(tmpl.ID)),
		SupplierID: t.SupplierID,
		BillDate:   date,
		DueDate:    date.AddDate(0, 0, dueInDays),
		Subtotal:   subtotal,
		TaxAmount:  tax,
		Total:      subtotal.Add(tax),
		AmountDue:  subtotal.Add(tax),
		Status:     models.BillOpen,
		Memo:       t.Memo,
		LineItems:  items,
	}
	if err := s.bills.Create(bill); err != nil {
		return models.RecurringTypeBill, nil, err
	}
	if _, err := s.journalizer.JournalizeBill(bill.ID); err != nil {
		return models.RecurringTypeBill, &bill.ID, err
	}
	return models.RecurringTypeBill, &bill.ID, nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
