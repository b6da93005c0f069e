// Package ledger turns source business transactions into balanced journal
// entries and posts them through the ledger store.
//
// Account type rules (normal balances):
//
//	Asset:     debit increases  (normal: debit)
//	Liability: credit increases (normal: credit)
//	Equity:    credit increases (normal: credit)
//	Income:    credit increases (normal: credit)
//	Expense:   debit increases  (normal: debit)
package ledger

import (
	"fmt"
	"sync"
	"time"

	"accounting-ledger-backend/internal/models"
	"accounting-ledger-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// System account names used by the posting recipes.
const (
	acctAccountsReceivable = "Accounts Receivable"
	acctAccountsPayable    = "Accounts Payable"
	acctSales              = "Sales"
	acctTaxPayable         = "GST/HST Payable"
	acctTaxReceivable      = "GST/HST Receivable"
	acctUndepositedFunds   = "Undeposited Funds"
	acctMiscExpenses       = "Miscellaneous Expenses"
)

// PostingResult reports whether a business record has a ledger effect, so
// callers and auditors can query degraded states instead of losing them in
// a swallowed error.
type PostingResult struct {
	Posted  bool       `json:"posted"`
	EntryID *uuid.UUID `json:"entry_id"`
	Reason  string     `json:"reason,omitempty"`
}

type Journalizer struct {
	// mu serializes journalize/reverse so at most one active entry can
	// exist per (sourceType, sourceID).
	mu sync.Mutex

	ledger    *repository.LedgerRepository
	accounts  *repository.AccountRepository
	invoices  *repository.InvoiceRepository
	bills     *repository.BillRepository
	expenses  *repository.ExpenseRepository
	payments  *repository.PaymentRepository
	transfers *repository.TransferRepository
	log       *logrus.Logger
}

func NewJournalizer(
	ledger *repository.LedgerRepository,
	accounts *repository.AccountRepository,
	invoices *repository.InvoiceRepository,
	bills *repository.BillRepository,
	expenses *repository.ExpenseRepository,
	payments *repository.PaymentRepository,
	transfers *repository.TransferRepository,
	log *logrus.Logger,
) *Journalizer {
	return &Journalizer{
		ledger:    ledger,
		accounts:  accounts,
		invoices:  invoices,
		bills:     bills,
		expenses:  expenses,
		payments:  payments,
		transfers: transfers,
		log:       log,
	}
}

func notPosted(reason string) PostingResult {
	return PostingResult{Posted: false, Reason: reason}
}

// JournalizeInvoice posts: Debit Accounts Receivable for the total, Credit
// Sales for the subtotal, Credit tax payable for the tax portion.
func (j *Journalizer) JournalizeInvoice(invoiceID uuid.UUID) (PostingResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if existing, res, err := j.alreadyJournalized(models.SourceTypeInvoice, invoiceID); existing {
		return res, err
	}

	inv, err := j.invoices.GetByID(invoiceID)
	if err != nil {
		return notPosted("invoice not found"), err
	}
	if inv.Total.IsZero() {
		return notPosted("zero total"), nil
	}

	ar, err := j.accounts.FindOrCreateSystem(acctAccountsReceivable, models.AccountTypeAsset)
	if err != nil {
		return notPosted(err.Error()), err
	}
	sales, err := j.accounts.FindOrCreateSystem(acctSales, models.AccountTypeIncome)
	if err != nil {
		return notPosted(err.Error()), err
	}

	subtotal := inv.Total.Sub(inv.TaxAmount)
	customerID := inv.CustomerID
	lines := []models.JournalEntryLine{
		{AccountID: ar.ID, Debit: inv.Total, Description: fmt.Sprintf("Invoice %s", inv.InvoiceNumber), CustomerID: &customerID},
		{AccountID: sales.ID, Credit: subtotal, Description: fmt.Sprintf("Invoice %s - Sales", inv.InvoiceNumber)},
	}
	if inv.TaxAmount.IsPositive() {
		tax, err := j.accounts.FindOrCreateSystem(acctTaxPayable, models.AccountTypeLiability)
		if err != nil {
			return notPosted(err.Error()), err
		}
		lines = append(lines, models.JournalEntryLine{
			AccountID: tax.ID, Credit: inv.TaxAmount,
			Description: fmt.Sprintf("Invoice %s - Tax", inv.InvoiceNumber),
		})
	}

	return j.post(models.SourceTypeInvoice, invoiceID, inv.InvoiceDate,
		fmt.Sprintf("Invoice %s to customer %s", inv.InvoiceNumber, inv.CustomerID), lines)
}

// JournalizeExpense posts: Debit each expense line's account (tax to the tax
// receivable account), Credit the paying bank/cash account for the total.
func (j *Journalizer) JournalizeExpense(expenseID uuid.UUID) (PostingResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if existing, res, err := j.alreadyJournalized(models.SourceTypeExpense, expenseID); existing {
		return res, err
	}

	exp, err := j.expenses.GetByID(expenseID)
	if err != nil {
		return notPosted("expense not found"), err
	}
	if exp.Total.IsZero() {
		return notPosted("zero total"), nil
	}

	var lines []models.JournalEntryLine
	if len(exp.LineItems) > 0 {
		for _, li := range exp.LineItems {
			accountID := li.AccountID
			if accountID == nil {
				misc, err := j.accounts.FindOrCreateSystem(acctMiscExpenses, models.AccountTypeExpense)
				if err != nil {
					return notPosted(err.Error()), err
				}
				accountID = &misc.ID
			}
			lines = append(lines, models.JournalEntryLine{
				AccountID: *accountID, Debit: li.Amount,
				Description: li.Description, SupplierID: exp.SupplierID,
			})
		}
	} else {
		misc, err := j.accounts.FindOrCreateSystem(acctMiscExpenses, models.AccountTypeExpense)
		if err != nil {
			return notPosted(err.Error()), err
		}
		lines = append(lines, models.JournalEntryLine{
			AccountID: misc.ID, Debit: exp.Total.Sub(exp.TaxAmount),
			Description: fmt.Sprintf("Expense: %s", exp.PayeeName), SupplierID: exp.SupplierID,
		})
	}
	if exp.TaxAmount.IsPositive() {
		taxRecv, err := j.accounts.FindOrCreateSystem(acctTaxReceivable, models.AccountTypeAsset)
		if err != nil {
			return notPosted(err.Error()), err
		}
		lines = append(lines, models.JournalEntryLine{
			AccountID: taxRecv.ID, Debit: exp.TaxAmount, Description: "Tax on expense",
		})
	}

	payFrom := exp.PaymentAccountID
	if payFrom == nil {
		undeposited, err := j.accounts.FindOrCreateSystem(acctUndepositedFunds, models.AccountTypeAsset)
		if err != nil {
			return notPosted(err.Error()), err
		}
		payFrom = &undeposited.ID
	}
	lines = append(lines, models.JournalEntryLine{
		AccountID: *payFrom, Credit: exp.Total, Description: "Payment for expense",
	})

	return j.post(models.SourceTypeExpense, expenseID, exp.ExpenseDate,
		fmt.Sprintf("Expense paid to %s", exp.PayeeName), lines)
}

// JournalizeBill posts: Debit expense accounts from the bill's line items,
// Credit Accounts Payable for the total.
func (j *Journalizer) JournalizeBill(billID uuid.UUID) (PostingResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if existing, res, err := j.alreadyJournalized(models.SourceTypeBill, billID); existing {
		return res, err
	}

	bill, err := j.bills.GetByID(billID)
	if err != nil {
		return notPosted("bill not found"), err
	}
	if bill.Total.IsZero() {
		return notPosted("zero total"), nil
	}

	ap, err := j.accounts.FindOrCreateSystem(acctAccountsPayable, models.AccountTypeLiability)
	if err != nil {
		return notPosted(err.Error()), err
	}

	supplierID := bill.SupplierID
	var lines []models.JournalEntryLine
	if len(bill.LineItems) > 0 {
		for _, li := range bill.LineItems {
			accountID := li.AccountID
			if accountID == nil {
				misc, err := j.accounts.FindOrCreateSystem(acctMiscExpenses, models.AccountTypeExpense)
				if err != nil {
					return notPosted(err.Error()), err
				}
				accountID = &misc.ID
			}
			lines = append(lines, models.JournalEntryLine{
				AccountID: *accountID, Debit: li.Amount.Add(li.TaxAmount),
				Description: li.Description, SupplierID: &supplierID,
			})
		}
	} else {
		misc, err := j.accounts.FindOrCreateSystem(acctMiscExpenses, models.AccountTypeExpense)
		if err != nil {
			return notPosted(err.Error()), err
		}
		lines = append(lines, models.JournalEntryLine{
			AccountID: misc.ID, Debit: bill.Total,
			Description: fmt.Sprintf("Bill %s", bill.BillNumber), SupplierID: &supplierID,
		})
	}
	lines = append(lines, models.JournalEntryLine{
		AccountID: ap.ID, Credit: bill.Total,
		Description: fmt.Sprintf("Bill %s", bill.BillNumber), SupplierID: &supplierID,
	})

	return j.post(models.SourceTypeBill, billID, bill.BillDate,
		fmt.Sprintf("Bill %s from supplier %s", bill.BillNumber, bill.SupplierID), lines)
}

// JournalizePayment posts: Debit the deposit account (or Undeposited Funds),
// Credit Accounts Receivable.
func (j *Journalizer) JournalizePayment(paymentID uuid.UUID) (PostingResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if existing, res, err := j.alreadyJournalized(models.SourceTypePayment, paymentID); existing {
		return res, err
	}

	pmt, err := j.payments.GetByID(paymentID)
	if err != nil {
		return notPosted("payment not found"), err
	}
	if pmt.Amount.IsZero() {
		return notPosted("zero amount"), nil
	}

	depositTo := pmt.DepositToAccountID
	if depositTo == nil {
		undeposited, err := j.accounts.FindOrCreateSystem(acctUndepositedFunds, models.AccountTypeAsset)
		if err != nil {
			return notPosted(err.Error()), err
		}
		depositTo = &undeposited.ID
	}
	ar, err := j.accounts.FindOrCreateSystem(acctAccountsReceivable, models.AccountTypeAsset)
	if err != nil {
		return notPosted(err.Error()), err
	}

	customerID := pmt.CustomerID
	lines := []models.JournalEntryLine{
		{AccountID: *depositTo, Debit: pmt.Amount, Description: "Payment received", CustomerID: &customerID},
		{AccountID: ar.ID, Credit: pmt.Amount, Description: "Payment applied", CustomerID: &customerID},
	}

	return j.post(models.SourceTypePayment, paymentID, pmt.PaymentDate,
		fmt.Sprintf("Payment received from customer %s", pmt.CustomerID), lines)
}

// JournalizeBillPayment posts: Debit Accounts Payable, Credit the paying
// bank account. Each call is a distinct payment event (partial payments are
// allowed), so the entry is tagged with a fresh source id.
func (j *Journalizer) JournalizeBillPayment(billID uuid.UUID, amount decimal.Decimal, paymentAccountID uuid.UUID, paymentDate time.Time) (PostingResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !amount.IsPositive() {
		return notPosted("zero amount"), nil
	}
	bill, err := j.bills.GetByID(billID)
	if err != nil {
		return notPosted("bill not found"), err
	}
	ap, err := j.accounts.FindOrCreateSystem(acctAccountsPayable, models.AccountTypeLiability)
	if err != nil {
		return notPosted(err.Error()), err
	}

	supplierID := bill.SupplierID
	lines := []models.JournalEntryLine{
		{AccountID: ap.ID, Debit: amount, Description: fmt.Sprintf("Payment on bill %s", bill.BillNumber), SupplierID: &supplierID},
		{AccountID: paymentAccountID, Credit: amount, Description: "Bill payment"},
	}

	return j.post(models.SourceTypeBillPayment, uuid.New(), paymentDate,
		fmt.Sprintf("Bill payment for bill %s", bill.BillNumber), lines)
}

// JournalizeTransfer posts: Debit the destination account, Credit the source
// account, for the transfer amount.
func (j *Journalizer) JournalizeTransfer(transferID uuid.UUID) (PostingResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if existing, res, err := j.alreadyJournalized(models.SourceTypeTransfer, transferID); existing {
		return res, err
	}

	tr, err := j.transfers.GetByID(transferID)
	if err != nil {
		return notPosted("transfer not found"), err
	}
	if tr.Amount.IsZero() {
		return notPosted("zero amount"), nil
	}

	lines := []models.JournalEntryLine{
		{AccountID: tr.ToAccountID, Debit: tr.Amount, Description: "Transfer in"},
		{AccountID: tr.FromAccountID, Credit: tr.Amount, Description: "Transfer out"},
	}
	memo := tr.Memo
	if memo == "" {
		memo = "Transfer between accounts"
	}

	res, err := j.post(models.SourceTypeTransfer, transferID, tr.TransferDate, memo, lines)
	if err == nil && res.Posted && res.EntryID != nil {
		if err := j.transfers.SetJournalEntry(transferID, *res.EntryID); err != nil {
			return res, err
		}
	}
	return res, err
}

// Reverse posts a new entry with every debit and credit swapped, dated now,
// and marks the original entry as reversed. The original is never deleted.
func (j *Journalizer) Reverse(sourceType string, sourceID uuid.UUID) (PostingResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	original, err := j.ledger.ActiveEntryForSource(sourceType, sourceID)
	if err != nil {
		return notPosted(err.Error()), err
	}
	if original == nil {
		return notPosted("no active journal entry for source"), nil
	}

	reversed := make([]models.JournalEntryLine, 0, len(original.Lines))
	for _, l := range original.Lines {
		reversed = append(reversed, models.JournalEntryLine{
			AccountID:   l.AccountID,
			Debit:       l.Credit,
			Credit:      l.Debit,
			Description: fmt.Sprintf("REVERSAL: %s", l.Description),
			CustomerID:  l.CustomerID,
			SupplierID:  l.SupplierID,
		})
	}

	entry := &models.JournalEntry{
		EntryDate:   time.Now(),
		Memo:        fmt.Sprintf("Reversal of %s", original.EntryNumber),
		IsAdjusting: true,
		Lines:       reversed,
	}
	if err := j.ledger.PostEntry(entry); err != nil {
		j.log.WithFields(logrus.Fields{
			"source_type": sourceType,
			"source_id":   sourceID,
		}).WithError(err).Error("reversal posting failed")
		return notPosted(err.Error()), err
	}
	if err := j.ledger.MarkReversed(original.ID, entry.ID); err != nil {
		return notPosted(err.Error()), err
	}
	return PostingResult{Posted: true, EntryID: &entry.ID}, nil
}

// alreadyJournalized reports whether an active entry already exists for the
// source; journalize is a no-op in that case, never a duplicate post.
func (j *Journalizer) alreadyJournalized(sourceType string, sourceID uuid.UUID) (bool, PostingResult, error) {
	existing, err := j.ledger.ActiveEntryForSource(sourceType, sourceID)
	if err != nil {
		return true, notPosted(err.Error()), err
	}
	if existing != nil {
		return true, PostingResult{Posted: true, EntryID: &existing.ID, Reason: "already journalized"}, nil
	}
	return false, PostingResult{}, nil
}

func (j *Journalizer) post(sourceType string, sourceID uuid.UUID, date time.Time, memo string, lines []models.JournalEntryLine) (PostingResult, error) {
	sid := sourceID
	entry := &models.JournalEntry{
		EntryDate:  date,
		Memo:       memo,
		SourceType: sourceType,
		SourceID:   &sid,
		Lines:      lines,
	}
	if err := j.ledger.PostEntry(entry); err != nil {
		j.log.WithFields(logrus.Fields{
			"source_type": sourceType,
			"source_id":   sourceID,
		}).WithError(err).Error("journal posting failed")
		return notPosted(err.Error()), err
	}
	return PostingResult{Posted: true, EntryID: &entry.ID}, nil
}
