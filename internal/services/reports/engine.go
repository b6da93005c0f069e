// Package reports derives financial statements from the journal. Every
// figure is computed by summing journal lines at request time; cached
// account balances are never consulted.
package reports

import (
	"time"

	"accounting-ledger-backend/internal/models"
	"accounting-ledger-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Engine struct {
	ledger   *repository.LedgerRepository
	accounts *repository.AccountRepository
	invoices *repository.InvoiceRepository
	bills    *repository.BillRepository
	expenses *repository.ExpenseRepository
	payments *repository.PaymentRepository
}

func NewEngine(
	ledger *repository.LedgerRepository,
	accounts *repository.AccountRepository,
	invoices *repository.InvoiceRepository,
	bills *repository.BillRepository,
	expenses *repository.ExpenseRepository,
	payments *repository.PaymentRepository,
) *Engine {
	return &Engine{
		ledger:   ledger,
		accounts: accounts,
		invoices: invoices,
		bills:    bills,
		expenses: expenses,
		payments: payments,
	}
}

type TrialBalanceRow struct {
	AccountID   uuid.UUID          `json:"account_id"`
	AccountName string             `json:"account_name"`
	AccountType models.AccountType `json:"account_type"`
	Debit       decimal.Decimal    `json:"debit"`
	Credit      decimal.Decimal    `json:"credit"`
}

type TrialBalance struct {
	AsOf         time.Time         `json:"as_of"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal   `json:"total_debits"`
	TotalCredits decimal.Decimal   `json:"total_credits"`
}

// TrialBalance lists every active account's net debit or credit position as
// of the given date. Total debits always equal total credits when the
// journal is internally consistent.
func (e *Engine) TrialBalance(asOf time.Time) (*TrialBalance, error) {
	accounts, err := e.accounts.ListActive()
	if err != nil {
		return nil, err
	}

	tb := &TrialBalance{
		AsOf:         asOf,
		Rows:         []TrialBalanceRow{},
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}
	for _, acct := range accounts {
		debit, credit, err := e.netSides(acct.ID, nil, &asOf)
		if err != nil {
			return nil, err
		}
		net := debit.Sub(credit)
		row := TrialBalanceRow{
			AccountID:   acct.ID,
			AccountName: acct.Name,
			AccountType: acct.Type,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		if net.IsZero() {
			continue
		}
		if net.IsPositive() {
			row.Debit = net
		} else {
			row.Credit = net.Neg()
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebits = tb.TotalDebits.Add(row.Debit)
		tb.TotalCredits = tb.TotalCredits.Add(row.Credit)
	}
	return tb, nil
}

type ReportLine struct {
	AccountID   uuid.UUID       `json:"account_id"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
}

type ProfitAndLoss struct {
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	Income        []ReportLine    `json:"income"`
	Expenses      []ReportLine    `json:"expenses"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
}

// ProfitAndLoss reports income and expense activity within [start, end].
// A period with no activity yields zero totals, not an error.
func (e *Engine) ProfitAndLoss(start, end time.Time) (*ProfitAndLoss, error) {
	accounts, err := e.accounts.ListActive()
	if err != nil {
		return nil, err
	}

	pl := &ProfitAndLoss{
		StartDate:     start,
		EndDate:       end,
		Income:        []ReportLine{},
		Expenses:      []ReportLine{},
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, acct := range accounts {
		if acct.Type != models.AccountTypeIncome && acct.Type != models.AccountTypeExpense {
			continue
		}
		debit, credit, err := e.netSides(acct.ID, &start, &end)
		if err != nil {
			return nil, err
		}
		if acct.Type == models.AccountTypeIncome {
			amount := credit.Sub(debit)
			if amount.IsZero() {
				continue
			}
			pl.Income = append(pl.Income, ReportLine{AccountID: acct.ID, AccountName: acct.Name, Amount: amount})
			pl.TotalIncome = pl.TotalIncome.Add(amount)
		} else {
			amount := debit.Sub(credit)
			if amount.IsZero() {
				continue
			}
			pl.Expenses = append(pl.Expenses, ReportLine{AccountID: acct.ID, AccountName: acct.Name, Amount: amount})
			pl.TotalExpenses = pl.TotalExpenses.Add(amount)
		}
	}
	pl.NetProfit = pl.TotalIncome.Sub(pl.TotalExpenses)
	return pl, nil
}

type BalanceSheet struct {
	AsOf             time.Time       `json:"as_of"`
	Assets           []ReportLine    `json:"assets"`
	Liabilities      []ReportLine    `json:"liabilities"`
	Equity           []ReportLine    `json:"equity"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	TotalEquity      decimal.Decimal `json:"total_equity"`
	RetainedEarnings decimal.Decimal `json:"retained_earnings"`
}

// BalanceSheet reports assets, liabilities and equity as of a date. Lifetime
// net profit is folded into equity as retained earnings so the statement
// balances: assets = liabilities + equity.
func (e *Engine) BalanceSheet(asOf time.Time) (*BalanceSheet, error) {
	accounts, err := e.accounts.ListActive()
	if err != nil {
		return nil, err
	}

	bs := &BalanceSheet{
		AsOf:             asOf,
		Assets:           []ReportLine{},
		Liabilities:      []ReportLine{},
		Equity:           []ReportLine{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	retained := decimal.Zero
	for _, acct := range accounts {
		debit, credit, err := e.netSides(acct.ID, nil, &asOf)
		if err != nil {
			return nil, err
		}
		switch acct.Type {
		case models.AccountTypeAsset:
			amount := debit.Sub(credit)
			if amount.IsZero() {
				continue
			}
			bs.Assets = append(bs.Assets, ReportLine{AccountID: acct.ID, AccountName: acct.Name, Amount: amount})
			bs.TotalAssets = bs.TotalAssets.Add(amount)
		case models.AccountTypeLiability:
			amount := credit.Sub(debit)
			if amount.IsZero() {
				continue
			}
			bs.Liabilities = append(bs.Liabilities, ReportLine{AccountID: acct.ID, AccountName: acct.Name, Amount: amount})
			bs.TotalLiabilities = bs.TotalLiabilities.Add(amount)
		case models.AccountTypeEquity:
			amount := credit.Sub(debit)
			if amount.IsZero() {
				continue
			}
			bs.Equity = append(bs.Equity, ReportLine{AccountID: acct.ID, AccountName: acct.Name, Amount: amount})
			bs.TotalEquity = bs.TotalEquity.Add(amount)
		case models.AccountTypeIncome:
			retained = retained.Add(credit.Sub(debit))
		case models.AccountTypeExpense:
			retained = retained.Sub(debit.Sub(credit))
		}
	}
	bs.RetainedEarnings = retained
	if !retained.IsZero() {
		bs.Equity = append(bs.Equity, ReportLine{AccountName: "Retained Earnings", Amount: retained})
	}
	bs.TotalEquity = bs.TotalEquity.Add(retained)
	return bs, nil
}

// Aging bucket boundaries in days past due.
type AgingRow struct {
	PartyID    uuid.UUID       `json:"party_id"`
	Reference  string          `json:"reference"`
	DueDate    time.Time       `json:"due_date"`
	AmountDue  decimal.Decimal `json:"amount_due"`
	DaysPastDue int            `json:"days_past_due"`
	Bucket     string          `json:"bucket"`
}

type AgingReport struct {
	Kind    string                     `json:"kind"`
	AsOf    time.Time                  `json:"as_of"`
	Rows    []AgingRow                 `json:"rows"`
	Buckets map[string]decimal.Decimal `json:"buckets"`
	Total   decimal.Decimal            `json:"total"`
}

const (
	AgingReceivable = "receivable"
	AgingPayable    = "payable"
)

var agingBuckets = []string{"current", "1-30", "31-60", "61-90", "90+"}

// Aging buckets open receivables or payables by days past due as of now.
func (e *Engine) Aging(kind string, asOf time.Time) (*AgingReport, error) {
	report := &AgingReport{
		Kind:    kind,
		AsOf:    asOf,
		Rows:    []AgingRow{},
		Buckets: map[string]decimal.Decimal{},
		Total:   decimal.Zero,
	}
	for _, b := range agingBuckets {
		report.Buckets[b] = decimal.Zero
	}

	type openItem struct {
		partyID   uuid.UUID
		reference string
		dueDate   time.Time
		amountDue decimal.Decimal
	}
	var items []openItem
	switch kind {
	case AgingPayable:
		bills, err := e.bills.Open()
		if err != nil {
			return nil, err
		}
		for _, b := range bills {
			items = append(items, openItem{b.SupplierID, b.BillNumber, b.DueDate, b.AmountDue})
		}
	default:
		report.Kind = AgingReceivable
		invoices, err := e.invoices.Open()
		if err != nil {
			return nil, err
		}
		for _, inv := range invoices {
			items = append(items, openItem{inv.CustomerID, inv.InvoiceNumber, inv.DueDate, inv.AmountDue})
		}
	}

	for _, item := range items {
		days := int(asOf.Sub(item.dueDate).Hours() / 24)
		bucket := "current"
		switch {
		case days > 90:
			bucket = "90+"
		case days > 60:
			bucket = "61-90"
		case days > 30:
			bucket = "31-60"
		case days > 0:
			bucket = "1-30"
		}
		if days < 0 {
			days = 0
		}
		report.Rows = append(report.Rows, AgingRow{
			PartyID:     item.partyID,
			Reference:   item.reference,
			DueDate:     item.dueDate,
			AmountDue:   item.amountDue,
			DaysPastDue: days,
			Bucket:      bucket,
		})
		report.Buckets[bucket] = report.Buckets[bucket].Add(item.amountDue)
		report.Total = report.Total.Add(item.amountDue)
	}
	return report, nil
}

type PartyBalance struct {
	PartyID uuid.UUID       `json:"party_id"`
	Balance decimal.Decimal `json:"balance"`
}

// CustomerBalances sums customer-tagged lines on Accounts Receivable
// (debits minus credits per customer). The sum of all customer balances
// equals the AR control account balance when every AR line is tagged.
func (e *Engine) CustomerBalances() ([]PartyBalance, error) {
	ar, err := e.accounts.FindOrCreateSystem("Accounts Receivable", models.AccountTypeAsset)
	if err != nil {
		return nil, err
	}
	lines, err := e.ledger.LinesForAccount(ar.ID, nil, nil)
	if err != nil {
		return nil, err
	}

	totals := map[uuid.UUID]decimal.Decimal{}
	var order []uuid.UUID
	for _, l := range lines {
		if l.CustomerID == nil {
			continue
		}
		if _, ok := totals[*l.CustomerID]; !ok {
			order = append(order, *l.CustomerID)
		}
		totals[*l.CustomerID] = totals[*l.CustomerID].Add(l.Debit).Sub(l.Credit)
	}

	balances := make([]PartyBalance, 0, len(order))
	for _, id := range order {
		balances = append(balances, PartyBalance{PartyID: id, Balance: totals[id]})
	}
	return balances, nil
}

// SupplierBalances sums supplier-tagged lines on Accounts Payable
// (credits minus debits per supplier).
func (e *Engine) SupplierBalances() ([]PartyBalance, error) {
	ap, err := e.accounts.FindOrCreateSystem("Accounts Payable", models.AccountTypeLiability)
	if err != nil {
		return nil, err
	}
	lines, err := e.ledger.LinesForAccount(ap.ID, nil, nil)
	if err != nil {
		return nil, err
	}

	totals := map[uuid.UUID]decimal.Decimal{}
	var order []uuid.UUID
	for _, l := range lines {
		if l.SupplierID == nil {
			continue
		}
		if _, ok := totals[*l.SupplierID]; !ok {
			order = append(order, *l.SupplierID)
		}
		totals[*l.SupplierID] = totals[*l.SupplierID].Add(l.Credit).Sub(l.Debit)
	}

	balances := make([]PartyBalance, 0, len(order))
	for _, id := range order {
		balances = append(balances, PartyBalance{PartyID: id, Balance: totals[id]})
	}
	return balances, nil
}

type GeneralLedgerLine struct {
	EntryID     uuid.UUID       `json:"entry_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	Running     decimal.Decimal `json:"running_balance"`
}

type GeneralLedgerAccount struct {
	AccountID   uuid.UUID           `json:"account_id"`
	AccountName string              `json:"account_name"`
	Lines       []GeneralLedgerLine `json:"lines"`
	Closing     decimal.Decimal     `json:"closing_balance"`
}

// GeneralLedger lists each active account's journal lines for the period with
// a running balance on the account's normal side.
func (e *Engine) GeneralLedger(start, end time.Time) ([]GeneralLedgerAccount, error) {
	accounts, err := e.accounts.ListActive()
	if err != nil {
		return nil, err
	}

	var out []GeneralLedgerAccount
	for _, acct := range accounts {
		lines, err := e.ledger.LinesForAccount(acct.ID, &start, &end)
		if err != nil {
			return nil, err
		}
		if len(lines) == 0 {
			continue
		}

		gl := GeneralLedgerAccount{AccountID: acct.ID, AccountName: acct.Name}
		running := decimal.Zero
		for _, l := range lines {
			delta := l.Debit.Sub(l.Credit)
			if !acct.Type.NormalDebit() {
				delta = l.Credit.Sub(l.Debit)
			}
			running = running.Add(delta)
			gl.Lines = append(gl.Lines, GeneralLedgerLine{
				EntryID:     l.JournalEntryID,
				Debit:       l.Debit,
				Credit:      l.Credit,
				Description: l.Description,
				Running:     running,
			})
		}
		gl.Closing = running
		out = append(out, gl)
	}
	return out, nil
}

type UnpostedTransaction struct {
	SourceType string    `json:"source_type"`
	SourceID   uuid.UUID `json:"source_id"`
}

// UnpostedTransactions cross-checks business records against the journal and
// returns any record with no active journal entry. A clean system returns
// an empty list.
func (e *Engine) UnpostedTransactions() ([]UnpostedTransaction, error) {
	var out []UnpostedTransaction

	check := func(sourceType string, ids []uuid.UUID) error {
		for _, id := range ids {
			entry, err := e.ledger.ActiveEntryForSource(sourceType, id)
			if err != nil {
				return err
			}
			if entry == nil {
				out = append(out, UnpostedTransaction{SourceType: sourceType, SourceID: id})
			}
		}
		return nil
	}

	invoiceIDs, err := e.invoices.IDs()
	if err != nil {
		return nil, err
	}
	if err := check(models.SourceTypeInvoice, invoiceIDs); err != nil {
		return nil, err
	}

	expenseIDs, err := e.expenses.IDs()
	if err != nil {
		return nil, err
	}
	if err := check(models.SourceTypeExpense, expenseIDs); err != nil {
		return nil, err
	}

	billIDs, err := e.bills.IDs()
	if err != nil {
		return nil, err
	}
	if err := check(models.SourceTypeBill, billIDs); err != nil {
		return nil, err
	}

	paymentIDs, err := e.payments.IDs()
	if err != nil {
		return nil, err
	}
	if err := check(models.SourceTypePayment, paymentIDs); err != nil {
		return nil, err
	}

	if out == nil {
		out = []UnpostedTransaction{}
	}
	return out, nil
}

// netSides returns (total debits, total credits) for an account over an
// optional date range.
func (e *Engine) netSides(accountID uuid.UUID, start, end *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	lines, err := e.ledger.LinesForAccount(accountID, start, end)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	debit := decimal.Zero
	credit := decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit, nil
}
