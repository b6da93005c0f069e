package repository

import (
	"errors"
	"fmt"
	"time"

	"accounting-ledger-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Validation and invariant failures surfaced by the ledger store.
var (
	ErrImbalance      = errors.New("journal entry debits and credits do not balance")
	ErrTooFewLines    = errors.New("journal entry must have at least 2 lines")
	ErrBothSides      = errors.New("journal line cannot carry both a debit and a credit")
	ErrZeroAmount     = errors.New("journal line must carry a debit or a credit amount")
	ErrNegativeAmount = errors.New("journal line amounts must be non-negative")
	ErrUnknownAccount = errors.New("journal line references an unknown or inactive account")
	ErrEntryNotFound  = errors.New("journal entry not found")
)

// centTolerance is the rounding slack allowed between total debits and credits.
var centTolerance = decimal.New(1, -2)

// LedgerRepository is the only component that mutates journal entries and
// their lines. Balances are always computed by summing lines.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) DB() *gorm.DB {
	return r.db
}

// PostEntry validates and persists a journal entry with all of its lines in
// one transaction. Nothing is written if any check fails.
func (r *LedgerRepository) PostEntry(entry *models.JournalEntry) error {
	if err := r.validate(entry.Lines); err != nil {
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if entry.EntryNumber == "" {
			num, err := nextEntryNumber(tx)
			if err != nil {
				return err
			}
			entry.EntryNumber = num
		}
		entry.CreatedAt = time.Now()

		lines := entry.Lines
		entry.Lines = nil
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].ID = uuid.New()
			lines[i].JournalEntryID = entry.ID
			lines[i].SortOrder = i
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		entry.Lines = lines

		return recalculateBalances(tx, lineAccountIDs(lines))
	})
}

func (r *LedgerRepository) validate(lines []models.JournalEntryLine) error {
	if len(lines) < 2 {
		return ErrTooFewLines
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, l := range lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return ErrNegativeAmount
		}
		if l.Debit.IsPositive() && l.Credit.IsPositive() {
			return ErrBothSides
		}
		if l.Debit.IsZero() && l.Credit.IsZero() {
			return ErrZeroAmount
		}
		totalDebit = totalDebit.Add(l.Debit)
		totalCredit = totalCredit.Add(l.Credit)
	}

	if totalDebit.Sub(totalCredit).Abs().GreaterThan(centTolerance) {
		return fmt.Errorf("%w: debits=%s credits=%s", ErrImbalance, totalDebit, totalCredit)
	}

	var count int64
	if err := r.db.Model(&models.Account{}).
		Where("id IN ? AND is_active = ?", lineAccountIDs(lines), true).
		Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(uniqueIDs(lineAccountIDs(lines))) {
		return ErrUnknownAccount
	}
	return nil
}

// AccountBalance sums debit-minus-credit (or the reverse, per the account
// type's normal side) over all non-reversal-excluded lines up to asOf.
func (r *LedgerRepository) AccountBalance(accountID uuid.UUID, asOf *time.Time) (decimal.Decimal, error) {
	var acct models.Account
	if err := r.db.First(&acct, "id = ?", accountID).Error; err != nil {
		return decimal.Zero, err
	}

	lines, err := r.LinesForAccount(accountID, nil, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, l := range lines {
		totalDebit = totalDebit.Add(l.Debit)
		totalCredit = totalCredit.Add(l.Credit)
	}
	if acct.Type.NormalDebit() {
		return totalDebit.Sub(totalCredit), nil
	}
	return totalCredit.Sub(totalDebit), nil
}

// LinesForAccount returns the account's journal lines, optionally bounded by
// entry date.
func (r *LedgerRepository) LinesForAccount(accountID uuid.UUID, start, end *time.Time) ([]models.JournalEntryLine, error) {
	query := r.db.Model(&models.JournalEntryLine{}).
		Joins("JOIN journal_entries ON journal_entries.id = journal_entry_lines.journal_entry_id").
		Where("journal_entry_lines.account_id = ?", accountID)
	if start != nil {
		query = query.Where("journal_entries.entry_date >= ?", *start)
	}
	if end != nil {
		query = query.Where("journal_entries.entry_date <= ?", *end)
	}

	var lines []models.JournalEntryLine
	err := query.Order("journal_entries.entry_date ASC, journal_entry_lines.sort_order ASC").Find(&lines).Error
	return lines, err
}

// EntriesInRange returns entries dated within [start, end], lines preloaded.
func (r *LedgerRepository) EntriesInRange(start, end time.Time) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := r.db.Preload("Lines").
		Where("entry_date >= ? AND entry_date <= ?", start, end).
		Order("entry_date ASC").
		Find(&entries).Error
	return entries, err
}

// ActiveEntryForSource finds the non-reversed entry tagged with the source
// transaction, if any. Used for idempotent journalizing and reversal lookup.
func (r *LedgerRepository) ActiveEntryForSource(sourceType string, sourceID uuid.UUID) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	err := r.db.Preload("Lines").
		Where("source_type = ? AND source_id = ? AND is_reversed = ?", sourceType, sourceID, false).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *LedgerRepository) GetEntry(id uuid.UUID) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	if err := r.db.Preload("Lines").First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// MarkReversed flags the original entry as reversed; the row itself is kept.
func (r *LedgerRepository) MarkReversed(originalID, reversalID uuid.UUID) error {
	return r.db.Model(&models.JournalEntry{}).
		Where("id = ?", originalID).
		Updates(map[string]interface{}{
			"is_reversed":          true,
			"reversed_by_entry_id": reversalID,
		}).Error
}

// RecalculateBalances rebuilds the cached display balance of each account
// from its journal lines.
func (r *LedgerRepository) RecalculateBalances(accountIDs []uuid.UUID) error {
	return recalculateBalances(r.db, accountIDs)
}

func recalculateBalances(tx *gorm.DB, accountIDs []uuid.UUID) error {
	for _, id := range uniqueIDs(accountIDs) {
		var acct models.Account
		if err := tx.First(&acct, "id = ?", id).Error; err != nil {
			return err
		}

		var lines []models.JournalEntryLine
		if err := tx.Where("account_id = ?", id).Find(&lines).Error; err != nil {
			return err
		}

		totalDebit := decimal.Zero
		totalCredit := decimal.Zero
		for _, l := range lines {
			totalDebit = totalDebit.Add(l.Debit)
			totalCredit = totalCredit.Add(l.Credit)
		}

		balance := totalDebit.Sub(totalCredit)
		if !acct.Type.NormalDebit() {
			balance = totalCredit.Sub(totalDebit)
		}
		if err := tx.Model(&models.Account{}).
			Where("id = ?", id).
			Update("balance", balance).Error; err != nil {
			return err
		}
	}
	return nil
}

func nextEntryNumber(tx *gorm.DB) (string, error) {
	var count int64
	if err := tx.Model(&models.JournalEntry{}).Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("JE-%04d", count+1), nil
}

func lineAccountIDs(lines []models.JournalEntryLine) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.AccountID)
	}
	return ids
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
