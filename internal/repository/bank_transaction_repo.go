package repository

import (
	"errors"
	"time"

	"accounting-ledger-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrBankTransactionNotFound = errors.New("bank transaction not found")

type BankTransactionRepository struct {
	db *gorm.DB
}

func NewBankTransactionRepository(db *gorm.DB) *BankTransactionRepository {
	return &BankTransactionRepository{db: db}
}

func (r *BankTransactionRepository) DB() *gorm.DB {
	return r.db
}

func (r *BankTransactionRepository) GetByID(id uuid.UUID) (*models.BankTransaction, error) {
	var tx models.BankTransaction
	if err := r.db.First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBankTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

type BankTransactionImport struct {
	TransactionDate time.Time
	Description     string
	Amount          decimal.Decimal
	FitID           string
}

// Import inserts feed rows for the account, skipping duplicates by fitId.
func (r *BankTransactionRepository) Import(accountID uuid.UUID, rows []BankTransactionImport) (imported, skipped int, err error) {
	for _, row := range rows {
		if row.FitID != "" {
			var count int64
			if err := r.db.Model(&models.BankTransaction{}).
				Where("account_id = ? AND fit_id = ?", accountID, row.FitID).
				Count(&count).Error; err != nil {
				return imported, skipped, err
			}
			if count > 0 {
				skipped++
				continue
			}
		}
		tx := models.BankTransaction{
			ID:              uuid.New(),
			AccountID:       accountID,
			TransactionDate: row.TransactionDate,
			Description:     row.Description,
			Amount:          row.Amount,
			FitID:           row.FitID,
			Status:          models.BankTxnForReview,
			CreatedAt:       time.Now(),
			UpdatedAt:       time.Now(),
		}
		if err := r.db.Create(&tx).Error; err != nil {
			return imported, skipped, err
		}
		imported++
	}
	return imported, skipped, nil
}

// List returns bank transactions, newest first, optionally filtered by
// account and review status.
func (r *BankTransactionRepository) List(accountID *uuid.UUID, status string) ([]models.BankTransaction, error) {
	query := r.db.Order("transaction_date DESC")
	if accountID != nil {
		query = query.Where("account_id = ?", *accountID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var txs []models.BankTransaction
	err := query.Find(&txs).Error
	return txs, err
}

func (r *BankTransactionRepository) Update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.BankTransaction{}).Where("id = ?", id).Updates(updates).Error
}

// ForAccountOnOrBefore returns the account's transactions dated on or before
// the statement date, newest first.
func (r *BankTransactionRepository) ForAccountOnOrBefore(accountID uuid.UUID, statementDate time.Time) ([]models.BankTransaction, error) {
	var txs []models.BankTransaction
	err := r.db.Where("account_id = ? AND transaction_date <= ?", accountID, statementDate).
		Order("transaction_date DESC").
		Find(&txs).Error
	return txs, err
}

func (r *BankTransactionRepository) SetReconciled(id uuid.UUID, reconciled bool) error {
	return r.Update(id, map[string]interface{}{"is_reconciled": reconciled})
}
