package repository

import (
	"errors"
	"time"

	"accounting-ledger-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrReconciliationNotFound = errors.New("reconciliation not found")

type ReconciliationRepository struct {
	db *gorm.DB
}

func NewReconciliationRepository(db *gorm.DB) *ReconciliationRepository {
	return &ReconciliationRepository{db: db}
}

// FindOrCreate loads the in-progress session for (account, statementDate) or
// starts a new one.
func (r *ReconciliationRepository) FindOrCreate(accountID uuid.UUID, statementDate time.Time, statementBalance decimal.Decimal) (*models.Reconciliation, error) {
	var rec models.Reconciliation
	err := r.db.Where("account_id = ? AND statement_date = ? AND status = ?",
		accountID, statementDate, models.ReconciliationInProgress).
		First(&rec).Error
	if err == nil {
		return &rec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rec = models.Reconciliation{
		ID:               uuid.New(),
		AccountID:        accountID,
		StatementDate:    statementDate,
		StatementBalance: statementBalance,
		ClearedBalance:   decimal.Zero,
		Difference:       statementBalance,
		Status:           models.ReconciliationInProgress,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := r.db.Create(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ReconciliationRepository) GetByID(id uuid.UUID) (*models.Reconciliation, error) {
	var rec models.Reconciliation
	err := r.db.First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReconciliationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ReconciliationRepository) Update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.Reconciliation{}).Where("id = ?", id).Updates(updates).Error
}

func (r *ReconciliationRepository) List(accountID *uuid.UUID) ([]models.Reconciliation, error) {
	query := r.db.Order("statement_date DESC")
	if accountID != nil {
		query = query.Where("account_id = ?", *accountID)
	}
	var recs []models.Reconciliation
	err := query.Find(&recs).Error
	return recs, err
}
