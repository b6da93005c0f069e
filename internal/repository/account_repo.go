package repository

import (
	"errors"
	"time"

	"accounting-ledger-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrAccountCycle       = errors.New("parent assignment would create a cycle in the account tree")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrAccountNotFound    = errors.New("account not found")
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(name string, accountType models.AccountType, parentID *uuid.UUID) (*models.Account, error) {
	if !accountType.Valid() {
		return nil, ErrInvalidAccountType
	}
	acct := &models.Account{
		ID:        uuid.New(),
		Name:      name,
		Type:      accountType,
		ParentID:  parentID,
		Balance:   decimal.Zero,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if parentID != nil {
		if err := r.checkCycle(acct.ID, *parentID); err != nil {
			return nil, err
		}
	}
	if err := r.db.Create(acct).Error; err != nil {
		return nil, err
	}
	return acct, nil
}

func (r *AccountRepository) GetByID(id uuid.UUID) (*models.Account, error) {
	var acct models.Account
	if err := r.db.First(&acct, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &acct, nil
}

func (r *AccountRepository) ListActive() ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.Where("is_active = ?", true).
		Order("type ASC, name ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *AccountRepository) Rename(id uuid.UUID, name string) error {
	return r.db.Model(&models.Account{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "updated_at": time.Now()}).Error
}

// Deactivate hides the account; accounts referenced by journal lines are
// never hard-deleted.
func (r *AccountRepository) Deactivate(id uuid.UUID) error {
	return r.db.Model(&models.Account{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
}

// SetParent re-parents an account after verifying the move keeps the tree
// acyclic.
func (r *AccountRepository) SetParent(id uuid.UUID, parentID *uuid.UUID) error {
	if parentID != nil {
		if err := r.checkCycle(id, *parentID); err != nil {
			return err
		}
	}
	return r.db.Model(&models.Account{}).Where("id = ?", id).
		Updates(map[string]interface{}{"parent_id": parentID, "updated_at": time.Now()}).Error
}

// checkCycle walks the parent chain upward from the proposed parent; if it
// reaches the account being re-parented the assignment is rejected.
func (r *AccountRepository) checkCycle(id, parentID uuid.UUID) error {
	current := parentID
	for i := 0; i < 1000; i++ {
		if current == id {
			return ErrAccountCycle
		}
		var parent models.Account
		if err := r.db.Select("id", "parent_id").First(&parent, "id = ?", current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		current = *parent.ParentID
	}
	return ErrAccountCycle
}

// FindOrCreateSystem resolves the well-known accounts the posting recipes
// need (Accounts Receivable, Sales, Accounts Payable, tax accounts, ...).
func (r *AccountRepository) FindOrCreateSystem(name string, accountType models.AccountType) (*models.Account, error) {
	var acct models.Account
	err := r.db.Where("name = ? AND type = ?", name, accountType).First(&acct).Error
	if err == nil {
		return &acct, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return r.Create(name, accountType, nil)
}
