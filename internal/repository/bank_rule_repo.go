package repository

import (
	"encoding/json"
	"errors"
	"time"

	"accounting-ledger-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrBankRuleNotFound = errors.New("bank rule not found")

type BankRuleRepository struct {
	db *gorm.DB
}

func NewBankRuleRepository(db *gorm.DB) *BankRuleRepository {
	return &BankRuleRepository{db: db}
}

type BankRuleInput struct {
	Name            string
	Priority        int
	Conditions      []models.RuleCondition
	AssignAccountID *uuid.UUID
	AssignCategory  string
	AssignPayee     string
	AutoConfirm     bool
}

func (r *BankRuleRepository) Create(input BankRuleInput) (*models.BankRule, error) {
	conditions, err := json.Marshal(input.Conditions)
	if err != nil {
		return nil, err
	}
	rule := &models.BankRule{
		ID:              uuid.New(),
		Name:            input.Name,
		Priority:        input.Priority,
		Conditions:      datatypes.JSON(conditions),
		AssignAccountID: input.AssignAccountID,
		AssignCategory:  input.AssignCategory,
		AssignPayee:     input.AssignPayee,
		AutoConfirm:     input.AutoConfirm,
		IsActive:        true,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := r.db.Create(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

// ListActive returns active rules in ascending priority order, which is also
// their evaluation order.
func (r *BankRuleRepository) ListActive() ([]models.BankRule, error) {
	var rules []models.BankRule
	err := r.db.Where("is_active = ?", true).Order("priority ASC").Find(&rules).Error
	return rules, err
}

func (r *BankRuleRepository) List() ([]models.BankRule, error) {
	var rules []models.BankRule
	err := r.db.Order("priority ASC").Find(&rules).Error
	return rules, err
}

func (r *BankRuleRepository) Update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.Model(&models.BankRule{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBankRuleNotFound
	}
	return nil
}

func (r *BankRuleRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.BankRule{}, "id = ?", id).Error
}
