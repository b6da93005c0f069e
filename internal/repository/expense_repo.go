package repository

import (
	"errors"
	"time"

	"accounting-ledger-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrExpenseNotFound = errors.New("expense not found")

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(exp *models.Expense) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if exp.ID == uuid.Nil {
			exp.ID = uuid.New()
		}
		exp.CreatedAt = time.Now()
		exp.UpdatedAt = time.Now()
		lineItems := exp.LineItems
		exp.LineItems = nil
		if err := tx.Create(exp).Error; err != nil {
			return err
		}
		for i := range lineItems {
			lineItems[i].ID = uuid.New()
			lineItems[i].ExpenseID = exp.ID
			lineItems[i].SortOrder = i
		}
		if len(lineItems) > 0 {
			if err := tx.Create(&lineItems).Error; err != nil {
				return err
			}
		}
		exp.LineItems = lineItems
		return nil
	})
}

func (r *ExpenseRepository) GetByID(id uuid.UUID) (*models.Expense, error) {
	var exp models.Expense
	err := r.db.Preload("LineItems").First(&exp, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

func (r *ExpenseRepository) Update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.Expense{}).Where("id = ?", id).Updates(updates).Error
}

func (r *ExpenseRepository) IDs() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&models.Expense{}).
		Where("status <> ? AND total > ?", models.ExpenseVoided, 0).
		Pluck("id", &ids).Error
	return ids, err
}
