package repository

import (
	"time"

	"accounting-ledger-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PartyRepository struct {
	db *gorm.DB
}

func NewPartyRepository(db *gorm.DB) *PartyRepository {
	return &PartyRepository{db: db}
}

func (r *PartyRepository) CreateCustomer(displayName, email, currency string) (*models.Customer, error) {
	c := &models.Customer{
		ID:          uuid.New(),
		DisplayName: displayName,
		Email:       email,
		Currency:    currency,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := r.db.Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PartyRepository) CreateSupplier(displayName, email, currency string) (*models.Supplier, error) {
	s := &models.Supplier{
		ID:          uuid.New(),
		DisplayName: displayName,
		Email:       email,
		Currency:    currency,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := r.db.Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PartyRepository) ActiveCustomers() ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.Where("is_active = ?", true).Order("display_name ASC").Find(&customers).Error
	return customers, err
}

func (r *PartyRepository) ActiveSuppliers() ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.Where("is_active = ?", true).Order("display_name ASC").Find(&suppliers).Error
	return suppliers, err
}
