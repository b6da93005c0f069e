package repository

import (
	"errors"
	"time"

	"accounting-ledger-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(pmt *models.Payment) error {
	if pmt.ID == uuid.Nil {
		pmt.ID = uuid.New()
	}
	pmt.CreatedAt = time.Now()
	pmt.UpdatedAt = time.Now()
	return r.db.Create(pmt).Error
}

func (r *PaymentRepository) GetByID(id uuid.UUID) (*models.Payment, error) {
	var pmt models.Payment
	err := r.db.First(&pmt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pmt, nil
}

// Apply records which invoice the payment pays down.
func (r *PaymentRepository) Apply(paymentID, invoiceID uuid.UUID, amount decimal.Decimal) error {
	app := models.PaymentApplication{
		ID:        uuid.New(),
		PaymentID: paymentID,
		InvoiceID: invoiceID,
		Amount:    amount,
	}
	return r.db.Create(&app).Error
}

func (r *PaymentRepository) ApplicationsFor(paymentID uuid.UUID) ([]models.PaymentApplication, error) {
	var apps []models.PaymentApplication
	err := r.db.Where("payment_id = ?", paymentID).Find(&apps).Error
	return apps, err
}

func (r *PaymentRepository) MarkVoided(id uuid.UUID) error {
	return r.db.Model(&models.Payment{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_voided": true, "updated_at": time.Now()}).Error
}

func (r *PaymentRepository) IDs() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&models.Payment{}).
		Where("is_voided = ? AND amount > ?", false, 0).
		Pluck("id", &ids).Error
	return ids, err
}
