package repository

import (
	"errors"
	"time"

	"accounting-ledger-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ExchangeRateRepository struct {
	db *gorm.DB
}

func NewExchangeRateRepository(db *gorm.DB) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

func (r *ExchangeRateRepository) Create(from, to string, rate decimal.Decimal, effectiveDate time.Time, source string) (*models.ExchangeRate, error) {
	rec := &models.ExchangeRate{
		ID:            uuid.New(),
		FromCurrency:  from,
		ToCurrency:    to,
		Rate:          rate,
		EffectiveDate: effectiveDate,
		Source:        source,
		CreatedAt:     time.Now(),
	}
	if err := r.db.Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// LatestOnOrBefore returns the most recent rate for the pair effective on or
// before asOf, or nil when the pair has no such rate.
func (r *ExchangeRateRepository) LatestOnOrBefore(from, to string, asOf time.Time) (*models.ExchangeRate, error) {
	var rate models.ExchangeRate
	err := r.db.Where("from_currency = ? AND to_currency = ? AND effective_date <= ?", from, to, asOf).
		Order("effective_date DESC").
		First(&rate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *ExchangeRateRepository) List(fromCurrency string) ([]models.ExchangeRate, error) {
	query := r.db.Order("effective_date DESC")
	if fromCurrency != "" {
		query = query.Where("from_currency = ?", fromCurrency)
	}
	var rates []models.ExchangeRate
	err := query.Find(&rates).Error
	return rates, err
}
