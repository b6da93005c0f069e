package repository

import (
	"errors"
	"time"

	"accounting-ledger-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrRecurringNotFound = errors.New("recurring transaction not found")

type RecurringRepository struct {
	db *gorm.DB
}

func NewRecurringRepository(db *gorm.DB) *RecurringRepository {
	return &RecurringRepository{db: db}
}

func (r *RecurringRepository) Create(rec *models.RecurringTransaction) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = time.Now()
	return r.db.Create(rec).Error
}

func (r *RecurringRepository) GetByID(id uuid.UUID) (*models.RecurringTransaction, error) {
	var rec models.RecurringTransaction
	if err := r.db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecurringNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Due returns active templates whose next date has arrived.
func (r *RecurringRepository) Due(now time.Time) ([]models.RecurringTransaction, error) {
	var recs []models.RecurringTransaction
	err := r.db.Where("is_active = ? AND next_date IS NOT NULL AND next_date <= ?", true, now).
		Order("next_date ASC").
		Find(&recs).Error
	return recs, err
}

// Advance moves the template's next date forward and stamps last_generated.
// Called only after a successful generation.
func (r *RecurringRepository) Advance(id uuid.UUID, nextDate time.Time, generatedAt time.Time) error {
	return r.db.Model(&models.RecurringTransaction{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"next_date":      nextDate,
			"last_generated": generatedAt,
			"updated_at":     time.Now(),
		}).Error
}

func (r *RecurringRepository) Deactivate(id uuid.UUID) error {
	return r.db.Model(&models.RecurringTransaction{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
}

func (r *RecurringRepository) SetActive(id uuid.UUID, active bool) error {
	return r.db.Model(&models.RecurringTransaction{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": active, "updated_at": time.Now()}).Error
}

// AppendLog writes one immutable generation-log row.
func (r *RecurringRepository) AppendLog(entry *models.RecurringGenerationLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.GeneratedAt.IsZero() {
		entry.GeneratedAt = time.Now()
	}
	return r.db.Create(entry).Error
}

func (r *RecurringRepository) GenerationLog(templateID *uuid.UUID, limit int) ([]models.RecurringGenerationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.Order("generated_at DESC").Limit(limit)
	if templateID != nil {
		query = query.Where("recurring_transaction_id = ?", *templateID)
	}
	var logs []models.RecurringGenerationLog
	err := query.Find(&logs).Error
	return logs, err
}
