package repository

import (
	"errors"
	"time"

	"accounting-ledger-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrTransferNotFound = errors.New("account transfer not found")

type TransferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Create(tr *models.AccountTransfer) error {
	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}
	tr.CreatedAt = time.Now()
	return r.db.Create(tr).Error
}

func (r *TransferRepository) GetByID(id uuid.UUID) (*models.AccountTransfer, error) {
	var tr models.AccountTransfer
	err := r.db.First(&tr, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransferNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

func (r *TransferRepository) SetJournalEntry(id, entryID uuid.UUID) error {
	return r.db.Model(&models.AccountTransfer{}).Where("id = ?", id).
		Update("journal_entry_id", entryID).Error
}

func (r *TransferRepository) MarkVoided(id uuid.UUID) error {
	return r.db.Model(&models.AccountTransfer{}).Where("id = ?", id).
		Update("is_voided", true).Error
}
