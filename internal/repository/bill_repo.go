package repository

import (
	"errors"
	"time"

	"accounting-ledger-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrBillNotFound = errors.New("bill not found")

type BillRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) *BillRepository {
	return &BillRepository{db: db}
}

func (r *BillRepository) Create(bill *models.Bill) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if bill.ID == uuid.Nil {
			bill.ID = uuid.New()
		}
		bill.CreatedAt = time.Now()
		bill.UpdatedAt = time.Now()
		lineItems := bill.LineItems
		bill.LineItems = nil
		if err := tx.Create(bill).Error; err != nil {
			return err
		}
		for i := range lineItems {
			lineItems[i].ID = uuid.New()
			lineItems[i].BillID = bill.ID
			lineItems[i].SortOrder = i
		}
		if len(lineItems) > 0 {
			if err := tx.Create(&lineItems).Error; err != nil {
				return err
			}
		}
		bill.LineItems = lineItems
		return nil
	})
}

func (r *BillRepository) GetByID(id uuid.UUID) (*models.Bill, error) {
	var bill models.Bill
	err := r.db.Preload("LineItems").First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBillNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *BillRepository) Update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.Bill{}).Where("id = ?", id).Updates(updates).Error
}

func (r *BillRepository) ApplyPayment(id uuid.UUID, amount decimal.Decimal) (string, error) {
	bill, err := r.GetByID(id)
	if err != nil {
		return "", err
	}
	newPaid := bill.AmountPaid.Add(amount)
	newDue := bill.Total.Sub(newPaid)
	status := models.BillPartial
	if newDue.LessThanOrEqual(decimal.New(1, -2)) {
		status = models.BillPaid
		newDue = decimal.Zero
	}
	err = r.Update(id, map[string]interface{}{
		"amount_paid": newPaid,
		"amount_due":  newDue,
		"status":      status,
	})
	return status, err
}

// Open returns bills that still carry an amount due; feeds the payables
// aging report.
func (r *BillRepository) Open() ([]models.Bill, error) {
	var bills []models.Bill
	err := r.db.Where("status NOT IN ? AND amount_due > ?",
		[]string{models.BillPaid, models.BillVoided}, 0).
		Find(&bills).Error
	return bills, err
}

func (r *BillRepository) IDs() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&models.Bill{}).
		Where("status <> ? AND total > ?", models.BillVoided, 0).
		Pluck("id", &ids).Error
	return ids, err
}
