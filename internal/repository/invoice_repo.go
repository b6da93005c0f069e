package repository

import (
	"errors"
	"time"

	"accounting-ledger-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Expose DB if needed
func (r *InvoiceRepository) DB() *gorm.DB {
	return r.db
}

func (r *InvoiceRepository) Create(inv *models.Invoice) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if inv.ID == uuid.Nil {
			inv.ID = uuid.New()
		}
		inv.CreatedAt = time.Now()
		inv.UpdatedAt = time.Now()
		lineItems := inv.LineItems
		inv.LineItems = nil
		if err := tx.Create(inv).Error; err != nil {
			return err
		}
		for i := range lineItems {
			lineItems[i].ID = uuid.New()
			lineItems[i].InvoiceID = inv.ID
			lineItems[i].SortOrder = i
		}
		if len(lineItems) > 0 {
			if err := tx.Create(&lineItems).Error; err != nil {
				return err
			}
		}
		inv.LineItems = lineItems
		return nil
	})
}

func (r *InvoiceRepository) GetByID(id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Preload("LineItems").First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) Update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.Invoice{}).Where("id = ?", id).Updates(updates).Error
}

// ApplyPayment bumps the paid/due amounts and rolls the status forward.
func (r *InvoiceRepository) ApplyPayment(id uuid.UUID, amount decimal.Decimal) (string, error) {
	inv, err := r.GetByID(id)
	if err != nil {
		return "", err
	}
	newPaid := inv.AmountPaid.Add(amount)
	newDue := inv.Total.Sub(newPaid)
	status := models.InvoicePartial
	if newDue.LessThanOrEqual(decimal.New(1, -2)) {
		status = models.InvoicePaid
		newDue = decimal.Zero
	}
	err = r.Update(id, map[string]interface{}{
		"amount_paid": newPaid,
		"amount_due":  newDue,
		"status":      status,
	})
	return status, err
}

// UnapplyPayment backs a voided payment's amount out of the invoice,
// reopening it.
func (r *InvoiceRepository) UnapplyPayment(id uuid.UUID, amount decimal.Decimal) (string, error) {
	inv, err := r.GetByID(id)
	if err != nil {
		return "", err
	}
	newPaid := inv.AmountPaid.Sub(amount)
	if newPaid.IsNegative() {
		newPaid = decimal.Zero
	}
	newDue := inv.Total.Sub(newPaid)
	status := models.InvoicePartial
	if newPaid.IsZero() {
		status = models.InvoiceSent
	}
	err = r.Update(id, map[string]interface{}{
		"amount_paid": newPaid,
		"amount_due":  newDue,
		"status":      status,
	})
	return status, err
}

// Open returns invoices that still carry an amount due; feeds the
// receivables aging report.
func (r *InvoiceRepository) Open() ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Where("status NOT IN ? AND amount_due > ?",
		[]string{models.InvoicePaid, models.InvoiceVoided, models.InvoiceDeposited}, 0).
		Find(&invoices).Error
	return invoices, err
}

func (r *InvoiceRepository) List(status string) ([]models.Invoice, error) {
	query := r.db.Order("invoice_date DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var invoices []models.Invoice
	err := query.Find(&invoices).Error
	return invoices, err
}

// IDs returns every invoice id; used by the unposted-transactions check.
func (r *InvoiceRepository) IDs() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&models.Invoice{}).
		Where("status <> ? AND total > ?", models.InvoiceVoided, 0).
		Pluck("id", &ids).Error
	return ids, err
}
