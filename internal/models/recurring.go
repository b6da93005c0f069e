package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "Daily"
	FrequencyWeekly  Frequency = "Weekly"
	FrequencyMonthly Frequency = "Monthly"
	FrequencyYearly  Frequency = "Yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Transaction types a recurring template can generate.
const (
	RecurringTypeInvoice = "Invoice"
	RecurringTypeExpense = "Expense"
	RecurringTypeBill    = "Bill"
)

type RecurringTransaction struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TemplateName    string         `json:"template_name"`
	TransactionType string         `gorm:"index" json:"transaction_type"`
	Frequency       Frequency      `json:"frequency"`
	IntervalCount   int            `json:"interval_count"`
	StartDate       time.Time      `json:"start_date"`
	EndDate         *time.Time     `json:"end_date"`
	NextDate        *time.Time     `gorm:"index" json:"next_date"`
	TemplateData    datatypes.JSON `json:"template_data"`
	IsActive        bool           `gorm:"index" json:"is_active"`
	LastGenerated   *time.Time     `json:"last_generated"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Generation outcomes.
const (
	GenerationSuccess = "success"
	GenerationFailed  = "failed"
	GenerationSkipped = "skipped"
)

// RecurringGenerationLog rows are append-only; one per generation attempt.
type RecurringGenerationLog struct {
	ID                     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RecurringTransactionID uuid.UUID  `gorm:"index" json:"recurring_transaction_id"`
	GeneratedEntityType    string     `json:"generated_entity_type"`
	GeneratedEntityID      *uuid.UUID `json:"generated_entity_id"`
	Status                 string     `gorm:"index" json:"status"`
	ErrorMessage           string     `json:"error_message"`
	AutoSent               bool       `json:"auto_sent"`
	GeneratedAt            time.Time  `json:"generated_at"`
}
