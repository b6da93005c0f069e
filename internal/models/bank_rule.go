package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Condition operators supported by bank rules.
const (
	OpContains    = "contains"
	OpEquals      = "equals"
	OpStartsWith  = "startsWith"
	OpGreaterThan = "greaterThan"
	OpLessThan    = "lessThan"
)

// RuleCondition is one predicate of a bank rule; all conditions must match.
type RuleCondition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

type BankRule struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string         `json:"name"`
	Priority        int            `gorm:"index" json:"priority"`
	Conditions      datatypes.JSON `json:"conditions"`
	AssignAccountID *uuid.UUID     `json:"assign_account_id"`
	AssignCategory  string         `json:"assign_category"`
	AssignPayee     string         `json:"assign_payee"`
	AutoConfirm     bool           `json:"auto_confirm"`
	IsActive        bool           `gorm:"index" json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
