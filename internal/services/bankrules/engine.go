// Package bankrules matches imported bank feed transactions against
// user-defined categorization rules.
package bankrules

import (
	"encoding/json"
	"strings"

	"accounting-ledger-backend/internal/models"
	"accounting-ledger-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Application reports the outcome of running the rules against one
// transaction.
type Application struct {
	Matched     bool       `json:"matched"`
	RuleID      *uuid.UUID `json:"rule_id"`
	RuleName    string     `json:"rule_name,omitempty"`
	AutoConfirm bool       `json:"auto_confirm"`
}

type Engine struct {
	rules        *repository.BankRuleRepository
	transactions *repository.BankTransactionRepository
	log          *logrus.Logger
}

func NewEngine(rules *repository.BankRuleRepository, transactions *repository.BankTransactionRepository, log *logrus.Logger) *Engine {
	return &Engine{rules: rules, transactions: transactions, log: log}
}

// ApplyRules evaluates active rules against the transaction in ascending
// priority order and applies the first rule whose conditions all match.
// With auto-confirm the transaction moves straight to Categorized;
// otherwise the assignments land as a suggestion and the transaction stays
// in review.
func (e *Engine) ApplyRules(txID uuid.UUID) (*Application, error) {
	tx, err := e.transactions.GetByID(txID)
	if err != nil {
		return nil, err
	}
	rules, err := e.rules.ListActive()
	if err != nil {
		return nil, err
	}

	for _, rule := range rules {
		matched, err := e.matches(&rule, tx)
		if err != nil {
			e.log.WithFields(logrus.Fields{
				"rule_id":   rule.ID,
				"rule_name": rule.Name,
			}).WithError(err).Warn("skipping bank rule with malformed conditions")
			continue
		}
		if !matched {
			continue
		}

		updates := map[string]interface{}{}
		if rule.AssignAccountID != nil {
			updates["category_account_id"] = *rule.AssignAccountID
		}
		if rule.AssignCategory != "" {
			updates["category"] = rule.AssignCategory
		}
		if rule.AssignPayee != "" {
			updates["payee"] = rule.AssignPayee
		}
		if rule.AutoConfirm {
			updates["status"] = models.BankTxnCategorized
		}
		if len(updates) > 0 {
			if err := e.transactions.Update(tx.ID, updates); err != nil {
				return nil, err
			}
		}

		ruleID := rule.ID
		return &Application{
			Matched:     true,
			RuleID:      &ruleID,
			RuleName:    rule.Name,
			AutoConfirm: rule.AutoConfirm,
		}, nil
	}
	return &Application{Matched: false}, nil
}

// ApplyToAccount runs the rules over every for-review transaction of an
// account, returning how many matched.
func (e *Engine) ApplyToAccount(accountID uuid.UUID) (int, error) {
	var txs []models.BankTransaction
	err := e.transactions.DB().
		Where("account_id = ? AND status = ?", accountID, models.BankTxnForReview).
		Find(&txs).Error
	if err != nil {
		return 0, err
	}

	matched := 0
	for _, tx := range txs {
		app, err := e.ApplyRules(tx.ID)
		if err != nil {
			return matched, err
		}
		if app.Matched {
			matched++
		}
	}
	return matched, nil
}

// matches reports whether every condition of the rule holds for the
// transaction. A rule with no conditions never matches.
func (e *Engine) matches(rule *models.BankRule, tx *models.BankTransaction) (bool, error) {
	var conditions []models.RuleCondition
	if err := json.Unmarshal(rule.Conditions, &conditions); err != nil {
		return false, err
	}
	if len(conditions) == 0 {
		return false, nil
	}
	for _, cond := range conditions {
		ok, err := evalCondition(cond, tx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evalCondition(cond models.RuleCondition, tx *models.BankTransaction) (bool, error) {
	switch cond.Field {
	case "amount":
		return evalNumeric(cond, tx.Amount)
	case "payee":
		return evalString(cond, tx.Payee), nil
	default:
		// description is the default matching field
		return evalString(cond, tx.Description), nil
	}
}

// String comparisons are case-insensitive.
func evalString(cond models.RuleCondition, value string) bool {
	v := strings.ToLower(value)
	want := strings.ToLower(cond.Value)
	switch cond.Operator {
	case models.OpContains:
		return strings.Contains(v, want)
	case models.OpEquals:
		return v == want
	case models.OpStartsWith:
		return strings.HasPrefix(v, want)
	}
	return false
}

func evalNumeric(cond models.RuleCondition, amount decimal.Decimal) (bool, error) {
	want, err := decimal.NewFromString(cond.Value)
	if err != nil {
		return false, err
	}
	switch cond.Operator {
	case models.OpEquals:
		return amount.Equal(want), nil
	case models.OpGreaterThan:
		return amount.GreaterThan(want), nil
	case models.OpLessThan:
		return amount.LessThan(want), nil
	}
	return false, nil
}
