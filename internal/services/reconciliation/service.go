// Package reconciliation drives statement reconciliation sessions: marking
// bank transactions as cleared against a statement and closing the session
// once the cleared total matches the statement balance.
package reconciliation

import (
	"errors"
	"fmt"
	"time"

	"accounting-ledger-backend/internal/models"
	"accounting-ledger-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotBalanced      = errors.New("reconciliation difference is not zero")
	ErrAlreadyCompleted = errors.New("reconciliation is already completed")
)

// balanceTolerance is the rounding slack allowed when completing a session.
var balanceTolerance = decimal.New(1, -2)

// Workspace is the working view of one reconciliation session.
type Workspace struct {
	Reconciliation *models.Reconciliation   `json:"reconciliation"`
	Cleared        []models.BankTransaction `json:"cleared"`
	Uncleared      []models.BankTransaction `json:"uncleared"`
	ClearedTotal   decimal.Decimal          `json:"cleared_total"`
	UnclearedTotal decimal.Decimal          `json:"uncleared_total"`
	Difference     decimal.Decimal          `json:"difference"`
}

type Service struct {
	reconciliations *repository.ReconciliationRepository
	transactions    *repository.BankTransactionRepository
	log             *logrus.Logger
}

func NewService(reconciliations *repository.ReconciliationRepository, transactions *repository.BankTransactionRepository, log *logrus.Logger) *Service {
	return &Service{reconciliations: reconciliations, transactions: transactions, log: log}
}

// Open finds or starts the in-progress session for (account, statementDate)
// and returns its workspace.
func (s *Service) Open(accountID uuid.UUID, statementDate time.Time, statementBalance decimal.Decimal) (*Workspace, error) {
	rec, err := s.reconciliations.FindOrCreate(accountID, statementDate, statementBalance)
	if err != nil {
		return nil, err
	}
	return s.workspace(rec)
}

// Get returns the workspace for an existing session.
func (s *Service) Get(recID uuid.UUID) (*Workspace, error) {
	rec, err := s.reconciliations.GetByID(recID)
	if err != nil {
		return nil, err
	}
	return s.workspace(rec)
}

// Toggle marks a bank transaction cleared or uncleared within the session
// and recomputes the session's cleared balance and difference.
func (s *Service) Toggle(recID, txID uuid.UUID, reconciled bool) (*Workspace, error) {
	rec, err := s.reconciliations.GetByID(recID)
	if err != nil {
		return nil, err
	}
	if rec.Status == models.ReconciliationCompleted {
		return nil, ErrAlreadyCompleted
	}

	tx, err := s.transactions.GetByID(txID)
	if err != nil {
		return nil, err
	}
	if tx.AccountID != rec.AccountID {
		return nil, fmt.Errorf("bank transaction %s does not belong to the reconciled account", txID)
	}

	if err := s.transactions.SetReconciled(txID, reconciled); err != nil {
		return nil, err
	}

	ws, err := s.workspace(rec)
	if err != nil {
		return nil, err
	}
	err = s.reconciliations.Update(rec.ID, map[string]interface{}{
		"cleared_balance": ws.ClearedTotal,
		"difference":      ws.Difference,
	})
	if err != nil {
		return nil, err
	}
	ws.Reconciliation.ClearedBalance = ws.ClearedTotal
	ws.Reconciliation.Difference = ws.Difference
	return ws, nil
}

// Complete closes the session. It refuses unless the cleared total matches
// the statement balance to the cent.
func (s *Service) Complete(recID uuid.UUID) (*models.Reconciliation, error) {
	rec, err := s.reconciliations.GetByID(recID)
	if err != nil {
		return nil, err
	}
	if rec.Status == models.ReconciliationCompleted {
		return nil, ErrAlreadyCompleted
	}

	ws, err := s.workspace(rec)
	if err != nil {
		return nil, err
	}
	if ws.Difference.Abs().GreaterThan(balanceTolerance) {
		return nil, fmt.Errorf("%w: difference is %s", ErrNotBalanced, ws.Difference)
	}

	now := time.Now()
	err = s.reconciliations.Update(rec.ID, map[string]interface{}{
		"cleared_balance": ws.ClearedTotal,
		"difference":      ws.Difference,
		"status":          models.ReconciliationCompleted,
		"completed_at":    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"reconciliation_id": rec.ID,
		"account_id":        rec.AccountID,
	}).Info("reconciliation completed")

	rec.ClearedBalance = ws.ClearedTotal
	rec.Difference = ws.Difference
	rec.Status = models.ReconciliationCompleted
	rec.CompletedAt = &now
	return rec, nil
}

func (s *Service) workspace(rec *models.Reconciliation) (*Workspace, error) {
	txs, err := s.transactions.ForAccountOnOrBefore(rec.AccountID, rec.StatementDate)
	if err != nil {
		return nil, err
	}

	ws := &Workspace{
		Reconciliation: rec,
		Cleared:        []models.BankTransaction{},
		Uncleared:      []models.BankTransaction{},
		ClearedTotal:   decimal.Zero,
		UnclearedTotal: decimal.Zero,
	}
	for _, tx := range txs {
		if tx.Status == models.BankTxnExcluded {
			continue
		}
		if tx.IsReconciled {
			ws.Cleared = append(ws.Cleared, tx)
			ws.ClearedTotal = ws.ClearedTotal.Add(tx.Amount)
		} else {
			ws.Uncleared = append(ws.Uncleared, tx)
			ws.UnclearedTotal = ws.UnclearedTotal.Add(tx.Amount)
		}
	}
	ws.Difference = rec.StatementBalance.Sub(ws.ClearedTotal)
	return ws, nil
}
