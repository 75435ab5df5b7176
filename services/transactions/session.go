package transactions

import (
	// Go Internal Packages
	"context"
	"fmt"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"

	// External Packages
	"go.uber.org/zap"
)

// session is the unit of work around one transaction. It is handed to provider
// handlers as their providers.Session.
type session struct {
	m         *Machine
	gateway   models.Gateway
	persisted *models.Transaction
	skipped   bool
	note      string
	newID     string
}

// Save commits tx after checking the transition table and the invariants.
func (s *session) Save(ctx context.Context, tx *models.Transaction) error {
	prev := s.persisted
	if tx.ID != prev.ID {
		return errors.E(errors.Invalid, fmt.Sprintf("session for %s cannot save %s", prev.ID, tx.ID), nil)
	}
	if tx.State != prev.State && !models.CanTransition(prev.State, tx.State) {
		return errors.E(errors.InvalidTransition,
			fmt.Sprintf("transition %s -> %s is not allowed", prev.State, tx.State), nil)
	}
	if prev.State != models.StateDraft && !prev.FrozenFieldsEqual(tx) {
		return errors.E(errors.Invalid, "amount, currency, gateway, party and accounts cannot change after draft", nil)
	}
	if !tx.Consistent() {
		return errors.E(errors.Invalid, "a ledger entry must be linked exactly when the transaction is posted", nil)
	}

	tx.UpdatedAt = s.m.Now().UTC()
	if err := s.m.Repo.UpdateTransaction(ctx, tx); err != nil {
		return err
	}
	if prev.State != tx.State {
		s.m.Logger.Info("transaction state changed",
			zap.String("transaction_id", tx.ID),
			zap.String("from", string(prev.State)),
			zap.String("to", string(tx.State)))
	}
	s.persisted = tx.Copy()
	return nil
}

func (s *session) SafePost(ctx context.Context, tx *models.Transaction) error {
	return s.m.post(ctx, s, tx)
}

func (s *session) Log(ctx context.Context, tx *models.Transaction, msg string) error {
	_, err := s.m.Audit.Append(ctx, tx.ID, msg, true)
	return err
}
