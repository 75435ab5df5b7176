package transactions

import (
	// Go Internal Packages
	"context"
	"fmt"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"

	// External Packages
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateRefund creates a draft refund for a charge that left draft. The refund
// is an independent transaction; amount defaults to the full charge.
func (m *Machine) CreateRefund(ctx context.Context, id string, amount *decimal.Decimal) (string, error) {
	o := m.runOne(ctx, OpCreateRefund, id, m.createRefund(amount))
	return o.NewID, o.Err
}

// CreateRefunds creates one refund per charge. A non-nil amount applies to
// every charge in the batch.
func (m *Machine) CreateRefunds(ctx context.Context, ids []string, amount *decimal.Decimal) []Outcome {
	return m.run(ctx, OpCreateRefund, ids, m.createRefund(amount))
}

func (m *Machine) createRefund(amount *decimal.Decimal) unitFunc {
	return func(ctx context.Context, s *session, tx *models.Transaction) error {
		if tx.Type != models.TypeCharge {
			return errors.E(errors.InvalidTransition, "transaction type must be charge", nil)
		}
		if tx.State == models.StateDraft {
			return errors.InvalidTransitionErr("refund", string(tx.State))
		}

		value := tx.Amount
		if amount != nil {
			value = tx.Currency.Round(*amount)
			if !value.IsPositive() {
				return errors.E(errors.Invalid, "refund amount must be positive", nil)
			}
			if value.GreaterThan(tx.Amount) {
				return errors.E(errors.Invalid,
					fmt.Sprintf("refund amount %s exceeds the charged %s", value, tx.Amount), nil)
			}
		}

		now := m.Now().UTC()
		refund := tx.Copy()
		refund.ID = models.NewID()
		refund.UUID = models.NewID()
		refund.Type = models.TypeRefund
		refund.State = models.StateDraft
		refund.Amount = value
		refund.Origin = tx.UUID
		refund.LedgerEntryID = ""
		refund.ProviderReference = ""
		refund.Version = 0
		refund.CreatedAt = now
		refund.UpdatedAt = now

		if err := m.Repo.InsertTransaction(ctx, refund); err != nil {
			return err
		}
		if _, err := m.Audit.Append(ctx, refund.ID, "Refund created for transaction "+tx.UUID, true); err != nil {
			return err
		}

		m.Logger.Info("refund created",
			zap.String("transaction_id", tx.ID),
			zap.String("refund_id", refund.ID),
			zap.String("amount", value.String()))
		s.newID = refund.ID
		return nil
	}
}
