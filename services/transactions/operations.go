package transactions

import (
	// Go Internal Packages
	"context"
	"fmt"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"
	providers "paygate/providers"
)

// Operation names accepted by Execute.
const (
	OpAuthorize    = "authorize"
	OpCapture      = "capture"
	OpSettle       = "settle"
	OpCancel       = "cancel"
	OpRetry        = "retry"
	OpProcess      = "process"
	OpPost         = "post"
	OpRefund       = "refund"
	OpUpdateStatus = "update-status"
	OpCreateRefund = "create-refund"
)

func requireState(op string, tx *models.Transaction, allowed ...models.State) error {
	for _, s := range allowed {
		if tx.State == s {
			return nil
		}
	}
	return errors.InvalidTransitionErr(op, string(tx.State))
}

func requireCharge(op string, tx *models.Transaction) error {
	if tx.Type != models.TypeCharge {
		return errors.E(errors.InvalidTransition, fmt.Sprintf("cannot %s a %s transaction", op, tx.Type), nil)
	}
	return nil
}

// Authorize asks the provider to place a hold for each draft charge.
func (m *Machine) Authorize(ctx context.Context, ids []string) []Outcome {
	return m.run(ctx, OpAuthorize, ids, m.authorize(nil))
}

// AuthorizeWithCard authorizes one transaction with card data typed or swiped
// by an operator. The card is cleared before returning.
func (m *Machine) AuthorizeWithCard(ctx context.Context, id string, card *models.CardEntry) Outcome {
	if card != nil {
		defer card.Clear()
	}
	return m.runOne(ctx, OpAuthorize, id, m.authorize(card))
}

func (m *Machine) authorize(card *models.CardEntry) unitFunc {
	return func(ctx context.Context, s *session, tx *models.Transaction) error {
		if err := requireState(OpAuthorize, tx, models.StateDraft); err != nil {
			return err
		}
		if err := requireCharge(OpAuthorize, tx); err != nil {
			return err
		}
		return m.dispatch(ctx, s, tx, providers.Authorize, card, true)
	}
}

// Capture charges draft transactions in one step, for providers without a
// separate authorization.
func (m *Machine) Capture(ctx context.Context, ids []string) []Outcome {
	return m.run(ctx, OpCapture, ids, m.capture(nil))
}

func (m *Machine) CaptureWithCard(ctx context.Context, id string, card *models.CardEntry) Outcome {
	if card != nil {
		defer card.Clear()
	}
	return m.runOne(ctx, OpCapture, id, m.capture(card))
}

func (m *Machine) capture(card *models.CardEntry) unitFunc {
	return func(ctx context.Context, s *session, tx *models.Transaction) error {
		if err := requireState(OpCapture, tx, models.StateDraft); err != nil {
			return err
		}
		if err := requireCharge(OpCapture, tx); err != nil {
			return err
		}
		return m.dispatch(ctx, s, tx, providers.Capture, card, true)
	}
}

// Settle finalizes authorized holds.
func (m *Machine) Settle(ctx context.Context, ids []string) []Outcome {
	return m.run(ctx, OpSettle, ids, func(ctx context.Context, s *session, tx *models.Transaction) error {
		if err := requireState(OpSettle, tx, models.StateAuthorized); err != nil {
			return err
		}
		return m.dispatch(ctx, s, tx, providers.Settle, nil, false)
	})
}

// Cancel voids in-progress or authorized charges. Refund transactions are left
// alone: cancelling a refund is not supported and is reported as skipped.
func (m *Machine) Cancel(ctx context.Context, ids []string) []Outcome {
	return m.run(ctx, OpCancel, ids, func(ctx context.Context, s *session, tx *models.Transaction) error {
		if tx.Type == models.TypeRefund {
			s.skipped = true
			s.note = "refund transactions cannot be cancelled"
			return nil
		}
		if err := requireState(OpCancel, tx, models.StateInProgress, models.StateAuthorized); err != nil {
			return err
		}
		return m.dispatch(ctx, s, tx, providers.Cancel, nil, false)
	})
}

// Retry sends failed transactions through the provider again. A failed refund
// is sent as a refund.
func (m *Machine) Retry(ctx context.Context, ids []string) []Outcome {
	return m.run(ctx, OpRetry, ids, func(ctx context.Context, s *session, tx *models.Transaction) error {
		if err := requireState(OpRetry, tx, models.StateFailed); err != nil {
			return err
		}
		c := providers.Retry
		if tx.Type == models.TypeRefund {
			c = providers.Refund
		}
		return m.dispatch(ctx, s, tx, c, nil, true)
	})
}

// Process completes manual (offline) charges such as cash or cheque without
// contacting any provider.
func (m *Machine) Process(ctx context.Context, ids []string) []Outcome {
	return m.run(ctx, OpProcess, ids, func(ctx context.Context, s *session, tx *models.Transaction) error {
		if err := requireState(OpProcess, tx, models.StateDraft); err != nil {
			return err
		}
		if err := requireCharge(OpProcess, tx); err != nil {
			return err
		}
		if s.gateway.Method != models.MethodManual {
			return errors.E(errors.Invalid, "only manual transactions can be processed", nil)
		}
		tx.State = models.StateCompleted
		return s.Save(ctx, tx)
	})
}

// Post books completed transactions. Posted transactions are skipped.
func (m *Machine) Post(ctx context.Context, ids []string) []Outcome {
	return m.run(ctx, OpPost, ids, func(ctx context.Context, s *session, tx *models.Transaction) error {
		if tx.State == models.StatePosted {
			s.skipped = true
			s.note = "already posted"
			return nil
		}
		if err := requireState(OpPost, tx, models.StateCompleted); err != nil {
			return err
		}
		return m.post(ctx, s, tx)
	})
}

// Refund sends draft refund transactions to their provider.
func (m *Machine) Refund(ctx context.Context, ids []string) []Outcome {
	return m.run(ctx, OpRefund, ids, func(ctx context.Context, s *session, tx *models.Transaction) error {
		if tx.Type != models.TypeRefund {
			return errors.E(errors.InvalidTransition, "transaction type must be refund", nil)
		}
		if err := requireState(OpRefund, tx, models.StateDraft); err != nil {
			return err
		}
		return m.dispatch(ctx, s, tx, providers.Refund, nil, true)
	})
}

// UpdateStatus asks the provider for the remote status of in-progress
// transactions and reconciles the local state.
func (m *Machine) UpdateStatus(ctx context.Context, ids []string) []Outcome {
	return m.run(ctx, OpUpdateStatus, ids, func(ctx context.Context, s *session, tx *models.Transaction) error {
		if err := requireState(OpUpdateStatus, tx, models.StateInProgress); err != nil {
			return err
		}
		return m.dispatch(ctx, s, tx, providers.UpdateStatus, nil, false)
	})
}

// Execute runs a named batch operation.
func (m *Machine) Execute(ctx context.Context, cmd models.Command) ([]Outcome, error) {
	if len(cmd.IDs) == 0 {
		return nil, errors.EmptyParamErr("ids")
	}

	switch cmd.Operation {
	case OpAuthorize:
		return m.Authorize(ctx, cmd.IDs), nil
	case OpCapture:
		return m.Capture(ctx, cmd.IDs), nil
	case OpSettle:
		return m.Settle(ctx, cmd.IDs), nil
	case OpCancel:
		return m.Cancel(ctx, cmd.IDs), nil
	case OpRetry:
		return m.Retry(ctx, cmd.IDs), nil
	case OpProcess:
		return m.Process(ctx, cmd.IDs), nil
	case OpPost:
		return m.Post(ctx, cmd.IDs), nil
	case OpRefund:
		return m.Refund(ctx, cmd.IDs), nil
	case OpUpdateStatus:
		return m.UpdateStatus(ctx, cmd.IDs), nil
	case OpCreateRefund:
		return m.CreateRefunds(ctx, cmd.IDs, cmd.Amount), nil
	}
	return nil, errors.InvalidParamsErr(fmt.Errorf("unknown operation %q", cmd.Operation))
}
