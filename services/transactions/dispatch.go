package transactions

import (
	// Go Internal Packages
	"context"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"
	providers "paygate/providers"

	// External Packages
	"go.uber.org/zap"
)

// dispatch resolves the provider handler for c and runs it. When begin is set
// the transaction is committed as in-progress before the provider is called,
// so an interrupted call is never mistaken for one that was not attempted.
func (m *Machine) dispatch(ctx context.Context, s *session, tx *models.Transaction, c providers.Capability, card *models.CardEntry, begin bool) error {
	h, ok := m.Registry.Resolve(s.gateway.Provider, c)
	if !ok {
		return errors.CapabilityNotAvailableErr(string(c), s.gateway.Provider)
	}

	if begin && tx.State != models.StateInProgress {
		tx.State = models.StateInProgress
		if err := s.Save(ctx, tx); err != nil {
			return err
		}
	}

	err := h(ctx, s, providers.Call{Tx: tx, Gateway: s.gateway, Card: card})
	if err == nil {
		return nil
	}
	return m.handlerFailed(ctx, s, c, begin, err)
}

// handlerFailed decides what a handler error means for the local record. Only
// the call that opened in-progress may mark the transaction failed; a status
// query that never reached the provider says nothing about the earlier request.
func (m *Machine) handlerFailed(ctx context.Context, s *session, c providers.Capability, begin bool, err error) error {
	current := s.persisted
	// The caller may have given up; local bookkeeping must still be written.
	bg := context.WithoutCancel(ctx)

	switch {
	case errors.IsErr(err, providers.ErrNoRemoteEffect):
		if current.State != models.StateInProgress {
			return errors.E(errors.Other, string(c)+" was not sent to the provider", err)
		}
		if !begin {
			if lerr := s.Log(bg, current, "The "+string(c)+" request did not reach the provider; status query failed, outcome still unknown."); lerr != nil {
				return errors.Join(err, lerr)
			}
			return errors.E(errors.Other, "status query failed, outcome still unknown", err)
		}
		tx := current.Copy()
		tx.State = models.StateFailed
		if serr := s.Save(bg, tx); serr != nil {
			return serr
		}
		s.note = "provider unreachable, transaction failed"
		return s.Log(bg, tx, "The "+string(c)+" request did not reach the provider; transaction marked failed.")

	case ctx.Err() != nil:
		m.Logger.Warn("provider call interrupted",
			zap.String("transaction_id", current.ID),
			zap.String("capability", string(c)),
			zap.Error(err))
		msg := "The " + string(c) + " request was interrupted and its outcome is unknown."
		if current.State == models.StateInProgress {
			msg += " Run update-status to reconcile."
		}
		if lerr := s.Log(bg, current, msg); lerr != nil {
			return errors.Join(err, lerr)
		}
		return errors.E(errors.Other, "outcome unknown", err)
	}
	return err
}
