// Package manual implements the "self" provider: offline settlement such as
// cash, cheque or bank transfer, where nothing leaves the building.
package manual

import (
	// Go Internal Packages
	"context"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"
	providers "paygate/providers"
)

const ProviderID = "self"

func Provider() providers.Provider {
	return providers.Provider{
		ID:      ProviderID,
		Name:    "Self",
		Methods: []string{models.MethodManual},
		Handlers: map[providers.Capability]providers.Handler{
			providers.Authorize: authorize,
			providers.Capture:   complete,
			providers.Settle:    complete,
			providers.Cancel:    cancel,
			providers.Retry:     authorize,
			providers.Refund:    complete,
		},
	}
}

func authorize(ctx context.Context, s providers.Session, call providers.Call) error {
	call.Tx.State = models.StateAuthorized
	return s.Save(ctx, call.Tx)
}

// complete marks the payment as received and posts it.
func complete(ctx context.Context, s providers.Session, call providers.Call) error {
	call.Tx.State = models.StateCompleted
	if err := s.Save(ctx, call.Tx); err != nil {
		return err
	}
	return s.SafePost(ctx, call.Tx)
}

func cancel(ctx context.Context, s providers.Session, call providers.Call) error {
	tx := call.Tx
	if call.Gateway.Method != models.MethodManual ||
		(tx.State != models.StateInProgress && tx.State != models.StateAuthorized) {
		return errors.E(errors.InvalidTransition, "cannot cancel self payments which are not manual and in-progress", nil)
	}
	tx.State = models.StateCancel
	return s.Save(ctx, tx)
}
