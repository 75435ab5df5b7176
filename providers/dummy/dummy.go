// Package dummy is a credit card provider for tests. It never talks to a
// network; the outcome of every call is taken from the context:
//
//	ctx = dummy.WithOutcome(ctx, dummy.Fail)
//	results := machine.Authorize(ctx, ids)
//
// It should only be registered when explicitly enabled.
package dummy

import (
	// Go Internal Packages
	"context"
	"strings"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"
	providers "paygate/providers"

	// External Packages
	"github.com/google/uuid"
)

const ProviderID = "dummy"

type Outcome int

const (
	Succeed Outcome = iota
	Fail
	// Pending leaves the transaction in progress, as if waiting for a webhook.
	Pending
	// Unreachable fails before the request reaches the provider.
	Unreachable
	// Hang blocks until the context is done, leaving the outcome unknown.
	Hang
)

type outcomeKey struct{}

func WithOutcome(ctx context.Context, o Outcome) context.Context {
	return context.WithValue(ctx, outcomeKey{}, o)
}

func outcomeFrom(ctx context.Context) Outcome {
	if o, ok := ctx.Value(outcomeKey{}).(Outcome); ok {
		return o
	}
	return Succeed
}

const (
	refAuth    = "dummy-auth-"
	refCapture = "dummy-capture-"
	refRefund  = "dummy-refund-"
)

func Provider() providers.Provider {
	return providers.Provider{
		ID:      ProviderID,
		Name:    "Dummy",
		Methods: []string{models.MethodCreditCard},
		Handlers: map[providers.Capability]providers.Handler{
			providers.Authorize:    authorize,
			providers.Capture:      capture,
			providers.Settle:       settle,
			providers.Cancel:       cancel,
			providers.Retry:        authorize,
			providers.Refund:       refund,
			providers.UpdateStatus: updateStatus,
		},
		CreateProfile: createProfile,
	}
}

// call simulates the round trip. A nil error with ok=false means the provider
// answered with a decline.
func call(ctx context.Context) (ok bool, err error) {
	switch outcomeFrom(ctx) {
	case Unreachable:
		return false, providers.ErrNoRemoteEffect
	case Hang:
		<-ctx.Done()
		return false, ctx.Err()
	case Fail:
		return false, nil
	}
	return true, nil
}

func authorize(ctx context.Context, s providers.Session, c providers.Call) error {
	return submit(ctx, s, c, refAuth, models.StateAuthorized)
}

func capture(ctx context.Context, s providers.Session, c providers.Call) error {
	return submit(ctx, s, c, refCapture, models.StateCompleted)
}

func refund(ctx context.Context, s providers.Session, c providers.Call) error {
	return submit(ctx, s, c, refRefund, models.StateCompleted)
}

// submit records the request reference before the call so that a request whose
// answer never arrives can still be looked up by update-status.
func submit(ctx context.Context, s providers.Session, c providers.Call, prefix string, success models.State) error {
	tx := c.Tx
	tx.ProviderReference = prefix + uuid.NewString()
	if c.Card != nil {
		tx.LastFourDigits = c.Card.LastFour()
	}
	if err := s.Save(ctx, tx); err != nil {
		return err
	}

	ok, err := call(ctx)
	if err != nil {
		return err
	}

	switch {
	case outcomeFrom(ctx) == Pending:
		return s.Save(ctx, tx)
	case !ok:
		tx.State = models.StateFailed
		return s.Save(ctx, tx)
	}
	return finish(ctx, s, tx, success)
}

func finish(ctx context.Context, s providers.Session, tx *models.Transaction, state models.State) error {
	tx.State = state
	if err := s.Save(ctx, tx); err != nil {
		return err
	}
	if state == models.StateCompleted {
		return s.SafePost(ctx, tx)
	}
	return nil
}

func settle(ctx context.Context, s providers.Session, c providers.Call) error {
	ok, err := call(ctx)
	if err != nil {
		return err
	}
	if !ok || outcomeFrom(ctx) == Pending {
		// An authorized hold stays authorized; it can be settled again or cancelled.
		return s.Log(ctx, c.Tx, "settlement was not accepted by the dummy provider")
	}
	return finish(ctx, s, c.Tx, models.StateCompleted)
}

func cancel(ctx context.Context, s providers.Session, c providers.Call) error {
	if c.Tx.State != models.StateAuthorized {
		return errors.E(errors.InvalidTransition, "only authorized transactions can be cancelled", nil)
	}
	ok, err := call(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return s.Log(ctx, c.Tx, "cancellation was not accepted by the dummy provider")
	}
	c.Tx.State = models.StateCancel
	return s.Save(ctx, c.Tx)
}

// updateStatus asks the "remote side" what happened to a pending request and
// applies the answer.
func updateStatus(ctx context.Context, s providers.Session, c providers.Call) error {
	tx := c.Tx
	if outcomeFrom(ctx) == Pending {
		return nil
	}
	ok, err := call(ctx)
	if err != nil {
		return err
	}
	if !ok {
		tx.State = models.StateFailed
		return s.Save(ctx, tx)
	}

	switch {
	case strings.HasPrefix(tx.ProviderReference, refAuth):
		return finish(ctx, s, tx, models.StateAuthorized)
	case strings.HasPrefix(tx.ProviderReference, refCapture),
		strings.HasPrefix(tx.ProviderReference, refRefund):
		return finish(ctx, s, tx, models.StateCompleted)
	}
	return s.Log(ctx, tx, "dummy provider has no record of this transaction")
}

func createProfile(ctx context.Context, _ models.Gateway, card models.CardEntry) (string, error) {
	ok, err := call(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.E(errors.Invalid, "card was declined by the dummy provider", nil)
	}
	return "dummy-profile-" + uuid.NewString(), nil
}
