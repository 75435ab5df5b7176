// Package providers holds the capability table that maps a provider id and a
// capability to the handler implementing it. Providers register themselves at
// start-up; the transaction machine resolves handlers late, by the provider
// string stored on the gateway.
package providers

import (
	// Go Internal Packages
	"context"
	"fmt"
	"sort"
	"sync"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"
)

type Capability string

const (
	Authorize    Capability = "authorize"
	Capture      Capability = "capture"
	Settle       Capability = "settle"
	Cancel       Capability = "cancel"
	Retry        Capability = "retry"
	Refund       Capability = "refund"
	UpdateStatus Capability = "update-status"
)

// ErrNoRemoteEffect is returned by a handler when the remote call is known not
// to have taken effect, so the transaction can safely be marked failed.
var ErrNoRemoteEffect = errors.New("provider call had no remote effect")

// Session is what a handler uses to act on the transaction it was given.
type Session interface {
	// Save persists tx. The state change must follow the transition table.
	Save(ctx context.Context, tx *models.Transaction) error
	// SafePost posts a completed transaction to the ledger, recovering from
	// configuration errors.
	SafePost(ctx context.Context, tx *models.Transaction) error
	// Log appends a system generated audit entry.
	Log(ctx context.Context, tx *models.Transaction, msg string) error
}

type Call struct {
	Tx      *models.Transaction
	Gateway models.Gateway
	Card    *models.CardEntry
}

// Handler performs one capability. It is responsible for setting the resulting
// state and saving the transaction through the session.
type Handler func(ctx context.Context, s Session, call Call) error

// ProfileCreator stores a card with the provider and returns its reference.
type ProfileCreator func(ctx context.Context, gateway models.Gateway, card models.CardEntry) (string, error)

type Provider struct {
	ID            string
	Name          string
	Methods       []string
	Handlers      map[Capability]Handler
	CreateProfile ProfileCreator
}

type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider. Handlers may cover any subset of the capabilities.
func (r *Registry) Register(p Provider) error {
	ve := errors.ValidationErrs()
	if p.ID == "" {
		ve.Add("id", "cannot be empty")
	}
	if len(p.Methods) == 0 {
		ve.Add("methods", "cannot be empty")
	}
	for c, h := range p.Handlers {
		if h == nil {
			ve.Add(string(c), "handler cannot be nil")
		}
	}
	if err := ve.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[p.ID]; ok {
		return errors.E(errors.Conflict, fmt.Sprintf("provider %s already registered", p.ID), nil)
	}
	handlers := make(map[Capability]Handler, len(p.Handlers))
	for c, h := range p.Handlers {
		handlers[c] = h
	}
	p.Handlers = handlers
	r.providers[p.ID] = p
	return nil
}

// Resolve returns the handler for (provider, capability), if any.
func (r *Registry) Resolve(provider string, c Capability) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[provider]
	if !ok {
		return nil, false
	}
	h, ok := p.Handlers[c]
	return h, ok
}

func (r *Registry) Methods(provider string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.providers[provider].Methods...)
}

func (r *Registry) SupportsMethod(provider, method string) bool {
	for _, m := range r.Methods(provider) {
		if m == method {
			return true
		}
	}
	return false
}

// Providers lists the registered provider ids in name order.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) ProfileCreator(provider string) (ProfileCreator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[provider]
	if !ok || p.CreateProfile == nil {
		return nil, false
	}
	return p.CreateProfile, true
}
