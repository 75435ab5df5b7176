package transactions

import (
	// Go Internal Packages
	"context"
	"time"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"
	providers "paygate/providers"

	// External Packages
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TxRepository interface {
	InsertTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, id string) (models.Transaction, error)
	// UpdateTransaction must fail with a conflict when tx.Version is stale and
	// bump tx.Version on success.
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
}

type Catalog interface {
	GetGateway(ctx context.Context, id string) (models.Gateway, error)
	GetJournal(ctx context.Context, id string) (models.Journal, error)
	GetProfile(ctx context.Context, id string) (models.PaymentProfile, error)
}

type Ledger interface {
	CreateEntry(ctx context.Context, journalID string, date time.Time, lines []models.LedgerLine, origin string) (string, error)
	Post(ctx context.Context, ref string) error
	Delete(ctx context.Context, ref string) error
	FindEntry(ctx context.Context, origin, party string) (models.LedgerEntry, bool, error)
}

type AuditLog interface {
	Append(ctx context.Context, transactionID, message string, systemGenerated bool) (models.LogEntry, error)
}

type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type Converter interface {
	Convert(amount decimal.Decimal, from models.Currency) (decimal.Decimal, error)
	Foreign(cur models.Currency) bool
}

type Metrics interface {
	ObserveOutcome(operation, result string)
}

// Machine owns the lifecycle of payment transactions. Every operation works on
// a batch of ids and reports one Outcome per id.
type Machine struct {
	Logger    *zap.Logger
	Repo      TxRepository
	Catalog   Catalog
	Registry  *providers.Registry
	Ledger    Ledger
	Audit     AuditLog
	Locker    Locker
	Converter Converter
	Metrics   Metrics
	Now       func() time.Time
}

type Deps struct {
	Repo      TxRepository
	Catalog   Catalog
	Registry  *providers.Registry
	Ledger    Ledger
	Audit     AuditLog
	Locker    Locker
	Converter Converter
	Metrics   Metrics
}

func NewMachine(logger *zap.Logger, d Deps) *Machine {
	m := &Machine{
		Logger:    logger,
		Repo:      d.Repo,
		Catalog:   d.Catalog,
		Registry:  d.Registry,
		Ledger:    d.Ledger,
		Audit:     d.Audit,
		Locker:    d.Locker,
		Converter: d.Converter,
		Metrics:   d.Metrics,
		Now:       time.Now,
	}
	if m.Metrics == nil {
		m.Metrics = nopMetrics{}
	}
	return m
}

type nopMetrics struct{}

func (nopMetrics) ObserveOutcome(string, string) {}

// Outcome is the result of one operation on one transaction.
type Outcome struct {
	ID      string       `json:"id"`
	State   models.State `json:"state,omitempty"`
	Skipped bool         `json:"skipped,omitempty"`
	Message string       `json:"message,omitempty"`
	NewID   string       `json:"new_id,omitempty"`
	Err     error        `json:"-"`
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

func (o Outcome) result() string {
	switch {
	case o.Err != nil:
		return errors.KindOf(o.Err).String()
	case o.Skipped:
		return "skipped"
	case o.Message == notPosted:
		return "not posted"
	}
	return "ok"
}

type unitFunc func(ctx context.Context, s *session, tx *models.Transaction) error

func (m *Machine) run(ctx context.Context, operation string, ids []string, fn unitFunc) []Outcome {
	out := make([]Outcome, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.runOne(ctx, operation, id, fn))
	}
	return out
}

// runOne applies fn to a single transaction while holding its lock. It stops at
// the first error; the caller sees the last committed state.
func (m *Machine) runOne(ctx context.Context, operation, id string, fn unitFunc) (o Outcome) {
	o.ID = id
	defer func() {
		m.Metrics.ObserveOutcome(operation, o.result())
		if o.Err != nil {
			m.Logger.Warn("transaction operation failed",
				zap.String("operation", operation),
				zap.String("transaction_id", id),
				zap.Error(o.Err))
		}
	}()

	if id == "" {
		o.Err = errors.EmptyParamErr("id")
		return o
	}

	unlock, err := m.Locker.Lock(ctx, "lock:transaction:"+id)
	if err != nil {
		if ctx.Err() != nil {
			o.Err = ctx.Err()
			return o
		}
		o.Err = errors.ConcurrentModificationErr(id, err)
		return o
	}
	defer unlock()

	tx, err := m.Repo.GetTransaction(ctx, id)
	if err != nil {
		o.Err = err
		return o
	}

	s := &session{m: m, persisted: tx.Copy()}
	if tx.GatewayID != "" {
		if s.gateway, err = m.Catalog.GetGateway(ctx, tx.GatewayID); err != nil {
			o.Err = err
			o.State = tx.State
			return o
		}
	}

	o.Err = fn(ctx, s, &tx)
	o.State = s.persisted.State
	o.Skipped = s.skipped
	o.Message = s.note
	o.NewID = s.newID
	return o
}
