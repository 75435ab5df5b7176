package ledger

import (
	// Go Internal Packages
	"context"
	"fmt"
	"time"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"

	// External Packages
	"go.uber.org/zap"
)

type EntryRepository interface {
	InsertEntry(ctx context.Context, entry models.LedgerEntry) error
	GetEntry(ctx context.Context, id string) (models.LedgerEntry, error)
	UpdateEntry(ctx context.Context, entry models.LedgerEntry) error
	DeleteEntry(ctx context.Context, id string) error
	FindEntries(ctx context.Context, origin string) ([]models.LedgerEntry, error)
	NextEntryNumber(ctx context.Context, journalID string) (int, error)
}

type AccountRepository interface {
	GetAccount(ctx context.Context, code string) (models.Account, error)
}

// PeriodLayout is the format of closed fiscal period keys, e.g. "2026-09".
const PeriodLayout = "2006-01"

// Book is the double-entry ledger adapter. Entries are created unposted and
// become final with Post; only unposted entries can be deleted.
type Book struct {
	Logger        *zap.Logger
	Entries       EntryRepository
	Accounts      AccountRepository
	ClosedPeriods map[string]bool
	Now           func() time.Time
}

func NewBook(logger *zap.Logger, entries EntryRepository, accounts AccountRepository, closedPeriods []string) *Book {
	closed := make(map[string]bool, len(closedPeriods))
	for _, p := range closedPeriods {
		closed[p] = true
	}
	return &Book{Logger: logger, Entries: entries, Accounts: accounts, ClosedPeriods: closed, Now: time.Now}
}

// CreateEntry stores an unposted entry and returns its reference.
func (b *Book) CreateEntry(ctx context.Context, journalID string, date time.Time, lines []models.LedgerLine, origin string) (string, error) {
	entry := models.LedgerEntry{
		ID:        models.NewID(),
		JournalID: journalID,
		Date:      date,
		Origin:    origin,
		Lines:     lines,
		CreatedAt: b.Now().UTC(),
	}
	if len(lines) < 2 || !entry.Balanced() {
		return "", errors.UnrecoverableLedgerErr(fmt.Sprintf("entry for %s is not balanced", origin), nil)
	}

	if err := b.Entries.InsertEntry(ctx, entry); err != nil {
		return "", errors.UnrecoverableLedgerErr("cannot store ledger entry", err)
	}
	return entry.ID, nil
}

// Post validates the entry against the chart of accounts and the fiscal
// calendar, then makes it final.
func (b *Book) Post(ctx context.Context, ref string) error {
	entry, err := b.Entries.GetEntry(ctx, ref)
	if err != nil {
		return errors.UnrecoverableLedgerErr("cannot load ledger entry", err)
	}
	if entry.Posted {
		return nil
	}

	period := entry.Date.Format(PeriodLayout)
	if b.ClosedPeriods[period] {
		return errors.RecoverableLedgerErr(fmt.Sprintf("fiscal period %s is closed", period), nil)
	}

	for _, line := range entry.Lines {
		account, err := b.Accounts.GetAccount(ctx, line.Account)
		if errors.Is(errors.NotFound, err) {
			return errors.RecoverableLedgerErr(fmt.Sprintf("account %s does not exist", line.Account), nil)
		}
		if err != nil {
			return errors.UnrecoverableLedgerErr("cannot load account", err)
		}
		if account.PartyRequired && line.Party == "" {
			return errors.RecoverableLedgerErr(fmt.Sprintf("a party is required on account %s", account.Code), nil)
		}
	}
	if !entry.Balanced() {
		return errors.UnrecoverableLedgerErr(fmt.Sprintf("ledger entry %s is not balanced", entry.ID), nil)
	}

	n, err := b.Entries.NextEntryNumber(ctx, entry.JournalID)
	if err != nil {
		return errors.UnrecoverableLedgerErr("cannot number ledger entry", err)
	}
	entry.Number = fmt.Sprintf("%s/%d", entry.JournalID, n)
	entry.Posted = true
	entry.PostedAt = b.Now().UTC()
	if err := b.Entries.UpdateEntry(ctx, entry); err != nil {
		return errors.UnrecoverableLedgerErr("cannot post ledger entry", err)
	}

	b.Logger.Info("ledger entry posted", zap.String("entry_id", entry.ID), zap.String("number", entry.Number))
	return nil
}

func (b *Book) Delete(ctx context.Context, ref string) error {
	entry, err := b.Entries.GetEntry(ctx, ref)
	if err != nil {
		return errors.UnrecoverableLedgerErr("cannot load ledger entry", err)
	}
	if entry.Posted {
		return errors.UnrecoverableLedgerErr(fmt.Sprintf("ledger entry %s is posted and cannot be deleted", ref), nil)
	}
	if err := b.Entries.DeleteEntry(ctx, ref); err != nil {
		return errors.UnrecoverableLedgerErr("cannot delete ledger entry", err)
	}
	return nil
}

// FindEntry returns the first entry created for origin that has a line for party.
func (b *Book) FindEntry(ctx context.Context, origin, party string) (models.LedgerEntry, bool, error) {
	entries, err := b.Entries.FindEntries(ctx, origin)
	if err != nil {
		return models.LedgerEntry{}, false, errors.UnrecoverableLedgerErr("cannot search ledger entries", err)
	}
	for _, e := range entries {
		if e.HasParty(party) {
			return e, true, nil
		}
	}
	return models.LedgerEntry{}, false, nil
}
