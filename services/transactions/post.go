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

// notPosted is the outcome message of a completed transaction whose ledger
// posting was rolled back for a configuration problem.
const notPosted = "completed, not yet posted"

// post books tx and moves it to posted. Configuration failures are recovered:
// the entry created for tx is removed, the failure is logged and tx stays
// completed so post can be run again once the configuration is fixed.
func (m *Machine) post(ctx context.Context, s *session, tx *models.Transaction) error {
	if tx.LedgerEntryID != "" {
		return nil
	}

	err := m.postEntry(ctx, s, tx)
	if err == nil || !errors.Is(errors.RecoverableLedger, err) {
		return err
	}

	msg := "Could not post transaction\n" + err.Error()
	entry, found, ferr := m.Ledger.FindEntry(ctx, tx.OriginRef(), tx.PartyID)
	if ferr != nil {
		return ferr
	}
	if found && !entry.Posted {
		if derr := m.Ledger.Delete(ctx, entry.ID); derr != nil {
			return derr
		}
		msg += "\nDeleted ledger entry #" + entry.ID
	}
	if lerr := s.Log(ctx, tx, msg); lerr != nil {
		return lerr
	}

	m.Logger.Warn("transaction left unposted",
		zap.String("transaction_id", tx.ID),
		zap.Error(err))
	s.note = notPosted
	return nil
}

func (m *Machine) postEntry(ctx context.Context, s *session, tx *models.Transaction) error {
	journal, err := m.Catalog.GetJournal(ctx, s.gateway.JournalID)
	if errors.Is(errors.NotFound, err) {
		return errors.RecoverableLedgerErr(fmt.Sprintf("gateway %s has no journal", s.gateway.Name), err)
	}
	if err != nil {
		return err
	}
	if journal.DebitAccount == "" {
		return errors.RecoverableLedgerErr(fmt.Sprintf("journal %s has no debit account", journal.Name), nil)
	}

	// An entry may be left over from an attempt whose save failed.
	entry, found, err := m.Ledger.FindEntry(ctx, tx.OriginRef(), tx.PartyID)
	if err != nil {
		return err
	}
	ref, created := entry.ID, false
	if !found {
		lines, err := m.lines(tx, journal)
		if err != nil {
			return err
		}
		if ref, err = m.Ledger.CreateEntry(ctx, journal.ID, tx.Date, lines, tx.OriginRef()); err != nil {
			return err
		}
		created = true
	}

	if err := m.Ledger.Post(ctx, ref); err != nil {
		if created && !errors.Is(errors.RecoverableLedger, err) {
			// Keep the ledger free of half-done work; recoverable failures are
			// cleaned up by post.
			if derr := m.Ledger.Delete(context.WithoutCancel(ctx), ref); derr != nil {
				return errors.Join(err, derr)
			}
		}
		return err
	}

	tx.LedgerEntryID = ref
	tx.State = models.StatePosted
	if err := s.Save(ctx, tx); err != nil {
		tx.LedgerEntryID = ""
		tx.State = s.persisted.State
		return err
	}
	return nil
}

// lines builds the two balanced lines of the entry for tx. A charge credits the
// customer account and debits the journal; a refund does the reverse.
func (m *Machine) lines(tx *models.Transaction, journal models.Journal) ([]models.LedgerLine, error) {
	amount, err := m.Converter.Convert(tx.Amount, tx.Currency)
	if err != nil {
		return nil, err
	}

	var second decimal.Decimal
	var secondCurrency string
	if m.Converter.Foreign(tx.Currency) {
		second, secondCurrency = tx.Amount, tx.Currency.Code
	}

	customer := models.LedgerLine{
		Account:              tx.CreditAccount,
		Party:                tx.PartyID,
		Description:          recName(tx),
		AmountSecondCurrency: second,
		SecondCurrency:       secondCurrency,
	}
	bank := models.LedgerLine{
		Account:              journal.DebitAccount,
		Description:          recName(tx),
		AmountSecondCurrency: second,
		SecondCurrency:       secondCurrency,
	}
	if tx.Type == models.TypeRefund {
		customer.Debit, bank.Credit = amount, amount
	} else {
		customer.Credit, bank.Debit = amount, amount
	}
	return []models.LedgerLine{customer, bank}, nil
}

func recName(tx *models.Transaction) string {
	if tx.Description != "" {
		return tx.Description
	}
	return tx.UUID
}
