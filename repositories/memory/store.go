// Package memory keeps every repository in process memory. It is used by the
// tests and by the "memory" storage mode for local runs.
package memory

import (
	// Go Internal Packages
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"
)

type Store struct {
	mu           sync.RWMutex
	transactions map[string]models.Transaction
	logs         []models.LogEntry
	entries      map[string]models.LedgerEntry
	entrySeq     map[string]int
	gateways     map[string]models.Gateway
	journals     map[string]models.Journal
	accounts     map[string]models.Account
	profiles     map[string]models.PaymentProfile
}

func NewStore() *Store {
	return &Store{
		transactions: make(map[string]models.Transaction),
		entries:      make(map[string]models.LedgerEntry),
		entrySeq:     make(map[string]int),
		gateways:     make(map[string]models.Gateway),
		journals:     make(map[string]models.Journal),
		accounts:     make(map[string]models.Account),
		profiles:     make(map[string]models.PaymentProfile),
	}
}

// InsertTransaction stores a new transaction with version 1.
func (s *Store) InsertTransaction(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[tx.ID]; ok {
		return errors.E(errors.Conflict, fmt.Sprintf("transaction %s already exists", tx.ID), nil)
	}
	tx.Version = 1
	s.transactions[tx.ID] = *tx
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok {
		return models.Transaction{}, errors.NotFoundErr("transaction", id)
	}
	return tx, nil
}

func (s *Store) FindTransactionByUUID(_ context.Context, uuid string) (models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.transactions {
		if tx.UUID == uuid {
			return tx, nil
		}
	}
	return models.Transaction{}, errors.NotFoundErr("transaction", uuid)
}

// UpdateTransaction replaces the stored transaction when tx.Version matches the
// stored version, then bumps tx.Version.
func (s *Store) UpdateTransaction(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.transactions[tx.ID]
	if !ok {
		return errors.NotFoundErr("transaction", tx.ID)
	}
	if current.Version != tx.Version {
		return errors.ConcurrentModificationErr(tx.ID, nil)
	}
	tx.Version++
	s.transactions[tx.ID] = *tx
	return nil
}

func (s *Store) InsertLog(_ context.Context, entry models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, entry)
	return nil
}

func (s *Store) GetLog(_ context.Context, id string) (models.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.logs {
		if l.ID == id {
			return l, nil
		}
	}
	return models.LogEntry{}, errors.NotFoundErr("log", id)
}

func (s *Store) UpdateLog(_ context.Context, entry models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.logs {
		if l.ID == entry.ID {
			s.logs[i] = entry
			return nil
		}
	}
	return errors.NotFoundErr("log", entry.ID)
}

// ListLogs returns the logs of a transaction in insertion order.
func (s *Store) ListLogs(_ context.Context, transactionID string) ([]models.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.LogEntry
	for _, l := range s.logs {
		if l.TransactionID == transactionID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Store) InsertEntry(_ context.Context, entry models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.ID]; ok {
		return errors.E(errors.Conflict, fmt.Sprintf("ledger entry %s already exists", entry.ID), nil)
	}
	entry.Lines = slices.Clone(entry.Lines)
	s.entries[entry.ID] = entry
	return nil
}

func (s *Store) GetEntry(_ context.Context, id string) (models.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return models.LedgerEntry{}, errors.NotFoundErr("ledger entry", id)
	}
	e.Lines = slices.Clone(e.Lines)
	return e, nil
}

func (s *Store) UpdateEntry(_ context.Context, entry models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.ID]; !ok {
		return errors.NotFoundErr("ledger entry", entry.ID)
	}
	entry.Lines = slices.Clone(entry.Lines)
	s.entries[entry.ID] = entry
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return errors.NotFoundErr("ledger entry", id)
	}
	delete(s.entries, id)
	return nil
}

// FindEntries returns the entries created for an origin, oldest first.
func (s *Store) FindEntries(_ context.Context, origin string) ([]models.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.LedgerEntry
	for _, e := range s.entries {
		if e.Origin == origin {
			e.Lines = slices.Clone(e.Lines)
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Entries returns every ledger entry, for inspection.
func (s *Store) Entries() []models.LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.LedgerEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out
}

func (s *Store) NextEntryNumber(_ context.Context, journalID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entrySeq[journalID]++
	return s.entrySeq[journalID], nil
}
