package memory

import (
	// Go Internal Packages
	"context"
	"fmt"
	"sort"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"
)

func (s *Store) InsertGateway(_ context.Context, g models.Gateway) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.gateways[g.ID]; ok {
		return errors.E(errors.Conflict, fmt.Sprintf("gateway %s already exists", g.ID), nil)
	}
	s.gateways[g.ID] = g
	return nil
}

func (s *Store) GetGateway(_ context.Context, id string) (models.Gateway, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.gateways[id]
	if !ok {
		return models.Gateway{}, errors.NotFoundErr("gateway", id)
	}
	return g, nil
}

func (s *Store) UpdateGateway(_ context.Context, g models.Gateway) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.gateways[g.ID]; !ok {
		return errors.NotFoundErr("gateway", g.ID)
	}
	s.gateways[g.ID] = g
	return nil
}

func (s *Store) ListGateways(_ context.Context) ([]models.Gateway, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Gateway, 0, len(s.gateways))
	for _, g := range s.gateways {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) PutJournal(_ context.Context, j models.Journal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.journals[j.ID] = j
	return nil
}

func (s *Store) GetJournal(_ context.Context, id string) (models.Journal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.journals[id]
	if !ok {
		return models.Journal{}, errors.NotFoundErr("journal", id)
	}
	return j, nil
}

func (s *Store) PutAccount(_ context.Context, a models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[a.Code] = a
	return nil
}

func (s *Store) GetAccount(_ context.Context, code string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[code]
	if !ok {
		return models.Account{}, errors.NotFoundErr("account", code)
	}
	return a, nil
}

func (s *Store) InsertProfile(_ context.Context, p models.PaymentProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[p.ID]; ok {
		return errors.E(errors.Conflict, fmt.Sprintf("payment profile %s already exists", p.ID), nil)
	}
	s.profiles[p.ID] = p
	return nil
}

func (s *Store) GetProfile(_ context.Context, id string) (models.PaymentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return models.PaymentProfile{}, errors.NotFoundErr("payment profile", id)
	}
	return p, nil
}

// ListProfiles returns the profiles of a party ordered by sequence.
func (s *Store) ListProfiles(_ context.Context, partyID string) ([]models.PaymentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.PaymentProfile
	for _, p := range s.profiles {
		if p.PartyID == partyID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
