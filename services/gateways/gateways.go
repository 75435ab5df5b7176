package gateways

import (
	// Go Internal Packages
	"context"
	"fmt"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"
	providers "paygate/providers"

	// External Packages
	"go.uber.org/zap"
)

type Repository interface {
	InsertGateway(ctx context.Context, g models.Gateway) error
	GetGateway(ctx context.Context, id string) (models.Gateway, error)
	UpdateGateway(ctx context.Context, g models.Gateway) error
	ListGateways(ctx context.Context) ([]models.Gateway, error)
	PutJournal(ctx context.Context, j models.Journal) error
	GetJournal(ctx context.Context, id string) (models.Journal, error)
	PutAccount(ctx context.Context, a models.Account) error
	GetAccount(ctx context.Context, code string) (models.Account, error)
}

// DefaultProvider is used when a gateway names no provider.
const DefaultProvider = "self"

type Service struct {
	logger   *zap.Logger
	repo     Repository
	registry *providers.Registry
}

func NewService(logger *zap.Logger, repo Repository, registry *providers.Registry) *Service {
	return &Service{logger: logger, repo: repo, registry: registry}
}

// Create stores a gateway after checking that its provider is registered and
// offers the method. New gateways are active and not yet configured.
func (s *Service) Create(ctx context.Context, g models.Gateway) (models.Gateway, error) {
	ve := errors.ValidationErrs()
	if g.Name == "" {
		ve.Add("name", "cannot be empty")
	}
	if g.Provider == "" {
		g.Provider = DefaultProvider
	}
	if g.Method == "" {
		ve.Add("method", "cannot be empty")
	} else if !s.registry.SupportsMethod(g.Provider, g.Method) {
		ve.Add("method", fmt.Sprintf("%s is not offered by provider %s", g.Method, g.Provider))
	}
	if g.JournalID == "" {
		ve.Add("journal_id", "cannot be empty")
	}
	if err := ve.Err(); err != nil {
		return models.Gateway{}, err
	}

	if _, err := s.repo.GetJournal(ctx, g.JournalID); err != nil {
		return models.Gateway{}, err
	}
	if g.ID == "" {
		g.ID = models.NewID()
	}
	g.Active = true
	g.Configured = false
	if err := s.repo.InsertGateway(ctx, g); err != nil {
		return models.Gateway{}, err
	}

	s.logger.Info("gateway created",
		zap.String("gateway_id", g.ID),
		zap.String("provider", g.Provider),
		zap.String("method", g.Method))
	return g, nil
}

// TestConfiguration recomputes the configured flag of each gateway: its journal
// needs a debit account that can be posted without a party.
func (s *Service) TestConfiguration(ctx context.Context, ids []string) ([]models.Gateway, error) {
	out := make([]models.Gateway, 0, len(ids))
	for _, id := range ids {
		g, err := s.repo.GetGateway(ctx, id)
		if err != nil {
			return out, err
		}
		if !g.Active {
			return out, errors.E(errors.Invalid, fmt.Sprintf("gateway %s is not active", g.Name), nil)
		}

		configured, err := s.configured(ctx, g)
		if err != nil {
			return out, err
		}
		g.Configured = configured
		if err := s.repo.UpdateGateway(ctx, g); err != nil {
			return out, err
		}
		s.logger.Info("gateway configuration tested",
			zap.String("gateway_id", g.ID),
			zap.Bool("configured", configured))
		out = append(out, g)
	}
	return out, nil
}

func (s *Service) configured(ctx context.Context, g models.Gateway) (bool, error) {
	journal, err := s.repo.GetJournal(ctx, g.JournalID)
	if errors.Is(errors.NotFound, err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if journal.DebitAccount == "" {
		return false, nil
	}
	account, err := s.repo.GetAccount(ctx, journal.DebitAccount)
	if errors.Is(errors.NotFound, err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !account.PartyRequired, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	g, err := s.repo.GetGateway(ctx, id)
	if err != nil {
		return err
	}
	g.Active = false
	return s.repo.UpdateGateway(ctx, g)
}

func (s *Service) List(ctx context.Context) ([]models.Gateway, error) {
	return s.repo.ListGateways(ctx)
}

// Import loads a chart of accounts, journals and gateways. Accounts and
// journals are upserted; gateways that already exist are left alone. Every
// active imported gateway has its configuration tested.
func (s *Service) Import(ctx context.Context, accounts []models.Account, journals []models.Journal, gateways []models.Gateway) error {
	for _, a := range accounts {
		if err := s.repo.PutAccount(ctx, a); err != nil {
			return err
		}
	}
	for _, j := range journals {
		if err := s.repo.PutJournal(ctx, j); err != nil {
			return err
		}
	}

	ids := make([]string, 0, len(gateways))
	for _, g := range gateways {
		stored, err := s.repo.GetGateway(ctx, g.ID)
		switch {
		case err == nil:
			// A gateway an operator deactivated stays out of service.
			if !stored.Active {
				s.logger.Info("skipping inactive gateway", zap.String("gateway_id", g.ID))
				continue
			}
		case errors.Is(errors.NotFound, err):
			if _, err := s.Create(ctx, g); err != nil {
				return fmt.Errorf("gateway %s: %w", g.ID, err)
			}
		default:
			return err
		}
		ids = append(ids, g.ID)
	}

	out, err := s.TestConfiguration(ctx, ids)
	if err != nil {
		return err
	}
	for _, g := range out {
		if !g.Configured {
			s.logger.Warn("gateway is not configured for posting", zap.String("gateway_id", g.ID))
		}
	}
	return nil
}
