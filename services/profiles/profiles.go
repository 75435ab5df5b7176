package profiles

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
	GetGateway(ctx context.Context, id string) (models.Gateway, error)
	InsertProfile(ctx context.Context, p models.PaymentProfile) error
	ListProfiles(ctx context.Context, partyID string) ([]models.PaymentProfile, error)
}

type Service struct {
	logger   *zap.Logger
	repo     Repository
	registry *providers.Registry
}

func NewService(logger *zap.Logger, repo Repository, registry *providers.Registry) *Service {
	return &Service{logger: logger, repo: repo, registry: registry}
}

// AddProfile stores the card with the gateway's provider and keeps only the
// provider reference, expiry and last four digits. The card is always cleared.
func (s *Service) AddProfile(ctx context.Context, partyID, addressID, gatewayID string, card *models.CardEntry) (models.PaymentProfile, error) {
	if card == nil {
		return models.PaymentProfile{}, errors.EmptyParamErr("card")
	}
	defer card.Clear()

	if card.SwipeData != "" {
		if err := card.ParseSwipe(); err != nil {
			return models.PaymentProfile{}, errors.E(errors.Invalid, "invalid swipe data", err)
		}
	}

	ve := errors.ValidationErrs()
	if partyID == "" {
		ve.Add("party_id", "cannot be empty")
	}
	if addressID == "" {
		ve.Add("address_id", "cannot be empty")
	}
	if card.Number == "" {
		ve.Add("number", "cannot be empty")
	}
	if card.ExpiryMonth == "" || card.ExpiryYear == "" {
		ve.Add("expiry", "cannot be empty")
	}
	if err := ve.Err(); err != nil {
		return models.PaymentProfile{}, err
	}

	gateway, err := s.repo.GetGateway(ctx, gatewayID)
	if err != nil {
		return models.PaymentProfile{}, err
	}
	create, ok := s.registry.ProfileCreator(gateway.Provider)
	if !ok {
		return models.PaymentProfile{}, errors.CapabilityNotAvailableErr("add payment profile", gateway.Provider)
	}

	ref, err := create(ctx, gateway, *card)
	if err != nil {
		return models.PaymentProfile{}, fmt.Errorf("provider %s rejected the card: %w", gateway.Provider, err)
	}

	p := models.PaymentProfile{
		ID:                models.NewID(),
		PartyID:           partyID,
		AddressID:         addressID,
		GatewayID:         gateway.ID,
		ProviderReference: ref,
		LastFour:          card.LastFour(),
		ExpiryMonth:       card.ExpiryMonth,
		ExpiryYear:        card.ExpiryYear,
		Sequence:          models.DefaultProfileSequence,
		Active:            true,
	}
	if err := s.repo.InsertProfile(ctx, p); err != nil {
		return models.PaymentProfile{}, err
	}

	s.logger.Info("payment profile added",
		zap.String("profile_id", p.ID),
		zap.String("party_id", partyID),
		zap.String("gateway_id", gateway.ID))
	return p, nil
}

// DefaultProfile returns the active profile of the party with the lowest
// sequence, or false when the party has none.
func (s *Service) DefaultProfile(ctx context.Context, partyID string) (models.PaymentProfile, bool, error) {
	list, err := s.repo.ListProfiles(ctx, partyID)
	if err != nil {
		return models.PaymentProfile{}, false, err
	}
	for _, p := range list {
		if p.Active {
			return p, true, nil
		}
	}
	return models.PaymentProfile{}, false, nil
}
