package profiles

import (
	// Go Internal Packages
	"context"
	"testing"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"
	providers "paygate/providers"
	dummy "paygate/providers/dummy"
	manual "paygate/providers/manual"
	memory "paygate/repositories/memory"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.InsertGateway(ctx, models.Gateway{ID: "gw-dummy", Name: "Dummy", Provider: dummy.ProviderID, Method: models.MethodCreditCard, Active: true}))
	require.NoError(t, store.InsertGateway(ctx, models.Gateway{ID: "gw-self", Name: "Cash", Provider: manual.ProviderID, Method: models.MethodManual, Active: true}))

	registry := providers.NewRegistry()
	require.NoError(t, registry.Register(manual.Provider()))
	require.NoError(t, registry.Register(dummy.Provider()))
	return NewService(zap.NewNop(), store, registry), store
}

func TestAddProfile(t *testing.T) {
	s, _ := newService(t)
	card := &models.CardEntry{Owner: "JOHN DOE", Number: "4111111111111111", ExpiryMonth: "12", ExpiryYear: "2030", CSC: "123"}

	p, err := s.AddProfile(context.Background(), "party-1", "addr-1", "gw-dummy", card)

	require.NoError(t, err)
	assert.Equal(t, "1111", p.LastFour)
	assert.Contains(t, p.ProviderReference, "dummy-profile-")
	assert.Equal(t, models.DefaultProfileSequence, p.Sequence)
	assert.Empty(t, card.Number)
	assert.Empty(t, card.CSC)
}

func TestAddProfileFromSwipe(t *testing.T) {
	s, _ := newService(t)
	card := &models.CardEntry{
		CardPresent: true,
		SwipeData:   "%B4111111111111111^DOE/JOHN^2512101000000000?;4111111111111111=25121010000000000000?",
	}

	p, err := s.AddProfile(context.Background(), "party-1", "addr-1", "gw-dummy", card)

	require.NoError(t, err)
	assert.Equal(t, "1111", p.LastFour)
	assert.Equal(t, "12", p.ExpiryMonth)
	assert.Equal(t, "2025", p.ExpiryYear)
	assert.Empty(t, card.SwipeData)
}

func TestAddProfileFailures(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	card := func() *models.CardEntry {
		return &models.CardEntry{Number: "4111111111111111", ExpiryMonth: "12", ExpiryYear: "2030"}
	}

	_, err := s.AddProfile(ctx, "party-1", "addr-1", "gw-self", card())
	assert.True(t, errors.Is(errors.CapabilityNotAvailable, err))

	declined := card()
	_, err = s.AddProfile(dummy.WithOutcome(ctx, dummy.Fail), "party-1", "addr-1", "gw-dummy", declined)
	assert.Error(t, err)
	assert.Empty(t, declined.Number)

	_, err = s.AddProfile(ctx, "", "addr-1", "gw-dummy", &models.CardEntry{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "party_id cannot be empty")
	assert.Contains(t, err.Error(), "number cannot be empty")
}

func TestDefaultProfile(t *testing.T) {
	s, store := newService(t)
	ctx := context.Background()

	_, found, err := s.DefaultProfile(ctx, "party-1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.InsertProfile(ctx, models.PaymentProfile{ID: "a", PartyID: "party-1", Sequence: 1, Active: false}))
	require.NoError(t, store.InsertProfile(ctx, models.PaymentProfile{ID: "b", PartyID: "party-1", Sequence: 5, Active: true}))
	require.NoError(t, store.InsertProfile(ctx, models.PaymentProfile{ID: "c", PartyID: "party-1", Sequence: 10, Active: true}))

	p, found, err := s.DefaultProfile(ctx, "party-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "b", p.ID)
}
