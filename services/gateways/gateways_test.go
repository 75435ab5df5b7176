package gateways

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
	require.NoError(t, store.PutAccount(ctx, models.Account{Code: "1000", Kind: models.AccountCash}))
	require.NoError(t, store.PutAccount(ctx, models.Account{Code: "1001", Kind: models.AccountCash, PartyRequired: true}))
	require.NoError(t, store.PutJournal(ctx, models.Journal{ID: "CASH", Name: "Cash", DebitAccount: "1000"}))
	require.NoError(t, store.PutJournal(ctx, models.Journal{ID: "CLR", Name: "Clearing", DebitAccount: "1001"}))
	require.NoError(t, store.PutJournal(ctx, models.Journal{ID: "MISC", Name: "Misc"}))

	registry := providers.NewRegistry()
	require.NoError(t, registry.Register(manual.Provider()))
	require.NoError(t, registry.Register(dummy.Provider()))
	return NewService(zap.NewNop(), store, registry), store
}

func TestCreate(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	g, err := s.Create(ctx, models.Gateway{Name: "Cash desk", Method: models.MethodManual, JournalID: "CASH"})
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, manual.ProviderID, g.Provider)
	assert.True(t, g.Active)
	assert.False(t, g.Configured)

	_, err = s.Create(ctx, models.Gateway{Name: "Bad", Provider: manual.ProviderID, Method: models.MethodCreditCard, JournalID: "CASH"})
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Invalid, err))
	assert.Contains(t, err.Error(), "credit_card is not offered by provider self")

	_, err = s.Create(ctx, models.Gateway{Name: "Orphan", Provider: dummy.ProviderID, Method: models.MethodCreditCard, JournalID: "NONE"})
	assert.True(t, errors.Is(errors.NotFound, err))
}

func TestTestConfiguration(t *testing.T) {
	s, store := newService(t)
	ctx := context.Background()

	ready, err := s.Create(ctx, models.Gateway{Name: "Cash", Method: models.MethodManual, JournalID: "CASH"})
	require.NoError(t, err)
	partyBound, err := s.Create(ctx, models.Gateway{Name: "Clearing", Method: models.MethodManual, JournalID: "CLR"})
	require.NoError(t, err)
	noDebit, err := s.Create(ctx, models.Gateway{Name: "Misc", Method: models.MethodManual, JournalID: "MISC"})
	require.NoError(t, err)

	out, err := s.TestConfiguration(ctx, []string{ready.ID, partyBound.ID, noDebit.ID})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.True(t, out[0].Configured)
	assert.False(t, out[1].Configured)
	assert.False(t, out[2].Configured)

	stored, err := store.GetGateway(ctx, ready.ID)
	require.NoError(t, err)
	assert.True(t, stored.Configured)

	require.NoError(t, s.Deactivate(ctx, ready.ID))
	_, err = s.TestConfiguration(ctx, []string{ready.ID})
	assert.True(t, errors.Is(errors.Invalid, err))
}

func TestImport(t *testing.T) {
	s, store := newService(t)
	ctx := context.Background()

	err := s.Import(ctx,
		[]models.Account{{Code: "2000", Name: "Bank", Kind: models.AccountCash}},
		[]models.Journal{{ID: "BANK", Name: "Bank", DebitAccount: "2000"}},
		[]models.Gateway{{ID: "bank", Name: "Bank transfer", Provider: manual.ProviderID, Method: models.MethodManual, JournalID: "BANK"}},
	)
	require.NoError(t, err)

	g, err := store.GetGateway(ctx, "bank")
	require.NoError(t, err)
	assert.True(t, g.Active)
	assert.True(t, g.Configured)

	// Importing again keeps the stored gateway.
	require.NoError(t, s.Deactivate(ctx, "bank"))
	err = s.Import(ctx, nil, nil, []models.Gateway{{ID: "bank", Name: "Bank transfer", Provider: manual.ProviderID, Method: models.MethodManual, JournalID: "BANK"}})
	require.NoError(t, err, "a deactivated gateway must not block start-up")

	g, err = store.GetGateway(ctx, "bank")
	require.NoError(t, err)
	assert.False(t, g.Active)
}
