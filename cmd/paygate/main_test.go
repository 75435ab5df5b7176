package main

import (
	// Go Internal Packages
	"context"
	"testing"

	// Local Packages
	config "paygate/config"
	models "paygate/models"
	redis "paygate/repositories/redis"
	transactions "paygate/services/transactions"

	// External Packages
	"github.com/alicebob/miniredis/v2"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func defaultConfig(t *testing.T) config.Config {
	t.Helper()
	k := koanf.New(".")
	require.NoError(t, k.Load(rawbytes.Provider(config.DefaultConfig), yaml.Parser()))
	var cfg config.Config
	require.NoError(t, k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}))
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestParseAmount(t *testing.T) {
	amount, err := parseAmount("")
	require.NoError(t, err)
	assert.Nil(t, amount)

	amount, err = parseAmount("12.50")
	require.NoError(t, err)
	assert.Equal(t, "12.5", amount.String())

	_, err = parseAmount("twelve")
	assert.Error(t, err)
}

func TestCatalogConversion(t *testing.T) {
	cfg := defaultConfig(t)

	accounts := catalogAccounts(cfg.Catalog)
	require.Len(t, accounts, 2)
	assert.Equal(t, models.AccountKind("receivable"), accounts[1].Kind)
	assert.True(t, accounts[1].PartyRequired)

	journals := catalogJournals(cfg.Catalog)
	require.Len(t, journals, 1)
	assert.Equal(t, "1000", journals[0].DebitAccount)

	gws := catalogGateways(cfg.Catalog)
	require.Len(t, gws, 1)
	assert.Equal(t, "cash-desk", gws[0].ID)
	assert.Equal(t, models.MethodManual, gws[0].Method)
}

func newTestApp(t *testing.T, cfg config.Config) *app {
	t.Helper()
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	a, err := newApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.close(context.Background()) })
	return a
}

func createCashTx(t *testing.T, a *app) models.Transaction {
	t.Helper()
	tx, err := a.machine.Create(context.Background(), transactions.NewTransaction{
		Amount:        decimal.RequireFromString("25.00"),
		Currency:      models.Currency{Code: "USD", Digits: 2},
		GatewayID:     "cash-desk",
		PartyID:       "party-1",
		AddressID:     "addr-1",
		CreditAccount: "1100",
	})
	require.NoError(t, err)
	return tx
}

func TestReplayDeadLetters(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := defaultConfig(t)
	cfg.Redis.URI = mr.Addr()
	a := newTestApp(t, cfg)
	ctx := context.Background()

	tx := createCashTx(t, a)
	client, err := a.redisClient(ctx)
	require.NoError(t, err)
	dlq := redis.NewDeadLetterQueue(client, zap.NewNop())
	require.NoError(t, dlq.Send(ctx, []models.DeadLetter{
		{Key: "k1", Operation: "process", TransactionID: tx.ID, Reason: "lock busy", Retryable: true,
			Command: models.Command{Operation: "process", IDs: []string{tx.ID, "other"}}},
		{Key: "k2", Operation: "post", TransactionID: "missing", Reason: "not found"},
	}))

	results, err := a.replayDeadLetters(ctx, dlq, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Replayed)
	require.Len(t, results[0].Outcomes, 1, "only the transaction of the letter is replayed")
	assert.False(t, results[1].Replayed)

	got, err := a.store.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateCompleted, got.State)

	logs, err := a.audit.List(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "dead_letter: k1")
	assert.True(t, logs[0].SystemGenerated)

	left, err := dlq.List(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "k2", left[0].Key)

	// Replaying by key only touches the matching letter.
	results, err = a.replayDeadLetters(ctx, dlq, []string{"unknown"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRunWithCard(t *testing.T) {
	a := newTestApp(t, defaultConfig(t))
	ctx := context.Background()
	tx := createCashTx(t, a)

	card := &models.CardEntry{Number: "4111111111111111", ExpiryMonth: "12", ExpiryYear: "2030", CSC: "123"}
	_, err := a.runWithCard(ctx, "authorize", []string{tx.ID, "other"}, card)
	assert.Error(t, err)
	assert.Empty(t, card.Number, "card data is cleared on every path")

	card = &models.CardEntry{Number: "4111111111111111", ExpiryMonth: "12", ExpiryYear: "2030", CSC: "123"}
	_, err = a.runWithCard(ctx, "settle", []string{tx.ID}, card)
	assert.Error(t, err)

	card = &models.CardEntry{Number: "4111111111111111", ExpiryMonth: "12", ExpiryYear: "2030", CSC: "123"}
	o, err := a.runWithCard(ctx, "authorize", []string{tx.ID}, card)
	require.NoError(t, err)
	require.NoError(t, o.Err)
	assert.Equal(t, models.StateAuthorized, o.State)
	assert.Empty(t, card.Number)
	assert.Empty(t, card.CSC)
}

func TestCatalogSurvivesDeactivatedGateway(t *testing.T) {
	cfg := defaultConfig(t)
	a := newTestApp(t, cfg)
	ctx := context.Background()
	require.NoError(t, a.gateways.Deactivate(ctx, "cash-desk"))

	// A restart imports the same catalog into the same store.
	require.NoError(t, a.gateways.Import(ctx, catalogAccounts(cfg.Catalog), catalogJournals(cfg.Catalog), catalogGateways(cfg.Catalog)))
}

// TestNewAppMemory wires the in-memory stack and runs a cash payment through it.
func TestNewAppMemory(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	ctx := context.Background()

	a, err := newApp(ctx, defaultConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer a.close(ctx)

	gws, err := a.gateways.TestConfiguration(ctx, []string{"cash-desk"})
	require.NoError(t, err)
	assert.True(t, gws[0].Configured)

	tx, err := a.machine.Create(ctx, transactions.NewTransaction{
		Amount:        decimal.RequireFromString("25.00"),
		Currency:      models.Currency{Code: "USD", Digits: 2},
		GatewayID:     "cash-desk",
		PartyID:       "party-1",
		AddressID:     "addr-1",
		CreditAccount: "1100",
	})
	require.NoError(t, err)

	outcomes, err := a.machine.Execute(ctx, models.Command{Operation: "capture", IDs: []string{tx.ID}})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.NoError(t, outcomes[0].Err)
	assert.Equal(t, models.StatePosted, outcomes[0].State)
}
