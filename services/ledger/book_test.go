package ledger

import (
	// Go Internal Packages
	"context"
	"testing"
	"time"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"
	memory "paygate/repositories/memory"

	// External Packages
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBook(t *testing.T, closed ...string) (*Book, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.PutAccount(ctx, models.Account{Code: "1100", Kind: models.AccountReceivable, PartyRequired: true}))
	require.NoError(t, store.PutAccount(ctx, models.Account{Code: "1000", Kind: models.AccountCash}))
	return NewBook(zap.NewNop(), store, store, closed), store
}

func lines(amount string, party string) []models.LedgerLine {
	d := decimal.RequireFromString(amount)
	return []models.LedgerLine{
		{Account: "1100", Party: party, Credit: d},
		{Account: "1000", Debit: d},
	}
}

var march = time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

func TestCreateAndPost(t *testing.T) {
	b, store := newBook(t)
	ctx := context.Background()

	ref, err := b.CreateEntry(ctx, "CASH", march, lines("10", "p1"), "transaction,1")
	require.NoError(t, err)

	entry, err := store.GetEntry(ctx, ref)
	require.NoError(t, err)
	assert.False(t, entry.Posted)
	assert.Empty(t, entry.Number)

	require.NoError(t, b.Post(ctx, ref))
	entry, err = store.GetEntry(ctx, ref)
	require.NoError(t, err)
	assert.True(t, entry.Posted)
	assert.Equal(t, "CASH/1", entry.Number)

	// Posting twice keeps the number.
	require.NoError(t, b.Post(ctx, ref))
	entry, _ = store.GetEntry(ctx, ref)
	assert.Equal(t, "CASH/1", entry.Number)

	ref2, err := b.CreateEntry(ctx, "CASH", march, lines("5", "p2"), "transaction,2")
	require.NoError(t, err)
	require.NoError(t, b.Post(ctx, ref2))
	entry, _ = store.GetEntry(ctx, ref2)
	assert.Equal(t, "CASH/2", entry.Number)
}

func TestCreateRejectsUnbalanced(t *testing.T) {
	b, store := newBook(t)
	l := lines("10", "p1")
	l[1].Debit = decimal.RequireFromString("9.99")

	_, err := b.CreateEntry(context.Background(), "CASH", march, l, "transaction,1")

	assert.True(t, errors.Is(errors.UnrecoverableLedger, err))
	assert.Empty(t, store.Entries())

	_, err = b.CreateEntry(context.Background(), "CASH", march, l[:1], "transaction,1")
	assert.True(t, errors.Is(errors.UnrecoverableLedger, err))
}

func TestPostConfigurationErrorsAreRecoverable(t *testing.T) {
	ctx := context.Background()

	t.Run("missing party", func(t *testing.T) {
		b, _ := newBook(t)
		ref, err := b.CreateEntry(ctx, "CASH", march, lines("10", ""), "transaction,1")
		require.NoError(t, err)
		assert.True(t, errors.Is(errors.RecoverableLedger, b.Post(ctx, ref)))
	})

	t.Run("unknown account", func(t *testing.T) {
		b, _ := newBook(t)
		l := lines("10", "p1")
		l[1].Account = "9999"
		ref, err := b.CreateEntry(ctx, "CASH", march, l, "transaction,1")
		require.NoError(t, err)
		assert.True(t, errors.Is(errors.RecoverableLedger, b.Post(ctx, ref)))
	})

	t.Run("closed period", func(t *testing.T) {
		b, _ := newBook(t, "2026-03")
		ref, err := b.CreateEntry(ctx, "CASH", march, lines("10", "p1"), "transaction,1")
		require.NoError(t, err)
		err = b.Post(ctx, ref)
		assert.True(t, errors.Is(errors.RecoverableLedger, err))
		assert.Contains(t, err.Error(), "2026-03")
	})
}

func TestPostUnknownEntryIsUnrecoverable(t *testing.T) {
	b, _ := newBook(t)
	assert.True(t, errors.Is(errors.UnrecoverableLedger, b.Post(context.Background(), "nope")))
}

func TestDeleteOnlyUnposted(t *testing.T) {
	b, store := newBook(t)
	ctx := context.Background()

	draft, err := b.CreateEntry(ctx, "CASH", march, lines("10", "p1"), "transaction,1")
	require.NoError(t, err)
	require.NoError(t, b.Delete(ctx, draft))
	assert.Empty(t, store.Entries())

	posted, err := b.CreateEntry(ctx, "CASH", march, lines("10", "p1"), "transaction,1")
	require.NoError(t, err)
	require.NoError(t, b.Post(ctx, posted))
	assert.True(t, errors.Is(errors.UnrecoverableLedger, b.Delete(ctx, posted)))
	assert.Len(t, store.Entries(), 1)
}

func TestFindEntryMatchesParty(t *testing.T) {
	b, _ := newBook(t)
	ctx := context.Background()

	other, err := b.CreateEntry(ctx, "CASH", march, lines("10", "p2"), "transaction,1")
	require.NoError(t, err)
	mine, err := b.CreateEntry(ctx, "CASH", march, lines("10", "p1"), "transaction,1")
	require.NoError(t, err)

	e, found, err := b.FindEntry(ctx, "transaction,1", "p1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, mine, e.ID)
	assert.NotEqual(t, other, e.ID)

	_, found, err = b.FindEntry(ctx, "transaction,2", "p1")
	require.NoError(t, err)
	assert.False(t, found)
}
