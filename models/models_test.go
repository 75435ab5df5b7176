package models

import (
	// Go Internal Packages
	"testing"

	// External Packages
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	legal := [][2]State{
		{StateDraft, StateInProgress},
		{StateDraft, StateAuthorized},
		{StateDraft, StateCompleted},
		{StateInProgress, StateFailed},
		{StateInProgress, StateAuthorized},
		{StateInProgress, StateCompleted},
		{StateInProgress, StateCancel},
		{StateAuthorized, StateCancel},
		{StateAuthorized, StateCompleted},
		{StateCompleted, StatePosted},
		{StateFailed, StateInProgress},
	}
	for _, e := range legal {
		assert.True(t, CanTransition(e[0], e[1]), "%s -> %s", e[0], e[1])
	}

	illegal := [][2]State{
		{StateDraft, StateFailed},
		{StateDraft, StatePosted},
		{StateAuthorized, StateFailed},
		{StatePosted, StateCompleted},
		{StateCancel, StateDraft},
		{StateCompleted, StateCancel},
	}
	for _, e := range illegal {
		assert.False(t, CanTransition(e[0], e[1]), "%s -> %s", e[0], e[1])
	}
}

func TestFrozenFieldsEqual(t *testing.T) {
	tx := &Transaction{UUID: "u", Amount: decimal.NewFromInt(400), PartyID: "p1"}
	c := tx.Copy()
	c.Description = "changed"
	assert.True(t, tx.FrozenFieldsEqual(c))

	c.Amount = decimal.NewFromInt(401)
	assert.False(t, tx.FrozenFieldsEqual(c))
}

func TestConsistent(t *testing.T) {
	tx := &Transaction{State: StateCompleted}
	assert.True(t, tx.Consistent())

	tx.LedgerEntryID = "e1"
	assert.False(t, tx.Consistent())

	tx.State = StatePosted
	assert.True(t, tx.Consistent())
}

func TestParseSwipe(t *testing.T) {
	card := CardEntry{
		CardPresent: true,
		SwipeData:   "%B4111111111111111^DOE/JOHN^2512101000000000?;4111111111111111=25121010000000000000?",
	}
	require.NoError(t, card.ParseSwipe())

	assert.Equal(t, "DOE/JOHN", card.Owner)
	assert.Equal(t, "4111111111111111", card.Number)
	assert.Equal(t, "12", card.ExpiryMonth)
	assert.Equal(t, "2025", card.ExpiryYear)
	assert.Equal(t, "1111", card.LastFour())

	card.Clear()
	assert.Empty(t, card.Number)
	assert.Empty(t, card.SwipeData)
	assert.Equal(t, "DOE/JOHN", card.Owner)
}

func TestParseSwipeErrors(t *testing.T) {
	card := CardEntry{SwipeData: "garbage", Owner: "x"}
	assert.Error(t, card.ParseSwipe())
	assert.Empty(t, card.Owner)

	card = CardEntry{SwipeData: "%A4111111111111111^DOE/JOHN^2512101?;"}
	assert.Error(t, card.ParseSwipe())
}

func TestLedgerEntryBalanced(t *testing.T) {
	e := LedgerEntry{Lines: []LedgerLine{
		{Account: "rec", Party: "p1", Credit: decimal.NewFromInt(400)},
		{Account: "cash", Debit: decimal.NewFromInt(400)},
	}}
	assert.True(t, e.Balanced())
	assert.True(t, e.HasParty("p1"))
	assert.False(t, e.HasParty("p2"))

	e.Lines[1].Debit = decimal.NewFromInt(399)
	assert.False(t, e.Balanced())
}

func TestProfileDisplayName(t *testing.T) {
	p := PaymentProfile{LastFour: "1111"}
	assert.Equal(t, "Dummy xxxx xxxx xxxx 1111", p.DisplayName("Dummy"))
	assert.Equal(t, "Incomplete Card", (&PaymentProfile{}).DisplayName("Dummy"))
}
