package models

import (
	// Go Internal Packages
	"time"

	// External Packages
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TxType string

const (
	TypeCharge TxType = "charge"
	TypeRefund TxType = "refund"
)

type State string

const (
	StateDraft      State = "draft"
	StateInProgress State = "in-progress"
	StateFailed     State = "failed"
	StateAuthorized State = "authorized"
	StateCompleted  State = "completed"
	StatePosted     State = "posted"
	StateCancel     State = "cancel"
)

// transitions is the complete set of legal state changes.
var transitions = map[State][]State{
	StateDraft:      {StateInProgress, StateAuthorized, StateCompleted},
	StateInProgress: {StateFailed, StateAuthorized, StateCompleted, StateCancel},
	StateAuthorized: {StateCancel, StateCompleted},
	StateCompleted:  {StatePosted},
	StateFailed:     {StateInProgress},
}

// CanTransition reports whether from -> to is an edge of the transition table.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s State) Valid() bool {
	switch s {
	case StateDraft, StateInProgress, StateFailed, StateAuthorized,
		StateCompleted, StatePosted, StateCancel:
		return true
	}
	return false
}

type Currency struct {
	Code   string `json:"code" koanf:"code"`
	Digits int32  `json:"digits" koanf:"digits"`
}

// Round rounds an amount to the currency precision.
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.Digits)
}

type Transaction struct {
	ID                string          `json:"id"`
	UUID              string          `json:"uuid"`
	Type              TxType          `json:"type"`
	State             State           `json:"state"`
	Description       string          `json:"description"`
	Date              time.Time       `json:"date"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          Currency        `json:"currency"`
	GatewayID         string          `json:"gateway_id"`
	PartyID           string          `json:"party_id"`
	AddressID         string          `json:"address_id"`
	CreditAccount     string          `json:"credit_account"`
	PaymentProfileID  string          `json:"payment_profile_id,omitempty"`
	ProviderReference string          `json:"provider_reference,omitempty"`
	LastFourDigits    string          `json:"last_four_digits,omitempty"`
	LedgerEntryID     string          `json:"ledger_entry_id,omitempty"`
	Origin            string          `json:"origin,omitempty"`
	Version           int64           `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func NewID() string {
	return uuid.NewString()
}

// OriginRef is how ledger entries refer back to the transaction they were created for.
func (t *Transaction) OriginRef() string {
	return "transaction," + t.ID
}

// FrozenFieldsEqual reports whether the fields that are immutable after draft are unchanged.
func (t *Transaction) FrozenFieldsEqual(o *Transaction) bool {
	return t.Type == o.Type &&
		t.Amount.Equal(o.Amount) &&
		t.Currency == o.Currency &&
		t.GatewayID == o.GatewayID &&
		t.PartyID == o.PartyID &&
		t.AddressID == o.AddressID &&
		t.CreditAccount == o.CreditAccount &&
		t.UUID == o.UUID
}

// Consistent checks the ledger linkage invariant.
func (t *Transaction) Consistent() bool {
	return (t.LedgerEntryID != "") == (t.State == StatePosted)
}

// Copy returns a transaction that can be mutated without affecting t.
func (t *Transaction) Copy() *Transaction {
	c := *t
	return &c
}
