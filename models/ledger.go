package models

import (
	// Go Internal Packages
	"time"

	// External Packages
	"github.com/shopspring/decimal"
)

type LedgerLine struct {
	Account              string          `json:"account"`
	Party                string          `json:"party,omitempty"`
	Description          string          `json:"description"`
	Debit                decimal.Decimal `json:"debit"`
	Credit               decimal.Decimal `json:"credit"`
	AmountSecondCurrency decimal.Decimal `json:"amount_second_currency"`
	SecondCurrency       string          `json:"second_currency,omitempty"`
}

type LedgerEntry struct {
	ID        string       `json:"id"`
	Number    string       `json:"number,omitempty"`
	JournalID string       `json:"journal_id"`
	Date      time.Time    `json:"date"`
	Origin    string       `json:"origin"`
	Lines     []LedgerLine `json:"lines"`
	Posted    bool         `json:"posted"`
	PostedAt  time.Time    `json:"posted_at"`
	CreatedAt time.Time    `json:"created_at"`
}

// Balanced reports whether total debit equals total credit.
func (e *LedgerEntry) Balanced() bool {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit.Equal(credit)
}

// HasParty reports whether any line references the party.
func (e *LedgerEntry) HasParty(party string) bool {
	for _, l := range e.Lines {
		if l.Party == party {
			return true
		}
	}
	return false
}
