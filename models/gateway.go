package models

// Gateway binds a provider and one of its methods to a ledger journal.
type Gateway struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Provider   string `json:"provider"`
	Method     string `json:"method"`
	JournalID  string `json:"journal_id"`
	Test       bool   `json:"test"`
	Active     bool   `json:"active"`
	Configured bool   `json:"configured"`
}

const (
	MethodManual     = "manual"
	MethodCreditCard = "credit_card"
)

type Journal struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DebitAccount string `json:"debit_account"`
}

type AccountKind string

const (
	AccountReceivable AccountKind = "receivable"
	AccountCash       AccountKind = "cash"
	AccountRevenue    AccountKind = "revenue"
)

type Account struct {
	Code          string      `json:"code"`
	Name          string      `json:"name"`
	Kind          AccountKind `json:"kind"`
	PartyRequired bool        `json:"party_required"`
}
