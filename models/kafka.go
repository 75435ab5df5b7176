package models

import (
	// External Packages
	"github.com/shopspring/decimal"
)

type Record struct {
	Key   []byte
	Value []byte
	Topic string
}

// Command is a batch operation request read from the command topic.
type Command struct {
	Operation string           `json:"operation"`
	IDs       []string         `json:"ids"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
}

// DeadLetter is a command item that could not be applied. It is kept for an
// operator to inspect and replay.
type DeadLetter struct {
	Key           string  `json:"key"`
	Operation     string  `json:"operation,omitempty"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Reason        string  `json:"reason"`
	Retryable     bool    `json:"retryable"`
	Command       Command `json:"command"`
}
