package models

import "time"

// LogEntry is one audit record of a transaction. System generated entries cannot be edited.
type LogEntry struct {
	ID              string    `json:"id"`
	TransactionID   string    `json:"transaction_id"`
	Timestamp       time.Time `json:"timestamp"`
	Message         string    `json:"message"`
	SystemGenerated bool      `json:"system_generated"`
}
