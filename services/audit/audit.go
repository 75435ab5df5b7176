package audit

import (
	// Go Internal Packages
	"context"
	"fmt"
	"strings"
	"time"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"

	// External Packages
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type LogRepository interface {
	InsertLog(ctx context.Context, entry models.LogEntry) error
	GetLog(ctx context.Context, id string) (models.LogEntry, error)
	UpdateLog(ctx context.Context, entry models.LogEntry) error
	ListLogs(ctx context.Context, transactionID string) ([]models.LogEntry, error)
}

// Log is the append-only audit trail of transactions.
type Log struct {
	Logger *zap.Logger
	Repo   LogRepository
	Now    func() time.Time
}

func NewLog(logger *zap.Logger, repo LogRepository) *Log {
	return &Log{Logger: logger, Repo: repo, Now: time.Now}
}

// Append records a message against a transaction.
func (l *Log) Append(ctx context.Context, transactionID, message string, systemGenerated bool) (models.LogEntry, error) {
	if transactionID == "" {
		return models.LogEntry{}, errors.EmptyParamErr("transaction_id")
	}
	if strings.TrimSpace(message) == "" {
		return models.LogEntry{}, errors.EmptyParamErr("message")
	}

	entry := models.LogEntry{
		ID:              models.NewID(),
		TransactionID:   transactionID,
		Timestamp:       l.Now().UTC(),
		Message:         message,
		SystemGenerated: systemGenerated,
	}
	if err := l.Repo.InsertLog(ctx, entry); err != nil {
		return models.LogEntry{}, fmt.Errorf("failed to insert log: %w", err)
	}

	l.Logger.Debug("transaction log appended",
		zap.String("transaction_id", transactionID),
		zap.Bool("system_generated", systemGenerated))
	return entry, nil
}

// AppendStructured serialises data as YAML and stores it as a system entry.
// Useful to keep raw provider responses next to the transaction.
func (l *Log) AppendStructured(ctx context.Context, transactionID string, data any) (models.LogEntry, error) {
	out, err := yaml.Marshal(data)
	if err != nil {
		return models.LogEntry{}, errors.E(errors.Invalid, "cannot serialise log data", err)
	}
	return l.Append(ctx, transactionID, string(out), true)
}

func (l *Log) AddNote(ctx context.Context, transactionID, note string) (models.LogEntry, error) {
	return l.Append(ctx, transactionID, note, false)
}

// EditNote changes a user note. System generated entries are immutable.
func (l *Log) EditNote(ctx context.Context, id, note string) error {
	entry, err := l.Repo.GetLog(ctx, id)
	if err != nil {
		return err
	}
	if entry.SystemGenerated {
		return errors.E(errors.Invalid, "system generated log entries cannot be edited", nil)
	}
	if strings.TrimSpace(note) == "" {
		return errors.EmptyParamErr("message")
	}
	entry.Message = note
	return l.Repo.UpdateLog(ctx, entry)
}

func (l *Log) List(ctx context.Context, transactionID string) ([]models.LogEntry, error) {
	return l.Repo.ListLogs(ctx, transactionID)
}
