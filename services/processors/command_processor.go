package processors

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"fmt"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"
	transactions "paygate/services/transactions"

	// External Packages
	"go.uber.org/zap"
)

type Executor interface {
	Execute(ctx context.Context, cmd models.Command) ([]transactions.Outcome, error)
}

type DeadLetterQueue interface {
	Send(ctx context.Context, letters []models.DeadLetter) error
}

type Metrics interface {
	ObserveDeadLetters(n int)
}

// CommandProcessor applies batch commands read from the command topic.
type CommandProcessor struct {
	Logger   *zap.Logger
	Executor Executor
	DLQ      DeadLetterQueue
	Metrics  Metrics
	// Retries is how many extra attempts an item gets after a concurrent
	// modification.
	Retries int
}

func NewCommandProcessor(logger *zap.Logger, executor Executor, dlq DeadLetterQueue) *CommandProcessor {
	return &CommandProcessor{Logger: logger, Executor: executor, DLQ: dlq, Retries: 1}
}

// ProcessRecords runs every command in the batch. Items that fail are sent to
// the dead-letter queue; an error is returned only when the batch itself could
// not be handled and should not be committed.
func (p *CommandProcessor) ProcessRecords(ctx context.Context, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	var letters []models.DeadLetter
	for _, record := range records {
		letters = append(letters, p.ProcessRecord(ctx, record)...)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if len(letters) == 0 {
		return nil
	}

	if err := p.DLQ.Send(ctx, letters); err != nil {
		return fmt.Errorf("failed to send dead letters: %w", err)
	}
	if p.Metrics != nil {
		p.Metrics.ObserveDeadLetters(len(letters))
	}
	p.Logger.Warn("commands sent to dead-letter queue", zap.Int("count", len(letters)))
	return nil
}

// ProcessRecord runs one command and returns the items that failed.
func (p *CommandProcessor) ProcessRecord(ctx context.Context, record models.Record) []models.DeadLetter {
	key := string(record.Key)

	var cmd models.Command
	if err := json.Unmarshal(record.Value, &cmd); err != nil {
		p.Logger.Error("failed to unmarshal command", zap.String("key", key), zap.Error(err))
		return []models.DeadLetter{{Key: key, Reason: errors.InvalidBodyErr(err).Error()}}
	}

	outcomes, err := p.Executor.Execute(ctx, cmd)
	if err != nil {
		p.Logger.Error("failed to execute command", zap.String("key", key), zap.Error(err))
		return []models.DeadLetter{{Key: key, Operation: cmd.Operation, Reason: err.Error(), Command: cmd}}
	}

	var letters []models.DeadLetter
	for _, o := range outcomes {
		for attempt := 0; attempt < p.Retries && errors.Retryable(o.Err); attempt++ {
			retried, rerr := p.Executor.Execute(ctx, models.Command{Operation: cmd.Operation, IDs: []string{o.ID}, Amount: cmd.Amount})
			if rerr != nil || len(retried) != 1 {
				break
			}
			o = retried[0]
		}
		if o.OK() {
			p.Logger.Debug("command item applied",
				zap.String("operation", cmd.Operation),
				zap.String("transaction_id", o.ID),
				zap.String("state", string(o.State)),
				zap.Bool("skipped", o.Skipped))
			continue
		}
		letters = append(letters, models.DeadLetter{
			Key:           key,
			Operation:     cmd.Operation,
			TransactionID: o.ID,
			Reason:        o.Err.Error(),
			Retryable:     errors.Retryable(o.Err),
			Command:       models.Command{Operation: cmd.Operation, IDs: []string{o.ID}, Amount: cmd.Amount},
		})
	}
	return letters
}
