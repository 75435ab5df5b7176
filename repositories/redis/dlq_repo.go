package redis

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"fmt"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"

	// External Packages
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type DeadLetterQueue struct {
	client   *redis.Client
	logger   *zap.Logger
	listName string
}

func NewDeadLetterQueue(client *redis.Client, logger *zap.Logger) *DeadLetterQueue {
	return &DeadLetterQueue{client: client, logger: logger, listName: "failed-commands"}
}

func letterKey(l models.DeadLetter) string {
	if l.TransactionID != "" {
		return fmt.Sprintf("tx:%s", l.TransactionID)
	}
	return fmt.Sprintf("cmd:%s", l.Key)
}

// Send stores every letter under "tx:{transaction_id}" (or "cmd:{record key}"
// when the command could not be read) and queues the key for inspection. A
// newer letter for the same transaction replaces the older one. Any letter
// that could not be stored makes Send fail so the batch is not committed.
func (r *DeadLetterQueue) Send(ctx context.Context, letters []models.DeadLetter) error {
	if len(letters) == 0 {
		return nil
	}

	successCount := 0
	var failed []error
	for _, letter := range letters {
		key := letterKey(letter)
		jsonData, err := json.Marshal(letter)
		if err != nil {
			r.logger.Error("failed to marshal dead letter", zap.String("key", key), zap.Error(err))
			failed = append(failed, fmt.Errorf("%s: %w", key, err))
			continue
		}

		// Store the letter and move its key to the tail of the queue
		_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, jsonData, 0)
			pipe.LRem(ctx, r.listName, 0, key)
			pipe.RPush(ctx, r.listName, key)
			return nil
		})
		if err != nil {
			r.logger.Error("failed to store dead letter", zap.String("key", key), zap.Error(err))
			failed = append(failed, fmt.Errorf("%s: %w", key, err))
			continue
		}
		successCount++
	}

	if successCount > 0 {
		r.logger.Info("successfully sent dead letters", zap.Int("count", successCount))
	}
	if len(failed) > 0 {
		return errors.Join(failed...)
	}
	return nil
}

// List returns the queued letters, oldest first.
func (r *DeadLetterQueue) List(ctx context.Context) ([]models.DeadLetter, error) {
	keys, err := r.client.LRange(ctx, r.listName, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.DeadLetter, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var letter models.DeadLetter
		if err := json.Unmarshal([]byte(s), &letter); err != nil {
			r.logger.Warn("skipping unreadable dead letter", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		out = append(out, letter)
	}
	return out, nil
}

// Remove drops a letter once it was replayed.
func (r *DeadLetterQueue) Remove(ctx context.Context, letter models.DeadLetter) error {
	key := letterKey(letter)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.LRem(ctx, r.listName, 0, key)
		return nil
	})
	return err
}
