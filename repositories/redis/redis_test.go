package redis

import (
	// Go Internal Packages
	"context"
	"testing"
	"time"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"

	// External Packages
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestConnectFails(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), addr, "", 0)
	assert.Error(t, err)
}

func TestDeadLetterQueue(t *testing.T) {
	mr, client := setupTestRedis(t)
	q := NewDeadLetterQueue(client, zap.NewNop())
	ctx := context.Background()

	letters := []models.DeadLetter{
		{Key: "k1", Operation: "post", TransactionID: "t1", Reason: "cannot post a transaction in state draft"},
		{Key: "k2", Reason: "invalid command body"},
	}
	require.NoError(t, q.Send(ctx, letters))

	assert.True(t, mr.Exists("tx:t1"))
	assert.True(t, mr.Exists("cmd:k2"))

	// A second failure for t1 replaces the first one.
	require.NoError(t, q.Send(ctx, []models.DeadLetter{{Key: "k3", Operation: "settle", TransactionID: "t1", Reason: "x", Retryable: true}}))

	got, err := q.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "k2", got[0].Key)
	assert.Equal(t, "settle", got[1].Operation)
	assert.True(t, got[1].Retryable)

	require.NoError(t, q.Remove(ctx, got[1]))
	got, err = q.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.False(t, mr.Exists("tx:t1"))
}

func TestLocker(t *testing.T) {
	_, client := setupTestRedis(t)
	l := NewLocker(client, LockOptions{Expiry: 5 * time.Second, Tries: 2, RetryDelay: 10 * time.Millisecond}, zap.NewNop())
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "lock:transaction:t1")
	require.NoError(t, err)

	_, err = l.Lock(ctx, "lock:transaction:t1")
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Conflict, err))

	other, err := l.Lock(ctx, "lock:transaction:t2")
	require.NoError(t, err)
	other()

	unlock()
	again, err := l.Lock(ctx, "lock:transaction:t1")
	require.NoError(t, err)
	again()
}

// failKeyHook fails every pipeline that touches key.
type failKeyHook struct {
	key string
}

func (h failKeyHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h failKeyHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return next
}

func (h failKeyHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			for _, arg := range cmd.Args() {
				if arg == h.key {
					return errors.New("write refused")
				}
			}
		}
		return next(ctx, cmds)
	}
}

func TestDeadLetterQueuePartialFailure(t *testing.T) {
	mr, client := setupTestRedis(t)
	client.AddHook(failKeyHook{key: "tx:t2"})
	q := NewDeadLetterQueue(client, zap.NewNop())

	err := q.Send(context.Background(), []models.DeadLetter{
		{Key: "k1", Operation: "post", TransactionID: "t1", Reason: "x"},
		{Key: "k2", Operation: "post", TransactionID: "t2", Reason: "y"},
	})

	require.Error(t, err, "a lost letter must fail the batch")
	assert.Contains(t, err.Error(), "tx:t2")
	assert.True(t, mr.Exists("tx:t1"))
	assert.False(t, mr.Exists("tx:t2"))
}
