package redis

import (
	// Go Internal Packages
	"context"
	"time"

	// Local Packages
	errors "paygate/errors"

	// External Packages
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type LockOptions struct {
	// Expiry bounds how long a crashed holder keeps the lock.
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

func DefaultLockOptions() LockOptions {
	return LockOptions{Expiry: 30 * time.Second, Tries: 20, RetryDelay: 100 * time.Millisecond}
}

// Locker serialises writers of the same transaction across instances with the
// redlock algorithm.
type Locker struct {
	rs     *redsync.Redsync
	opts   LockOptions
	logger *zap.Logger
}

func NewLocker(client *redis.Client, opts LockOptions, logger *zap.Logger) *Locker {
	return &Locker{rs: redsync.New(goredis.NewPool(client)), opts: opts, logger: logger}
}

// Lock blocks until key is acquired, the tries run out or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	if key == "" {
		return nil, errors.EmptyParamErr("key")
	}

	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errors.E(errors.Conflict, "cannot acquire lock "+key, err)
	}

	unlock := func() {
		// The caller's context may be gone by now.
		ok, err := mutex.UnlockContext(context.Background())
		if err != nil || !ok {
			l.logger.Warn("failed to release lock", zap.String("key", key), zap.Bool("held", ok), zap.Error(err))
		}
	}
	return unlock, nil
}
