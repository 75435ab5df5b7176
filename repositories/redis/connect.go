package redis

import (
	// Go Internal Packages
	"context"

	// External Packages
	"github.com/redis/go-redis/v9"
)

// Connect connects to the redis server holding the dead letters and the
// transaction locks and returns the client.
func Connect(ctx context.Context, uri, password string, db int) (*redis.Client, error) {
	// Configure the Redis client
	rdb := redis.NewClient(&redis.Options{
		Addr:     uri,      // Redis server address
		Password: password, // Redis password
		DB:       db,       // Logical database holding letters and locks
	})

	// Fail fast when the server is unreachable
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
