// Package redis provides the shared Redis client and the distributed
// per-car lock used when several API replicas serve rentals.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout  = 5 * time.Second
	clientName   = "rental-api"
	keyNamespace = "bcr:"
)

// Options are the connection settings taken from configuration.
type Options struct {
	Addr        string
	DB          int
	DialTimeout time.Duration
}

// NewClient dials Redis and verifies the server answers before handing the
// client back. The client is closed again when the ping fails.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	timeout := opts.DialTimeout
	if timeout <= 0 {
		timeout = dialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		DB:          opts.DB,
		ClientName:  clientName,
		DialTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}

	return client, nil
}

// Ping is the readiness probe for the lock backend.
func Ping(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
