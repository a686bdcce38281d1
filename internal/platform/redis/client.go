// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis dials the cache that holds volatile identity state: email
verification tokens and two-factor secrets awaiting confirmation.

Nothing stored there is authoritative. Losing it only forces a user to
restart a flow, so the client favours short timeouts over retries.
*/
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 3 * time.Second
	ioTimeout   = 2 * time.Second
	pingTimeout = 2 * time.Second
)

/*
NewClient parses url (redis:// or rediss://), sizes the pool and verifies
the server answers.

Parameters:
  - context: context.Context (bounds the first ping)
  - url: string
  - poolSize: int (zero keeps the go-redis default)
  - logger: *slog.Logger

Returns:
  - *redis.Client
  - error: Invalid URL or unreachable server
*/
func NewClient(context context.Context, url string, poolSize int, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis_invalid_url: %w", err)
	}

	options.DialTimeout = dialTimeout
	options.ReadTimeout = ioTimeout
	options.WriteTimeout = ioTimeout
	options.MaxRetries = 1
	if poolSize > 0 {
		options.PoolSize = poolSize
		options.MinIdleConns = max(1, poolSize/5)
	}

	client := redis.NewClient(options)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
	)
	return client, nil
}

// Ping probes the server with a bounded round trip.
func Ping(parent context.Context, client *redis.Client) error {
	probe, cancel := context.WithTimeout(parent, pingTimeout)
	defer cancel()

	if err := client.Ping(probe).Err(); err != nil {
		return fmt.Errorf("redis_ping_failed: %w", err)
	}
	return nil
}
