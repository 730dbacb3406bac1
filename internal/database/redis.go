package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisPingAttempts = 3
	redisPingTimeout  = 2 * time.Second
)

// ConnectRedis dials the redis URL and waits for it to answer PING, retrying a
// few times so the API can start alongside a redis that is still booting.
// An empty URL returns a nil client and no error; callers then run without
// token revocation and with per-instance rate limits.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, nil
	}

	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(options)

	var pingErr error
	for attempt := 1; attempt <= redisPingAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		pingErr = client.Ping(pingCtx).Err()
		cancel()
		if pingErr == nil {
			return client, nil
		}

		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("redis unreachable after %d attempts: %w", redisPingAttempts, pingErr)
}
