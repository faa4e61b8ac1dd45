package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// maxPingRetries bounds how long startup waits for the database
const maxPingRetries = 5

// Open creates a pool and pings it with exponential backoff. Only startup
// retries; queries made through the pool never do.
func Open(ctx context.Context, dsn string, logger zerolog.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	ping := func() error { return pool.Ping(ctx) }

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	b := backoff.WithContext(backoff.WithMaxRetries(policy, maxPingRetries), ctx)

	notify := func(err error, wait time.Duration) {
		logger.Warn().Err(err).Dur("retry_in", wait).Msg("db ping failed")
	}
	if err := backoff.RetryNotify(ping, b, notify); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return pool, nil
}

func MustOpen(ctx context.Context, dsn string, logger zerolog.Logger) *pgxpool.Pool {
	pool, err := Open(ctx, dsn, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("db connect fail")
	}
	return pool
}
