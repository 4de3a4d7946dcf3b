package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
)

type Options struct {
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

// DefaultOptions covers one ledger commit: a short expiry and enough tries to
// wait behind a handful of concurrent submissions on the same account.
func DefaultOptions() Options {
	return Options{
		Expiry:     8 * time.Second,
		Tries:      40,
		RetryDelay: 50 * time.Millisecond,
	}
}

// Locker is a per-key mutex shared by every replica through Redis.
type Locker struct {
	rs   *redsync.Redsync
	opts Options
}

func New(client goredislib.UniversalClient, opts Options) *Locker {
	def := DefaultOptions()
	if opts.Expiry <= 0 {
		opts.Expiry = def.Expiry
	}
	if opts.Tries <= 0 {
		opts.Tries = def.Tries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = def.RetryDelay
	}
	return &Locker{
		rs:   redsync.New(goredis.NewPool(client)),
		opts: opts,
	}
}

// NewClient parses a redis:// URL and checks connectivity.
func NewClient(ctx context.Context, url string) (*goredislib.Client, error) {
	opts, err := goredislib.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredislib.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (l *Locker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	mutex := l.rs.NewMutex(
		key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		return domain.WrapError(domain.ErrTemporary, "acquire account lock", fmt.Errorf("%s: %w", key, err))
	}
	defer func() {
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			slog.Warn("account_lock_release_failed", "key", key, "ok", ok, "error", err)
		}
	}()

	return fn(ctx)
}
