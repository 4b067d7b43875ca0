// Package redis keeps quiz session records and the leaderboard in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/PoluyanbIch/GoQuizBot/internal/session"
)

// Options configures the Redis client and its retry policy.
type Options struct {
	Addr     string
	Password string
	DB       int

	// Timeout bounds dialing and every read/write.
	Timeout time.Duration
	// RetryAttempts is the number of retries after the first try.
	RetryAttempts        uint
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration

	// KeyPrefix is prepended to user ids. Empty keeps keys compatible with
	// records written by earlier deployments.
	KeyPrefix      string
	LeaderboardKey string

	Logger logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 2 * time.Second
	}
	if o.RetryInitialInterval <= 0 {
		o.RetryInitialInterval = 100 * time.Millisecond
	}
	if o.RetryMaxInterval <= 0 {
		o.RetryMaxInterval = 2 * time.Second
	}
	if o.LeaderboardKey == "" {
		o.LeaderboardKey = "quiz:leaderboard"
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}

// Client wraps a Redis client; retries are done here, not by go-redis.
type Client struct {
	rdb  *redis.Client
	opts Options
	log  logrus.FieldLogger
}

func NewClient(opts Options) *Client {
	opts = opts.withDefaults()
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
		MaxRetries:   -1,
	})
	return &Client{
		rdb:  rdb,
		opts: opts,
		log:  opts.Logger.WithField("component", "redis"),
	}
}

// Ping checks connectivity with the same retry policy as every command.
func (c *Client) Ping(ctx context.Context) error {
	_, err := withRetry(ctx, c, "ping", func() (string, error) {
		return c.rdb.Ping(ctx).Result()
	})
	return err
}

func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func (c *Client) key(userID string) string {
	return c.opts.KeyPrefix + userID
}

// withRetry runs fn with exponential backoff while it fails with a
// transient error. Exhausted retries surface as session.ErrUnavailable.
func withRetry[T any](ctx context.Context, c *Client, op string, fn func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.RetryInitialInterval
	b.MaxInterval = c.opts.RetryMaxInterval

	res, err := backoff.Retry(ctx, func() (T, error) {
		v, err := fn()
		if err != nil && !isTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.opts.RetryAttempts+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.log.WithFields(logrus.Fields{
				"op":    op,
				"retry": next,
			}).WithError(err).Warn("redis command failed")
		}),
	)
	if err == nil {
		return res, nil
	}
	if isTransient(err) || errors.Is(err, context.DeadlineExceeded) {
		return res, fmt.Errorf("%w: %s: %v", session.ErrUnavailable, op, err)
	}
	return res, err
}

var transientPrefixes = []string{"LOADING", "BUSY", "TRYAGAIN", "MASTERDOWN", "CLUSTERDOWN"}

func isTransient(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	msg := err.Error()
	for _, prefix := range transientPrefixes {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return strings.Contains(msg, "connection pool timeout")
}
