package sink

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/matzehuels/pcfguess/pkg/guess"
)

// DefaultRedisKey is the list guesses are appended to when no key is set.
const DefaultRedisKey = "pcfguess:guesses"

// DefaultBatchSize is the number of guesses sent per RPUSH.
const DefaultBatchSize = 1000

// CloseTimeout bounds the final push made by Close.
const CloseTimeout = 10 * time.Second

// Redis appends records to a Redis list. Lines are buffered and pushed in
// batches; Close pushes the remainder.
//
// The context given to NewRedis bounds the pushes made by Emit and Flush.
// Close keeps its values but not its cancellation, so a run stopped by an
// interrupt still delivers its tail.
type Redis struct {
	ctx           context.Context
	client        backend.Cmdable
	key           string
	batch         int
	ttl           time.Duration
	probabilities bool

	pending []any
	pushed  int64
}

// RedisOption configures a Redis sink.
type RedisOption func(*Redis)

// WithKey sets the list key.
func WithKey(key string) RedisOption {
	return func(s *Redis) {
		if key != "" {
			s.key = key
		}
	}
}

// WithBatchSize sets how many guesses are sent per push.
func WithBatchSize(n int) RedisOption {
	return func(s *Redis) {
		if n > 0 {
			s.batch = n
		}
	}
}

// WithTTL sets an expiration on the list, refreshed on every push.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *Redis) {
		s.ttl = ttl
	}
}

// WithRedisProbabilities stores the verbose line format in the list.
func WithRedisProbabilities(on bool) RedisOption {
	return func(s *Redis) {
		s.probabilities = on
	}
}

// NewRedis returns a sink pushing to client.
func NewRedis(ctx context.Context, client backend.Cmdable, opts ...RedisOption) *Redis {
	s := &Redis{
		ctx:    ctx,
		client: client,
		key:    DefaultRedisKey,
		batch:  DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pending = make([]any, 0, s.batch)
	return s
}

// Dial attempts and initial backoff for connecting to Redis.
const (
	DialAttempts = 3
	DialBackoff  = 500 * time.Millisecond
)

// Dial connects to the server named by a redis:// URL and pings it,
// retrying network failures with exponential backoff.
func Dial(ctx context.Context, url string) (*backend.Client, error) {
	opts, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := backend.NewClient(opts)
	err = retry(ctx, DialAttempts, DialBackoff, func() error {
		err := client.Ping(ctx).Err()
		var netErr net.Error
		if errors.As(err, &netErr) {
			return &transientError{err}
		}
		return err
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", opts.Addr, err)
	}
	return client, nil
}

// Key returns the list key.
func (s *Redis) Key() string { return s.key }

// Pushed returns the number of guesses sent to Redis so far.
func (s *Redis) Pushed() int64 { return s.pushed }

// Emit implements guess.Sink.
func (s *Redis) Emit(r guess.Record) error {
	s.pending = append(s.pending, string(AppendLine(nil, r, s.probabilities)))
	if len(s.pending) >= s.batch {
		return s.Flush()
	}
	return nil
}

// Flush pushes the buffered guesses.
func (s *Redis) Flush() error {
	return s.flush(s.ctx)
}

func (s *Redis) flush(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key, s.pending...)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push %d guesses to %s: %w", len(s.pending), s.key, err)
	}
	s.pushed += int64(len(s.pending))
	s.pending = s.pending[:0]
	return nil
}

// Close pushes the buffered guesses within CloseTimeout, even if the
// sink's context has been cancelled. It does not close the client.
func (s *Redis) Close() error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), CloseTimeout)
	defer cancel()
	return s.flush(ctx)
}

var _ guess.Sink = (*Redis)(nil)
