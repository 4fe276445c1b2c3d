package source

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zero-day-ai/advreg/advancement"
)

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// TLS configuration for secure connections
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations
	WriteTimeout time.Duration
}

// NewRedisClient connects to Redis and verifies the connection with PING.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if opts.TLS != nil {
		redisOpts.TLSConfig = opts.TLS
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// DialRedis is NewRedisClient with default timeouts.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	return NewRedisClient(ctx, RedisOptions{URL: url})
}

// Redis reads records from a hash of id -> record JSON.
//
// Publish replaces the hash atomically and announces the change on the
// channel "{key}:changed", which Watch subscribes to.
type Redis struct {
	client redis.UniversalClient
	key    string
}

// NewRedis returns a Redis source over an existing client.
func NewRedis(client redis.UniversalClient, key string) *Redis {
	return &Redis{client: client, key: key}
}

func (r *Redis) Name() string { return "redis:" + r.key }

// Channel is the pub/sub channel used for change notifications.
func (r *Redis) Channel() string { return r.key + ":changed" }

// Load returns every record in the hash, ordered by id.
func (r *Redis) Load(ctx context.Context) ([]advancement.Record, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read hash %s: %w", r.key, err)
	}

	ids := make([]string, 0, len(fields))
	for id := range fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]advancement.Record, 0, len(ids))
	for _, id := range ids {
		var rec advancement.Record
		if err := json.Unmarshal([]byte(fields[id]), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %s: %w", id, err)
		}
		if rec.ID == "" {
			rec.ID = id
		}
		if rec.ID != id {
			return nil, fmt.Errorf("record %s stored under field %s", rec.ID, id)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Publish replaces the hash contents with records and notifies watchers.
func (r *Redis) Publish(ctx context.Context, records []advancement.Record) error {
	values := make([]any, 0, 2*len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record %s: %w", rec.ID, err)
		}
		values = append(values, rec.ID, string(data))
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(values) > 0 {
			pipe.HSet(ctx, r.key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write hash %s: %w", r.key, err)
	}

	if err := r.client.Publish(ctx, r.Channel(), len(records)).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", r.Channel(), err)
	}
	return nil
}

// Watch subscribes to change notifications.
func (r *Redis) Watch(ctx context.Context) (<-chan struct{}, error) {
	pubsub := r.client.Subscribe(ctx, r.Channel())

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to channel %s: %w", r.Channel(), err)
	}

	changes := make(chan struct{}, 1)

	go func() {
		defer close(changes)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				notify(changes)
			}
		}
	}()

	return changes, nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// notify performs a non-blocking send; a pending notification already covers the change.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
