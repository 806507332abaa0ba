package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/toolhouse/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "toolhouse:history:"

// Store implements ports.HistoryStore using a capped Redis list.
type Store struct {
	client   *backend.Client
	prefix   string
	ttl      time.Duration
	capacity int
}

type Option func(*Store)

// WithTTL sets the expiration of the history list, refreshed on every append.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithCapacity sets how many records the list keeps.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client:   client,
		prefix:   DefaultPrefix,
		ttl:      0, // No expiration by default
		capacity: 100,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key() string {
	return s.prefix + "rolls"
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Append pushes the record and trims the list to capacity.
func (s *Store) Append(ctx context.Context, record domain.RollRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key(), data)
	pipe.LTrim(ctx, s.key(), 0, int64(s.capacity-1))
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(), s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to redis: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.RollRecord, error) {
	if limit <= 0 {
		return []domain.RollRecord{}, nil
	}

	vals, err := s.client.LRange(ctx, s.key(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read from redis: %w", err)
	}

	records := make([]domain.RollRecord, 0, len(vals))
	for _, val := range vals {
		var rec domain.RollRecord
		if err := json.Unmarshal([]byte(val), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
