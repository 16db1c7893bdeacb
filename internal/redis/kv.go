// Package redis implements storage.KV on a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rpggio/codegenesis/internal/repository"
	"github.com/rpggio/codegenesis/internal/storage"
)

const maxTxRetries = 5

// Options configures the Redis backend.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// KVStore stores values as plain Redis strings. Update uses optimistic
// WATCH/MULTI transactions and retries when a watched key changes.
type KVStore struct {
	rdb *goredis.Client
}

var _ storage.KV = (*KVStore)(nil)

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, opts Options) (*KVStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &KVStore{rdb: rdb}, nil
}

// Get returns the value stored under key
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", storage.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Update runs fn with reads watched and writes buffered, then commits the
// writes in one MULTI/EXEC.
func (s *KVStore) Update(ctx context.Context, fn func(tx storage.Txn) error) error {
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.rdb.Watch(ctx, func(rtx *goredis.Tx) error {
			t := &txn{ctx: ctx, rtx: rtx}
			if err := fn(t); err != nil {
				return err
			}
			if len(t.writes) == 0 {
				return nil
			}
			_, err := rtx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
				for _, w := range t.writes {
					if w.delete {
						pipe.Del(ctx, w.key)
					} else {
						pipe.Set(ctx, w.key, w.value, 0)
					}
				}
				return nil
			})
			return err
		})
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: redis transaction retries exhausted", repository.ErrConflict)
}

// Close releases the client connection pool.
func (s *KVStore) Close() error {
	return s.rdb.Close()
}

type write struct {
	key    string
	value  string
	delete bool
}

type txn struct {
	ctx    context.Context
	rtx    *goredis.Tx
	writes []write
}

func (t *txn) Get(key string) (string, error) {
	for i := len(t.writes) - 1; i >= 0; i-- {
		if t.writes[i].key == key {
			if t.writes[i].delete {
				return "", storage.ErrKeyNotFound
			}
			return t.writes[i].value, nil
		}
	}
	if err := t.rtx.Watch(t.ctx, key).Err(); err != nil {
		return "", fmt.Errorf("redis watch %s: %w", key, err)
	}
	value, err := t.rtx.Get(t.ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", storage.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (t *txn) Set(key, value string) error {
	t.writes = append(t.writes, write{key: key, value: value})
	return nil
}

func (t *txn) Delete(key string) error {
	t.writes = append(t.writes, write{key: key, delete: true})
	return nil
}
