package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal/kvstore"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Connect dials redis and verifies the connection with PING.
func Connect(ctx context.Context, addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return New(client), nil
}

func (s *Store) Name() string { return "redis" }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	return get(ctx, s.client, key)
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Update WATCHes keys, lets fn read through the watching connection and
// commits buffered writes in one MULTI/EXEC. A changed key aborts with
// kvstore.ErrConflict.
func (s *Store) Update(ctx context.Context, fn func(tx kvstore.Tx) error, keys ...string) error {
	err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
		view := &watchTx{rtx: rtx, writes: make(map[string][]byte), deletes: make(map[string]bool)}
		if err := fn(view); err != nil {
			return err
		}
		_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for k := range view.deletes {
				pipe.Del(ctx, k)
			}
			for k, v := range view.writes {
				pipe.Set(ctx, k, v, 0)
			}
			return nil
		})
		return err
	}, keys...)
	if errors.Is(err, redis.TxFailedErr) {
		return kvstore.ErrConflict
	}
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

type watchTx struct {
	rtx     *redis.Tx
	writes  map[string][]byte
	deletes map[string]bool
}

func (t *watchTx) Get(ctx context.Context, key string) ([]byte, error) {
	if t.deletes[key] {
		return nil, kvstore.ErrNotFound
	}
	if v, ok := t.writes[key]; ok {
		return v, nil
	}
	return get(ctx, t.rtx, key)
}

func (t *watchTx) Set(_ context.Context, key string, value []byte) error {
	delete(t.deletes, key)
	t.writes[key] = value
	return nil
}

func (t *watchTx) Delete(_ context.Context, key string) error {
	delete(t.writes, key)
	t.deletes[key] = true
	return nil
}

func get(ctx context.Context, c redis.Cmdable, key string) ([]byte, error) {
	v, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, kvstore.ErrNotFound
		}
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return v, nil
}

var _ kvstore.Store = (*Store)(nil)
