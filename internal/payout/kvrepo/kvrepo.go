// Package kvrepo stores the payout collections as JSON documents in a kvstore.
package kvrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/kvstore"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/payout"
)

const (
	PendingKey = "adminPendingUsers"
	HistoryKey = "adminPaymentHistory"
)

type Repository struct {
	store      kvstore.Store
	pendingKey string
	historyKey string
}

// New binds the repository to namespace so several instances can share one store.
func New(store kvstore.Store, namespace string) *Repository {
	return &Repository{
		store:      store,
		pendingKey: kvstore.Key(namespace, PendingKey),
		historyKey: kvstore.Key(namespace, HistoryKey),
	}
}

func (r *Repository) Keys() (pending, history string) {
	return r.pendingKey, r.historyKey
}

func (r *Repository) LoadPending(ctx context.Context) ([]payout.PayoutRequest, error) {
	return load(ctx, r.store, r.pendingKey)
}

func (r *Repository) LoadHistory(ctx context.Context) ([]payout.PayoutRequest, error) {
	return load(ctx, r.store, r.historyKey)
}

func (r *Repository) SavePending(ctx context.Context, seq []payout.PayoutRequest) error {
	return save(ctx, r.store, r.pendingKey, seq)
}

func (r *Repository) SaveHistory(ctx context.Context, seq []payout.PayoutRequest) error {
	return save(ctx, r.store, r.historyKey, seq)
}

func (r *Repository) PendingExists(ctx context.Context) (bool, error) {
	_, err := r.store.Get(ctx, r.pendingKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) Transaction(ctx context.Context, fn func(c payout.CollectionsAPI) error) error {
	err := r.store.Update(ctx, func(tx kvstore.Tx) error {
		return fn(&txCollections{tx: tx, pendingKey: r.pendingKey, historyKey: r.historyKey})
	}, r.pendingKey, r.historyKey)
	if errors.Is(err, kvstore.ErrConflict) {
		return internal.ErrConcurrentModification.WithCause(err)
	}
	return err
}

func (r *Repository) Clear(ctx context.Context) error {
	return r.store.Update(ctx, func(tx kvstore.Tx) error {
		if err := tx.Delete(ctx, r.pendingKey); err != nil {
			return err
		}
		return tx.Delete(ctx, r.historyKey)
	}, r.pendingKey, r.historyKey)
}

type txCollections struct {
	tx         kvstore.Tx
	pendingKey string
	historyKey string
}

func (c *txCollections) LoadPending(ctx context.Context) ([]payout.PayoutRequest, error) {
	return load(ctx, c.tx, c.pendingKey)
}

func (c *txCollections) LoadHistory(ctx context.Context) ([]payout.PayoutRequest, error) {
	return load(ctx, c.tx, c.historyKey)
}

func (c *txCollections) SavePending(ctx context.Context, seq []payout.PayoutRequest) error {
	return save(ctx, c.tx, c.pendingKey, seq)
}

func (c *txCollections) SaveHistory(ctx context.Context, seq []payout.PayoutRequest) error {
	return save(ctx, c.tx, c.historyKey, seq)
}

func load(ctx context.Context, tx kvstore.Tx, key string) ([]payout.PayoutRequest, error) {
	raw, err := tx.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []payout.PayoutRequest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	seq := []payout.PayoutRequest{}
	if err := json.Unmarshal(raw, &seq); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", payout.ErrMalformedCollection, key, err)
	}
	if seq == nil {
		// a stored JSON null decodes to nil
		seq = []payout.PayoutRequest{}
	}
	return seq, nil
}

func save(ctx context.Context, tx kvstore.Tx, key string, seq []payout.PayoutRequest) error {
	if seq == nil {
		seq = []payout.PayoutRequest{}
	}
	raw, err := json.Marshal(seq)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := tx.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

var _ payout.RepositoryAPI = (*Repository)(nil)
