package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal/core/datamodel/kventry"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/kvstore"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists entries in the kv_entries table through gorm, so it runs on
// both the postgres and sqlite dialectors.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Name() string {
	return "sql:" + s.db.Dialector.Name()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var entry kventry.Entry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, kvstore.ErrNotFound
		}
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return entry.Value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	entry := kventry.Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&kventry.Entry{}).Error
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Update runs fn inside a SQL transaction. Existing rows for keys are locked
// FOR UPDATE where the dialect supports it.
func (s *Store) Update(ctx context.Context, fn func(tx kvstore.Tx) error, keys ...string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(keys) > 0 {
			var locked []kventry.Entry
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("entry_key IN ?", keys).Find(&locked).Error; err != nil {
				return fmt.Errorf("lock keys: %w", err)
			}
		}
		return fn(&Store{db: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ kvstore.Store = (*Store)(nil)
