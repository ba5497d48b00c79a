package kventry

import "time"

// Entry is one row of the kv_entries table backing the SQL key-value store.
type Entry struct {
	Key       string    `gorm:"column:entry_key;primaryKey"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (Entry) TableName() string {
	return "kv_entries"
}
