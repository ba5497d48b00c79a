package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Siddharth-Keer/Koe-Dashboard/db/migrations"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/kvstore"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/kvstore/gormstore"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/kvstore/memory"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/kvstore/redisstore"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqlDriver maps a storage driver to its database/sql driver and goose dialect.
func sqlDriver(driver string) (sqlName, dialect string, err error) {
	switch driver {
	case internal.StorageDriverPostgres:
		return "pgx", "postgres", nil
	case internal.StorageDriverSQLite:
		return "sqlite3", "sqlite3", nil
	default:
		return "", "", fmt.Errorf("storage driver %q is not SQL backed", driver)
	}
}

// initDB opens the SQL pool for the configured driver.
func initDB(cfg internal.StorageConfig) (*sqlx.DB, error) {
	driver, _, err := sqlDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.Postgres.Source
	if cfg.Driver == internal.StorageDriverSQLite {
		dsn = cfg.SQLite.SQLiteDSN()
	}

	dbConn, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	if cfg.Driver == internal.StorageDriverPostgres {
		dbConn.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		dbConn.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		dbConn.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
		dbConn.SetConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime)
	}

	return dbConn, nil
}

// migrateDB applies the embedded migrations on db.
func migrateDB(ctx context.Context, cfg internal.StorageConfig, db *sqlx.DB) error {
	_, dialect, err := sqlDriver(cfg.Driver)
	if err != nil {
		return err
	}
	return migrations.Up(ctx, db.DB, dialect)
}

// openGorm builds a gorm handle on top of an existing pool.
func openGorm(cfg internal.StorageConfig, db *sqlx.DB) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case internal.StorageDriverPostgres:
		dialector = postgres.New(postgres.Config{Conn: db.DB})
	case internal.StorageDriverSQLite:
		dialector = sqlite.New(sqlite.Config{DriverName: "sqlite3", Conn: db.DB})
	default:
		return nil, fmt.Errorf("storage driver %q is not SQL backed", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return gdb, nil
}

// openStore connects the configured key-value backend, migrating SQL
// backends first.
func openStore(ctx context.Context, cfg internal.StorageConfig, lg *slog.Logger) (kvstore.Store, error) {
	switch cfg.Driver {
	case internal.StorageDriverMemory:
		lg.Warn("using in-memory storage, data is lost on exit")
		return memory.New(), nil

	case internal.StorageDriverRedis:
		store, err := redisstore.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		lg.Info("storage ready", "driver", cfg.Driver, "addr", cfg.Redis.Addr)
		return store, nil

	case internal.StorageDriverSQLite, internal.StorageDriverPostgres:
		db, err := initDB(cfg)
		if err != nil {
			return nil, err
		}
		if err := migrateDB(ctx, cfg, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate storage: %w", err)
		}
		gdb, err := openGorm(cfg, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		lg.Info("storage ready", "driver", cfg.Driver)
		return gormstore.New(gdb), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
