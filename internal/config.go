package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
	StorageDriverRedis    = "redis"
)

type Config struct {
	Env           string              `mapstructure:"env" validate:"required,oneof=development production test"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Security      SecurityConfig      `mapstructure:"security"`
	Payout        PayoutConfig        `mapstructure:"payout"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type StorageConfig struct {
	Driver    string         `mapstructure:"driver" validate:"required,oneof=memory sqlite postgres redis"`
	Namespace string         `mapstructure:"namespace"`
	SQLite    SQLiteConfig   `mapstructure:"sqlite"`
	Postgres  PostgresConfig `mapstructure:"postgres"`
	Redis     RedisConfig    `mapstructure:"redis"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	Source          string        `mapstructure:"source"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
}

type SecurityConfig struct {
	SessionSecret   string        `mapstructure:"session_secret" validate:"required,min=32"`
	SessionDuration time.Duration `mapstructure:"session_duration" validate:"required,min=1m"`
	Issuer          string        `mapstructure:"issuer"`
}

type PayoutConfig struct {
	MinimumWithdrawal float64        `mapstructure:"minimum_withdrawal" validate:"gte=0"`
	SeedOnStart       bool           `mapstructure:"seed_on_start"`
	Overview          OverviewConfig `mapstructure:"overview"`
}

// OverviewConfig holds the figures shown on the user dashboard cards.
type OverviewConfig struct {
	HoursRecorded     float64 `mapstructure:"hours_recorded" validate:"gte=0"`
	TotalEarnings     float64 `mapstructure:"total_earnings" validate:"gte=0"`
	AvailableToPayout float64 `mapstructure:"available_to_payout" validate:"gte=0"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Path            string `mapstructure:"path" validate:"required_if=Enabled true"`
	RefreshSchedule string `mapstructure:"refresh_schedule"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// DefaultConfig supplies every key config.yml and the environment leave unset.
func DefaultConfig() Config {
	return Config{
		Env: "development",
		Server: ServerConfig{
			Port:              8080,
			AllowedOrigins:    "*",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
			WriteTimeout:      15 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Storage: StorageConfig{
			Driver:    StorageDriverSQLite,
			Namespace: "koe",
			SQLite:    SQLiteConfig{Path: "koe-dashboard.db"},
			Postgres: PostgresConfig{
				MaxOpenConns:    10,
				MaxIdleConns:    5,
				ConnMaxLifetime: 30 * time.Minute,
				ConnMaxIdleTime: 5 * time.Minute,
			},
			Redis: RedisConfig{Addr: "localhost:6379"},
		},
		Security: SecurityConfig{
			SessionDuration: 12 * time.Hour,
			Issuer:          "koe-dashboard",
		},
		Payout: PayoutConfig{
			MinimumWithdrawal: 500,
			SeedOnStart:       true,
			Overview: OverviewConfig{
				HoursRecorded:     12.5,
				TotalEarnings:     3250,
				AvailableToPayout: 1200,
			},
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled:         true,
				Path:            "/metrics",
				RefreshSchedule: "@every 30s",
			},
			Logging: LoggingConfig{Level: "info", Format: "text"},
		},
	}
}

// ----------------- VALIDATION -----------------

var configValidator = validator.New()

func (c *Config) Validate() error {
	var errs []string

	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *StorageConfig) Validate() error {
	switch c.Driver {
	case StorageDriverSQLite:
		if c.SQLite.Path == "" {
			return errors.New("sqlite.path is required for the sqlite driver")
		}
	case StorageDriverPostgres:
		if c.Postgres.Source == "" {
			return errors.New("postgres.source is required for the postgres driver")
		}
		if c.Postgres.MaxIdleConns > c.Postgres.MaxOpenConns {
			return errors.New("max_idle_conns cannot be greater than max_open_conns")
		}
	case StorageDriverRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis driver")
		}
	}
	return nil
}

// AllowedOriginList splits the comma separated origin setting.
func (c *ServerConfig) AllowedOriginList() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SQLiteDSN appends a busy timeout so concurrent writers wait instead of failing.
func (c *SQLiteConfig) SQLiteDSN() string {
	if strings.Contains(c.Path, "?") {
		return c.Path
	}
	return c.Path + "?_busy_timeout=5000"
}
