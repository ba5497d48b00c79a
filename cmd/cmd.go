package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal"
	"github.com/Siddharth-Keer/Koe-Dashboard/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configDir string
	envFile   string
)

var rootCmd = &cobra.Command{
	Use:          "koe-dashboard",
	Short:        "Koe Dashboard",
	Long:         `Payout requests for Koe: users submit them, admins approve or reject them.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads config.yml from dir when present, overlays ENV_ prefixed
// variables (ENV_HTTP_SERVER_PORT, ENV_STORAGE_DRIVER, ...) and validates.
func loadConfig(dir string) (*internal.Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v, internal.DefaultConfig())

	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so environment overrides apply even
// without a config file.
func setDefaults(v *viper.Viper, d internal.Config) {
	v.SetDefault("env", d.Env)

	v.SetDefault("http_server.port", d.Server.Port)
	v.SetDefault("http_server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("http_server.read_header_timeout", d.Server.ReadHeaderTimeout)
	v.SetDefault("http_server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("http_server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("http_server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("http_server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.namespace", d.Storage.Namespace)
	v.SetDefault("storage.sqlite.path", d.Storage.SQLite.Path)
	v.SetDefault("storage.postgres.source", d.Storage.Postgres.Source)
	v.SetDefault("storage.postgres.max_open_conns", d.Storage.Postgres.MaxOpenConns)
	v.SetDefault("storage.postgres.max_idle_conns", d.Storage.Postgres.MaxIdleConns)
	v.SetDefault("storage.postgres.conn_max_lifetime", d.Storage.Postgres.ConnMaxLifetime)
	v.SetDefault("storage.postgres.conn_max_idle_time", d.Storage.Postgres.ConnMaxIdleTime)
	v.SetDefault("storage.redis.addr", d.Storage.Redis.Addr)
	v.SetDefault("storage.redis.password", d.Storage.Redis.Password)
	v.SetDefault("storage.redis.db", d.Storage.Redis.DB)

	v.SetDefault("security.session_secret", d.Security.SessionSecret)
	v.SetDefault("security.session_duration", d.Security.SessionDuration)
	v.SetDefault("security.issuer", d.Security.Issuer)

	v.SetDefault("payout.minimum_withdrawal", d.Payout.MinimumWithdrawal)
	v.SetDefault("payout.seed_on_start", d.Payout.SeedOnStart)
	v.SetDefault("payout.overview.hours_recorded", d.Payout.Overview.HoursRecorded)
	v.SetDefault("payout.overview.total_earnings", d.Payout.Overview.TotalEarnings)
	v.SetDefault("payout.overview.available_to_payout", d.Payout.Overview.AvailableToPayout)

	v.SetDefault("observability.metrics.enabled", d.Observability.Metrics.Enabled)
	v.SetDefault("observability.metrics.path", d.Observability.Metrics.Path)
	v.SetDefault("observability.metrics.refresh_schedule", d.Observability.Metrics.RefreshSchedule)
	v.SetDefault("observability.logging.level", d.Observability.Logging.Level)
	v.SetDefault("observability.logging.format", d.Observability.Logging.Format)
}

// bootstrap loads the configuration and sets up the process logger from it.
func bootstrap() (*internal.Config, error) {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.Env, cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "directory holding config.yml")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before the config")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(payoutsCmd)
	rootCmd.AddCommand(eventCmd)
}
