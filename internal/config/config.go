package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"garthbid/internal/domain/value"
)

type Config struct {
	App      App
	HTTP     HTTP
	Probe    Probe
	Metrics  Metrics
	DealFlow DealFlow
	Banker   Banker
	Redis    Redis
}

type App struct {
	Name     string     `env:"APP_NAME" envDefault:"garthbid"`
	Version  string     `env:"APP_VERSION" envDefault:"dev"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`
}

type HTTP struct {
	ListenAddress   string        `env:"HTTP_LISTEN_ADDRESS" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogFieldMaxLen  int           `env:"HTTP_LOG_FIELD_MAX_LEN" envDefault:"1024"`
}

type Probe struct {
	ListenAddress string `env:"PROBE_LISTEN_ADDRESS" envDefault:":8081"`
}

type Metrics struct {
	ListenAddress string `env:"METRICS_LISTEN_ADDRESS" envDefault:":9090"`
}

type DealFlow struct {
	FeeRate       decimal.Decimal `env:"DEALFLOW_FEE_RATE" envDefault:"0.05"`
	PaymentWindow time.Duration   `env:"DEALFLOW_PAYMENT_WINDOW" envDefault:"72h"`
	TimerInterval time.Duration   `env:"DEALFLOW_TIMER_INTERVAL" envDefault:"1s"`
	SeedMockData  bool            `env:"DEALFLOW_SEED_MOCK_DATA" envDefault:"true"`
}

type Banker struct {
	LockWeekday       string             `env:"BANKER_LOCK_WEEKDAY" envDefault:"monday"`
	LockHour          int                `env:"BANKER_LOCK_HOUR" envDefault:"12"`
	LockTimezone      string             `env:"BANKER_LOCK_TIMEZONE" envDefault:"Local"`
	LockOverride      value.LockOverride `env:"BANKER_LOCK_OVERRIDE"`
	DefaultTemplate   string             `env:"BANKER_DEFAULT_TEMPLATE" envDefault:"standard"`
	NudgeStep         float64            `env:"BANKER_NUDGE_STEP" envDefault:"0.1"`
	CompetingCacheTTL time.Duration      `env:"BANKER_COMPETING_CACHE_TTL" envDefault:"10m"`
	SeedMockData      bool               `env:"BANKER_SEED_MOCK_DATA" envDefault:"true"`
}

type Redis struct {
	Address      string `env:"REDIS_ADDRESS"`
	Username     string `env:"REDIS_USERNAME"`
	Password     string `env:"REDIS_PASSWORD" json:"-"`
	DB           int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize     int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int    `env:"REDIS_MIN_IDLE_CONNS" envDefault:"1"`
	MaxIdleConns int    `env:"REDIS_MAX_IDLE_CONNS" envDefault:"5"`

	// SnapshotTTL истечение снимка сессии банкира, 0 хранит без срока.
	SnapshotTTL time.Duration `env:"REDIS_SNAPSHOT_TTL" envDefault:"0s"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	if err := config.validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c Config) validate() error {
	if _, err := c.Banker.Weekday(); err != nil {
		return err
	}

	if _, err := c.Banker.Location(); err != nil {
		return err
	}

	if _, err := value.ParseLockOverride(string(c.Banker.LockOverride)); err != nil {
		return fmt.Errorf("BANKER_LOCK_OVERRIDE: %w", err)
	}

	if c.Banker.LockHour < 0 || c.Banker.LockHour > 23 {
		return fmt.Errorf("BANKER_LOCK_HOUR: %d out of range [0, 23]", c.Banker.LockHour)
	}

	if c.Banker.NudgeStep <= 0 {
		return fmt.Errorf("BANKER_NUDGE_STEP: must be positive, got %v", c.Banker.NudgeStep)
	}

	return nil
}

func (b Banker) Weekday() (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(b.LockWeekday))

	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return d, nil
		}
	}

	return 0, fmt.Errorf("BANKER_LOCK_WEEKDAY: unknown weekday %q", b.LockWeekday)
}

func (b Banker) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.LockTimezone)
	if err != nil {
		return nil, fmt.Errorf("BANKER_LOCK_TIMEZONE: %w", err)
	}

	return loc, nil
}
