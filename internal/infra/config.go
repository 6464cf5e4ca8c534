package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"bcx_go/internal/domain"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWSURL      = "wss://ws.prod.blockchain.info/mercury-gateway/v1/ws"
	DefaultOrigin     = "https://exchange.blockchain.com"
	DefaultSecretFile = ".API_SECRET"
)

// Candle widths accepted by the prices channel, in seconds.
var validGranularities = map[int]bool{60: true, 300: true, 900: true, 3600: true, 21600: true, 86400: true}

// Config holds all application settings.
// After LoadConfig reads the file, sensitive values are overridden from the environment.
type Config struct {
	App struct {
		Name      string `yaml:"name"`
		Version   string `yaml:"version"`
		PprofAddr string `yaml:"pprof_addr"`
		DumpPath  string `yaml:"dump_path"`
	} `yaml:"app"`

	Exchange struct {
		WSURL          string `yaml:"ws_url"`
		Origin         string `yaml:"origin"`
		APISecretFile  string `yaml:"api_secret_file"`
		APISecret      string `yaml:"-"`
		BaseCurrency   string `yaml:"base_currency"`
		Granularity    int    `yaml:"granularity"`
		ReadTimeoutSec int    `yaml:"read_timeout_sec"`
	} `yaml:"exchange"`

	Trading struct {
		MaxOrders       int             `yaml:"max_orders"`
		Side            string          `yaml:"side"`
		OrderQty        decimal.Decimal `yaml:"order_qty"`
		Discount        decimal.Decimal `yaml:"discount"`
		PricePrecision  int32           `yaml:"price_precision"`
		OrdersPerSecond float64         `yaml:"orders_per_second"`
		InboxSize       int             `yaml:"inbox_size"`
		DryRun          bool            `yaml:"dry_run"`
	} `yaml:"trading"`

	Storage struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// DefaultConfig returns the settings used when a field is absent from the file.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "bcx_go"
	cfg.App.DumpPath = "panic_dump.json"
	cfg.Exchange.WSURL = DefaultWSURL
	cfg.Exchange.Origin = DefaultOrigin
	cfg.Exchange.APISecretFile = DefaultSecretFile
	cfg.Exchange.BaseCurrency = "GBP"
	cfg.Exchange.Granularity = 3600
	cfg.Exchange.ReadTimeoutSec = 60
	cfg.Trading.MaxOrders = 2
	cfg.Trading.Side = string(domain.SideBuy)
	cfg.Trading.OrderQty = decimal.RequireFromString("0.010")
	cfg.Trading.Discount = decimal.RequireFromString("0.995")
	cfg.Trading.PricePrecision = 2
	cfg.Trading.OrdersPerSecond = 5
	cfg.Trading.InboxSize = 1024
	cfg.Trading.DryRun = true
	cfg.Storage.Enabled = true
	cfg.Logging.Level = "info"
	cfg.Logging.Dir = "logs"
	return &cfg
}

// LoadConfig reads the YAML file at path on top of DefaultConfig, applies
// .env and environment overrides, resolves the API secret and validates.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// A missing .env is fine.
	_ = godotenv.Load()
	overrideWithEnv(cfg)

	if cfg.Exchange.APISecret == "" {
		secret, err := ReadSecret(cfg.Exchange.APISecretFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, &domain.ConfigError{Field: "exchange.api_secret_file", Err: err}
		}
		cfg.Exchange.APISecret = secret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ReadSecret returns the trimmed contents of a secret file.
func ReadSecret(path string) (string, error) {
	if path == "" {
		return "", os.ErrNotExist
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Exchange.WSURL, "ws://") && !strings.HasPrefix(c.Exchange.WSURL, "wss://") {
		return &domain.ConfigError{Field: "exchange.ws_url", Err: fmt.Errorf("not a websocket url: %q", c.Exchange.WSURL)}
	}
	if _, err := domain.PairForBase(c.Exchange.BaseCurrency); err != nil {
		return &domain.ConfigError{Field: "exchange.base_currency", Err: err}
	}
	if !validGranularities[c.Exchange.Granularity] {
		return &domain.ConfigError{Field: "exchange.granularity", Err: fmt.Errorf("unsupported value %d", c.Exchange.Granularity)}
	}
	if c.Exchange.ReadTimeoutSec <= 0 {
		return &domain.ConfigError{Field: "exchange.read_timeout_sec", Err: errors.New("must be positive")}
	}

	if c.Trading.MaxOrders < 0 {
		return &domain.ConfigError{Field: "trading.max_orders", Err: errors.New("must not be negative")}
	}
	if !domain.Side(c.Trading.Side).Valid() {
		return &domain.ConfigError{Field: "trading.side", Err: fmt.Errorf("unknown side %q", c.Trading.Side)}
	}
	if !c.Trading.OrderQty.IsPositive() {
		return &domain.ConfigError{Field: "trading.order_qty", Err: errors.New("must be positive")}
	}
	if !c.Trading.Discount.IsPositive() || c.Trading.Discount.GreaterThan(decimal.NewFromInt(1)) {
		return &domain.ConfigError{Field: "trading.discount", Err: errors.New("must be in (0, 1]")}
	}
	if c.Trading.PricePrecision < 0 || c.Trading.PricePrecision > 8 {
		return &domain.ConfigError{Field: "trading.price_precision", Err: errors.New("must be between 0 and 8")}
	}
	if c.Trading.OrdersPerSecond <= 0 {
		return &domain.ConfigError{Field: "trading.orders_per_second", Err: errors.New("must be positive")}
	}
	if c.Trading.InboxSize <= 0 {
		return &domain.ConfigError{Field: "trading.inbox_size", Err: errors.New("must be positive")}
	}

	// Live trading needs the trading channel, which needs auth.
	if !c.Trading.DryRun && c.Exchange.APISecret == "" {
		return &domain.ConfigError{Field: "exchange.api_secret_file", Err: domain.ErrMissingSecret}
	}

	return nil
}

// Pair resolves the configured instrument. Call after Validate.
func (c *Config) Pair() domain.Pair {
	pair, _ := domain.PairForBase(c.Exchange.BaseCurrency)
	return pair
}

// overrideWithEnv overrides config values from environment variables when present.
func overrideWithEnv(cfg *Config) {
	if secret := os.Getenv("BCX_API_SECRET"); secret != "" {
		cfg.Exchange.APISecret = secret
	}
	if base := os.Getenv("BCX_BASE_CURRENCY"); base != "" {
		cfg.Exchange.BaseCurrency = base
	}
	if dry := os.Getenv("BCX_DRY_RUN"); dry != "" {
		if v, err := strconv.ParseBool(dry); err == nil {
			cfg.Trading.DryRun = v
		}
	}
	if level := os.Getenv("BCX_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
