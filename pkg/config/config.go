package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"FinNotify/pkg/logger"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Run modes accepted by the notifier binary.
const (
	ModeStocks = "stocks"
	ModeCrypto = "crypto"
	ModeAll    = "all"
	ModeServe  = "serve"
)

// Sink names accepted in notify.sinks.
const (
	SinkDesktop  = "desktop"
	SinkTelegram = "telegram"
	SinkKafka    = "kafka"
	SinkLog      = "log"
)

type Config struct {
	Environment string        `yaml:"environment" default:"local" validate:"required"`
	Log         logger.Config `yaml:"log"`

	HTTP struct {
		Timeout      time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
		Retries      int           `yaml:"retries" default:"2" validate:"gte=0,lte=5"`
		RetryBackoff time.Duration `yaml:"retry_backoff" default:"200ms"`
	} `yaml:"http"`

	AlphaVantage struct {
		BaseURL           string   `yaml:"base_url" default:"https://www.alphavantage.co" validate:"required,url"`
		APIKey            string   `yaml:"api_key"`
		Interval          string   `yaml:"interval" default:"daily" validate:"oneof=1min 5min 15min 30min 60min daily weekly monthly"`
		SeriesType        string   `yaml:"series_type" default:"open" validate:"oneof=open high low close"`
		SMAPeriods        []string `yaml:"sma_periods" default:"[\"20\",\"50\",\"200\"]" validate:"min=1,dive,numeric"`
		RSIPeriod         string   `yaml:"rsi_period" default:"14" validate:"numeric"`
		RequestsPerMinute float64  `yaml:"requests_per_minute" default:"5" validate:"gte=0"`
	} `yaml:"alphavantage"`

	Finnhub struct {
		BaseURL           string  `yaml:"base_url" default:"https://finnhub.io/api/v1" validate:"required,url"`
		APIKey            string  `yaml:"api_key"`
		Resolution        string  `yaml:"resolution" default:"D" validate:"oneof=1 5 15 30 60 D W M"`
		RequestsPerMinute float64 `yaml:"requests_per_minute" default:"60" validate:"gte=0"`
	} `yaml:"finnhub"`

	CoinGecko struct {
		BaseURL           string  `yaml:"base_url" default:"https://api.coingecko.com/api/v3" validate:"required,url"`
		Currency          string  `yaml:"currency" default:"cad" validate:"required,lowercase"`
		RequestsPerMinute float64 `yaml:"requests_per_minute" default:"30" validate:"gte=0"`
	} `yaml:"coingecko"`

	Watch struct {
		Stocks []string `yaml:"stocks" validate:"dive,required"`
		Coins  []string `yaml:"coins" validate:"dive,required"`
	} `yaml:"watch"`

	Rules struct {
		OverboughtLevel    float64 `yaml:"overbought_level" default:"70" validate:"gt=0,lt=100"`
		SMAMargin          float64 `yaml:"sma_margin" default:"1" validate:"gt=0"`
		ResistanceMargin   float64 `yaml:"resistance_margin" default:"1" validate:"gt=0"`
		SupportMargin      float64 `yaml:"support_margin" default:"1.02" validate:"gte=1"`
		AggregateThreshold float64 `yaml:"aggregate_threshold" default:"0.8" validate:"gte=0.5,lt=1"`
		StrictResistance   bool    `yaml:"strict_resistance"`
	} `yaml:"rules"`

	Notify struct {
		Delay   time.Duration     `yaml:"delay" default:"8s" validate:"gte=0"`
		AppName string            `yaml:"app_name" default:"FinNotify"`
		Sinks   []string          `yaml:"sinks" default:"[\"desktop\"]" validate:"min=1,dive,oneof=desktop telegram kafka log"`
		Icons   map[string]string `yaml:"icons"`

		Telegram struct {
			BaseURL  string `yaml:"base_url" default:"https://api.telegram.org" validate:"url"`
			BotToken string `yaml:"bot_token"`
			ChatID   int64  `yaml:"chat_id"`
		} `yaml:"telegram"`

		Kafka struct {
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic" default:"finnotify.signals"`
			Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd none"`
			RequiredAcks int           `yaml:"required_acks" default:"-1" validate:"oneof=-1 0 1"`
			MaxAttempts  int           `yaml:"max_attempts" default:"3" validate:"gte=1"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"kafka"`
	} `yaml:"notify"`

	Cache struct {
		Backend string        `yaml:"backend" default:"memory" validate:"oneof=none memory redis layered"`
		TTL     time.Duration `yaml:"ttl" default:"5m" validate:"gte=0"`
		MaxSize int           `yaml:"max_size" default:"1000" validate:"gt=0"`
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"finnotify"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Metrics struct {
		Enabled  bool   `yaml:"enabled" default:"true"`
		Path     string `yaml:"path" default:"/metrics"`
		Textfile string `yaml:"textfile"` // node_exporter textfile collector target for one-shot runs
	} `yaml:"metrics"`

	Server struct {
		Host            string        `yaml:"host" default:"127.0.0.1"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
}

// SetDefaults fills the watch-lists and icon table when the file leaves them empty.
// Called by creasty/defaults after tag defaults are applied.
func (c *Config) SetDefaults() {
	if defaults.CanUpdate(c.Watch.Stocks) {
		c.Watch.Stocks = []string{"AAPL", "MSFT", "FB", "KL", "TECK"}
	}
	if defaults.CanUpdate(c.Watch.Coins) {
		c.Watch.Coins = []string{"ethereum", "litecoin", "bitcoin"}
	}
	if defaults.CanUpdate(c.Notify.Icons) {
		c.Notify.Icons = map[string]string{
			"AAPL":  "https://img.icons8.com/dusk/2x/mac-os.png",
			"MSFT":  "https://img.icons8.com/dusk/2x/windows-logo.png",
			"FB":    "https://img.icons8.com/nolan/2x/facebook-new.png",
			"TSLA":  "https://img.icons8.com/color/2x/tesla-logo.png",
			"KL":    "https://img.icons8.com/dusk/2x/gold-bars.png",
			"CTC.A": "https://img.icons8.com/dusk/2x/wheel.png",
			"TECK":  "https://img.icons8.com/nolan/2x/mine-cart.png",
		}
	}
}

var validate = validator.New()

// Load reads a YAML configuration file on top of the built-in defaults.
// A missing file is not an error: defaults and environment still apply.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// Variables from a .env file in the working directory are picked up first.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := read(path)
	if err != nil {
		return nil, err
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}

	if path == "" {
		return &c, nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		c.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Notify.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Notify.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("STOCKS"); v != "" {
		c.Watch.Stocks = splitList(v)
	}
	if v := os.Getenv("COINS"); v != "" {
		c.Watch.Coins = splitList(v)
	}
	if v := os.Getenv("NOTIFY_SINKS"); v != "" {
		c.Notify.Sinks = splitList(v)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Notify.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.HasSink(SinkTelegram) && (c.Notify.Telegram.BotToken == "" || c.Notify.Telegram.ChatID == 0) {
		return fmt.Errorf("telegram sink requires notify.telegram.bot_token and chat_id")
	}
	if c.HasSink(SinkKafka) && len(c.Notify.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka sink requires notify.kafka.brokers")
	}
	return nil
}

// ValidateMode checks the credentials a run mode needs.
func (c *Config) ValidateMode(mode string) error {
	switch mode {
	case ModeStocks, ModeAll, ModeServe:
		if c.AlphaVantage.APIKey == "" {
			return fmt.Errorf("alphavantage.api_key is required for mode %q", mode)
		}
		if c.Finnhub.APIKey == "" {
			return fmt.Errorf("finnhub.api_key is required for mode %q", mode)
		}
	case ModeCrypto:
	default:
		return fmt.Errorf("unknown mode %q, want one of stocks, crypto, all, serve", mode)
	}
	return nil
}

// HasSink reports whether the named sink is enabled.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Notify.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
