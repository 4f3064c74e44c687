// Package config loads the configuration of the fol command.
//
// Values come, from lowest to highest precedence, from Default, an optional
// TOML file, an optional .env file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/etnz/folio"
	"github.com/etnz/folio/ledger"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// DefaultFile is the configuration file read when none is given.
const DefaultFile = "folio.toml"

// Market data providers.
const (
	Yahoo   = "yahoo"
	EODHD   = "eodhd"
	Offline = "offline"
)

// Config holds all configuration for folio
type Config struct {
	Currency    string `toml:"currency" env:"FOLIO_CURRENCY"`
	Provider    string `toml:"provider" env:"FOLIO_PROVIDER"` // yahoo, eodhd or offline
	LogLevel    string `toml:"log_level" env:"FOLIO_LOG_LEVEL"`
	Concurrency int    `toml:"concurrency" env:"FOLIO_CONCURRENCY"`
	Timeout     string `toml:"timeout" env:"FOLIO_TIMEOUT"` // per market data call

	Ledger  LedgerConfig      `toml:"ledger"`
	Tickers map[string]string `toml:"tickers"` // product name to ticker
	EODHD   EODHDConfig       `toml:"eodhd"`
	Yahoo   YahooConfig       `toml:"yahoo"`
	Offline OfflineConfig     `toml:"offline"`
	Assist  AssistConfig      `toml:"assist"`
}

// LedgerConfig holds the ledger export format
type LedgerConfig struct {
	DecimalComma bool              `toml:"decimal_comma" env:"FOLIO_DECIMAL_COMMA"`
	Columns      map[string]string `toml:"columns"` // localized to canonical column name
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	APIKey    string `toml:"api_key" env:"EODHD_API_KEY"`
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Cache     bool   `toml:"cache"` // cache responses on disk for the day
}

// YahooConfig holds Yahoo Finance API configuration
type YahooConfig struct {
	BaseURL string `toml:"base_url"`
	Retries int    `toml:"retries"`
}

// OfflineConfig holds the offline provider configuration
type OfflineConfig struct {
	MarketFile string `toml:"market_file" env:"FOLIO_MARKET_FILE"`
}

// AssistConfig holds the Gemini assistant configuration
type AssistConfig struct {
	Model string `toml:"model" env:"FOLIO_ASSIST_MODEL"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Currency:    "EUR",
		Provider:    Yahoo,
		LogLevel:    "info",
		Concurrency: folio.DefaultConcurrency,
		Timeout:     folio.DefaultTimeout.String(),
		Ledger: LedgerConfig{
			Columns: maps.Clone(ledger.DefaultColumns),
		},
		Tickers: map[string]string{
			"ASML HOLDING":     "ASML.AS",
			"VANGUARD S&P500":  "VUSA.L",
			"VANGUARD FTSE AW": "VWRL.AS",
			"WISDOMTREE ARTIFICIAL INTELLIGENCE UCITS ETF":     "WTAI.MI",
			"WISDOMTREE ARTIFICIAL INTELLIGENCE UCITS ETF USD": "WTAI.MI",
		},
		EODHD: EODHDConfig{
			BaseURL:   "https://eodhd.com/api",
			RateLimit: 10,
		},
		Yahoo: YahooConfig{
			BaseURL: "https://query1.finance.yahoo.com",
			Retries: 3,
		},
		Offline: OfflineConfig{
			MarketFile: "market.json",
		},
		Assist: AssistConfig{
			Model: "gemini-2.5-pro",
		},
	}
}

// Load loads the configuration file at path, then the .env file of the
// current directory and the environment.
//
// An empty path reads DefaultFile if it exists.
func Load(path string) (*Config, error) {
	return load(path, ".env")
}

func load(path, dotenv string) (*Config, error) {
	config := Default()

	optional := path == ""
	if optional {
		path = DefaultFile
	}
	if err := config.readFile(path); err != nil {
		if !optional || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// .env does not override the environment
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", dotenv, err)
	}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// readFile merges the TOML file at path into config.
//
// [ledger.columns] replaces the default column table, [tickers] entries are
// added to the default ticker table, an empty ticker unmaps a product.
func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	defaults := Default()
	c.Ledger.Columns = nil
	c.Tickers = nil

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if c.Ledger.Columns == nil {
		c.Ledger.Columns = defaults.Ledger.Columns
	}
	tickers := defaults.Tickers
	maps.Copy(tickers, c.Tickers)
	c.Tickers = tickers
	return nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	var errs error
	if err := folio.ValidateCurrency(c.Currency); err != nil {
		errs = errors.Join(errs, err)
	}
	switch c.Provider {
	case Yahoo, EODHD, Offline:
	default:
		errs = errors.Join(errs, fmt.Errorf("unknown provider %q, want %q, %q or %q", c.Provider, Yahoo, EODHD, Offline))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = errors.Join(errs, fmt.Errorf("invalid log level: %w", err))
	}
	if c.Concurrency < 1 {
		errs = errors.Join(errs, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		errs = errors.Join(errs, fmt.Errorf("invalid timeout %q", c.Timeout))
	}
	if errs != nil {
		return fmt.Errorf("invalid configuration: %w", errs)
	}
	return nil
}

// GetTimeout parses and returns the timeout duration
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return folio.DefaultTimeout
	}
	return d
}

// GetLogLevel parses and returns the log level
func (c *Config) GetLogLevel() zerolog.Level {
	l, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}

// TickerTable returns the ticker resolver of the configuration.
func (c *Config) TickerTable() folio.TickerTable { return folio.NewTickerTable(c.Tickers) }

// Normalizer returns the ledger normalizer of the configuration.
func (c *Config) Normalizer(logger zerolog.Logger) ledger.Normalizer {
	return ledger.Normalizer{
		Columns:      c.Ledger.Columns,
		DecimalComma: c.Ledger.DecimalComma,
		Logger:       logger,
	}
}
