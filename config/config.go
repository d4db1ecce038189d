package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rustyeddy/ledger/ledger"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the complete ledger configuration
type Config struct {
	Ledger  LedgerConfig  `json:"ledger" yaml:"ledger"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// LedgerConfig holds the accounting parameters of new portfolios and trades
type LedgerConfig struct {
	DefaultInitialBalance decimal.Decimal `json:"default_initial_balance" yaml:"default_initial_balance"`
	Fee                   FeeConfig       `json:"fee" yaml:"fee"`
}

// FeeConfig selects the fee strategy.
//
//	none:     no fee
//	percent:  quantity × price × rate, or the per-trade rate when rate is zero
//	per_unit: quantity × per_unit
type FeeConfig struct {
	Model   string          `json:"model" yaml:"model"`
	Rate    decimal.Decimal `json:"rate" yaml:"rate"`
	PerUnit decimal.Decimal `json:"per_unit" yaml:"per_unit"`
}

type StoreConfig struct {
	Type   string `json:"type" yaml:"type"` // "memory" or "sqlite"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type             string `json:"type" yaml:"type"` // "none" or "csv"
	TransactionsFile string `json:"transactions_file,omitempty" yaml:"transactions_file,omitempty"`
	ValuationsFile   string `json:"valuations_file,omitempty" yaml:"valuations_file,omitempty"`
	// OrgFile, when set, receives an Org-mode diary alongside any CSV journal.
	OrgFile string `json:"org_file,omitempty" yaml:"org_file,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file, YAML for .yaml/.yml and JSON
// otherwise
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Ledger.DefaultInitialBalance.IsNegative() {
		return fmt.Errorf("ledger.default_initial_balance must not be negative")
	}
	switch c.Ledger.Fee.Model {
	case "", "none":
	case "percent":
		if c.Ledger.Fee.Rate.IsNegative() {
			return fmt.Errorf("ledger.fee.rate must not be negative")
		}
	case "per_unit":
		if c.Ledger.Fee.PerUnit.IsNegative() {
			return fmt.Errorf("ledger.fee.per_unit must not be negative")
		}
	default:
		return fmt.Errorf("ledger.fee.model must be 'none', 'percent' or 'per_unit'")
	}
	if c.Store.Type != "memory" && c.Store.Type != "sqlite" {
		return fmt.Errorf("store.type must be 'memory' or 'sqlite'")
	}
	if c.Store.Type == "sqlite" && c.Store.DBPath == "" {
		return fmt.Errorf("store.db_path required for SQLite type")
	}
	if c.Journal.Type != "none" && c.Journal.Type != "csv" {
		return fmt.Errorf("journal.type must be 'none' or 'csv'")
	}
	if c.Journal.Type == "csv" && (c.Journal.TransactionsFile == "" || c.Journal.ValuationsFile == "") {
		return fmt.Errorf("journal transactions_file and valuations_file required for CSV type")
	}
	return nil
}

// FeeStrategy returns the strategy described by the fee section. A non-zero
// percent rate overrides the per-trade rate carried by the request.
func (c *Config) FeeStrategy() ledger.FeeStrategy {
	f := c.Ledger.Fee
	switch f.Model {
	case "percent":
		if f.Rate.IsZero() {
			return ledger.PercentFee{}
		}
		return ledger.FeeFunc(func(req ledger.TradeRequest) decimal.Decimal {
			return req.Quantity.Mul(req.Price).Mul(f.Rate)
		})
	case "per_unit":
		return ledger.PerUnitFee{Amount: f.PerUnit}
	default:
		return ledger.NoFee{}
	}
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			DefaultInitialBalance: ledger.DefaultInitialBalance,
			Fee:                   FeeConfig{Model: "percent"},
		},
		Store: StoreConfig{
			Type:   "sqlite",
			DBPath: "./ledger.db",
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
