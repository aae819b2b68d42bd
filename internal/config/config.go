package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cashflow/internal/core"
	"cashflow/internal/currency"
	"cashflow/internal/obligation"
)

// MaxHorizonLimit caps MAX_HORIZON_MONTHS.
const MaxHorizonLimit = 1200

type Config struct {
	// HTTP Server
	Port string

	// Data supply
	DataBackend  string
	DataDir      string
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// RefreshInterval schedules periodic refresh messages; zero disables.
	RefreshInterval time.Duration

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Projection
	BaseCurrency           string
	ExchangeRates          string
	DefaultCashAdvanceRate string
	AnchorMonth            string
	HorizonMonths          int
	MaxHorizonMonths       int
	DatasetCacheTTL        time.Duration

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		DataDir:      getEnv("DATA_DIR", "./data/fixtures"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/cashflow.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "cashflow"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "projection_refresh"),

		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 0),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Projection"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		BaseCurrency:           getEnv("BASE_CURRENCY", string(core.CNY)),
		ExchangeRates:          getEnv("EXCHANGE_RATES", "HKD=0.92"),
		DefaultCashAdvanceRate: getEnv("DEFAULT_CASH_ADVANCE_RATE", obligation.DefaultCashAdvanceRate.String()),
		AnchorMonth:            getEnv("ANCHOR_MONTH", ""),
		HorizonMonths:          getEnvInt("HORIZON_MONTHS", 24),
		MaxHorizonMonths:       getEnvInt("MAX_HORIZON_MONTHS", 120),
		DatasetCacheTTL:        getEnvDuration("DATASET_CACHE_TTL", 5*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "memory" && c.DataDir == "" {
		errors = append(errors, "data directory cannot be empty when using memory backend")
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}
	if c.RefreshInterval < 0 {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must not be negative", c.RefreshInterval))
	} else if c.RefreshInterval > 0 && c.RefreshInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at least 1 minute", c.RefreshInterval))
	}

	// Validate Google Sheets export if a spreadsheet is configured
	if c.GoogleSpreadsheetID != "" {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is provided")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasFile && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets export")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	// Validate projection settings
	if _, err := core.ParseCurrency(c.BaseCurrency); err != nil {
		errors = append(errors, fmt.Sprintf("invalid base currency '%s'", c.BaseCurrency))
	}
	if _, err := currency.ParseRates(c.ExchangeRates); err != nil {
		errors = append(errors, fmt.Sprintf("invalid exchange rates '%s': %v", c.ExchangeRates, err))
	}
	if r, err := decimal.NewFromString(c.DefaultCashAdvanceRate); err != nil || r.IsNegative() {
		errors = append(errors, fmt.Sprintf("invalid default cash advance rate '%s': must be a non-negative decimal", c.DefaultCashAdvanceRate))
	}
	if c.AnchorMonth != "" {
		if _, err := core.ParseMonth(c.AnchorMonth); err != nil {
			errors = append(errors, fmt.Sprintf("invalid anchor month '%s': must be YYYY-MM", c.AnchorMonth))
		}
	}
	if c.MaxHorizonMonths < 1 || c.MaxHorizonMonths > MaxHorizonLimit {
		errors = append(errors, fmt.Sprintf("invalid max horizon %d: must be between 1 and %d", c.MaxHorizonMonths, MaxHorizonLimit))
	}
	if c.HorizonMonths < 0 || c.HorizonMonths > c.MaxHorizonMonths {
		errors = append(errors, fmt.Sprintf("invalid horizon %d: must be between 0 and %d", c.HorizonMonths, c.MaxHorizonMonths))
	}
	if c.DatasetCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid dataset cache TTL %v: must not be negative", c.DatasetCacheTTL))
	} else if c.DatasetCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid dataset cache TTL %v: must be at most 24 hours", c.DatasetCacheTTL))
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Converter builds the currency converter described by BaseCurrency and
// ExchangeRates.
func (c *Config) Converter() (*currency.Converter, error) {
	base, err := core.ParseCurrency(c.BaseCurrency)
	if err != nil {
		return nil, fmt.Errorf("base currency: %w", err)
	}
	rates, err := currency.ParseRates(c.ExchangeRates)
	if err != nil {
		return nil, err
	}
	return currency.NewConverter(base, rates)
}

// ObligationOptions returns the obligation calculator settings.
func (c *Config) ObligationOptions() (obligation.Options, error) {
	r, err := decimal.NewFromString(c.DefaultCashAdvanceRate)
	if err != nil {
		return obligation.Options{}, fmt.Errorf("default cash advance rate: %w", err)
	}
	return obligation.Options{DefaultCashAdvanceRate: r}, nil
}

// Anchor returns ANCHOR_MONTH, or the month containing now when unset.
func (c *Config) Anchor(now time.Time) (core.Month, error) {
	if c.AnchorMonth == "" {
		return core.MonthOf(now), nil
	}
	return core.ParseMonth(c.AnchorMonth)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
