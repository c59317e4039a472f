package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Server struct {
		// Port the HTTP API listens on
		Port string `env:"PORT" envDefault:"5250"`

		// Origins allowed by the CORS middleware
		AllowedOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

		LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	}

	Data struct {
		// Enriched postal-code reference table
		ReferencePath string `env:"REFERENCE_PATH" envDefault:"data/additional_data.csv"`

		// Persisted scaler and regression artifacts
		ScalerPath string `env:"SCALER_PATH" envDefault:"predict/scaler.json"`
		ModelPath  string `env:"MODEL_PATH" envDefault:"predict/model.json"`

		// SQLite database holding the prediction log and training runs
		DatabasePath string `env:"DATABASE_PATH" envDefault:"database/estimates.db"`

		// Minutes between reference table reloads, 0 disables the scheduler
		ReloadInterval int `env:"REFERENCE_RELOAD_MINUTES" envDefault:"0"`
	}

	Validation struct {
		MinPostalCode int `env:"MIN_POSTAL_CODE" envDefault:"1000"`
		MaxPostalCode int `env:"MAX_POSTAL_CODE" envDefault:"9999"`

		// Smallest living area and plot surface accepted, in square meters
		MinSurface float64 `env:"MIN_SURFACE" envDefault:"5"`
	}

	// BatchProcessing configuration for the prediction log
	BatchProcessing struct {
		// Number of prediction batches buffered before pushes are rejected
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"100"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}
}

// Limits returns the validation bounds applied to form input
func (c *Config) Limits() Limits {
	return Limits{
		MinPostalCode: c.Validation.MinPostalCode,
		MaxPostalCode: c.Validation.MaxPostalCode,
		MinSurface:    c.Validation.MinSurface,
	}
}

// Limits bounds the numeric form fields
type Limits struct {
	MinPostalCode int
	MaxPostalCode int
	MinSurface    float64
}

// DefaultLimits matches the bounds enforced by the estimation form
func DefaultLimits() Limits {
	return Limits{MinPostalCode: 1000, MaxPostalCode: 9999, MinSurface: 5}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.Validation.MinPostalCode > cfg.Validation.MaxPostalCode {
		return nil, fmt.Errorf("invalid postal code range %d-%d", cfg.Validation.MinPostalCode, cfg.Validation.MaxPostalCode)
	}
	if cfg.BatchProcessing.QueueSize <= 0 {
		return nil, fmt.Errorf("batch queue size must be positive, got %d", cfg.BatchProcessing.QueueSize)
	}
	return cfg, nil
}
