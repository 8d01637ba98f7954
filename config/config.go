package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"propertycrm/server/internal/matching"
)

type Config struct {
	Server struct {
		Port               string   `env:"SERVER_PORT" envDefault:"5250"`
		GinMode            string   `env:"GIN_MODE" envDefault:"release"`
		CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	Database struct {
		Path string `env:"DATABASE_PATH" envDefault:"database/crm.db"`
	}

	Logging struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
	}

	// BatchProcessing configures the regeneration queue and its workers
	BatchProcessing struct {
		// Maximum number of customer ids per queued batch
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Number of concurrent workers, also the RegenerateAll pool size
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for a failed regeneration
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`

		// Regenerations started per second during a full run
		RateLimit float64 `env:"BATCH_RATE_LIMIT" envDefault:"20"`
		RateBurst int     `env:"BATCH_RATE_BURST" envDefault:"5"`
	}

	Scheduler struct {
		Enabled bool `env:"SCHEDULER_ENABLED" envDefault:"true"`
		// Local hour (0-23) of the nightly full recompute
		RecomputeHour int `env:"RECOMPUTE_HOUR" envDefault:"2"`
	}

	Scoring struct {
		// Optional YAML file overriding matching.DefaultWeights
		WeightsFile string `env:"SCORING_WEIGHTS_FILE"`
	}
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Scheduler.RecomputeHour < 0 || c.Scheduler.RecomputeHour > 23 {
		return fmt.Errorf("RECOMPUTE_HOUR must be within 0-23, got %d", c.Scheduler.RecomputeHour)
	}
	if c.BatchProcessing.ProcessorCount < 1 {
		return fmt.Errorf("BATCH_PROCESSOR_COUNT must be at least 1, got %d", c.BatchProcessing.ProcessorCount)
	}
	if c.BatchProcessing.MaxBatchSize < 1 {
		return fmt.Errorf("BATCH_MAX_SIZE must be at least 1, got %d", c.BatchProcessing.MaxBatchSize)
	}
	if c.BatchProcessing.MaxRetries < 0 {
		return fmt.Errorf("BATCH_MAX_RETRIES must not be negative, got %d", c.BatchProcessing.MaxRetries)
	}
	return nil
}

// Weights returns the matching weights, overlaid with the configured YAML
// file when one is set.
func (c *Config) Weights() (matching.Weights, error) {
	if c.Scoring.WeightsFile == "" {
		return matching.DefaultWeights(), nil
	}
	return matching.LoadWeightsFromFile(c.Scoring.WeightsFile)
}
