package commands

import (
	"os"
	"strconv"

	"github.com/tablehaus/csvlite/internal/cli/config"
)

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to
// environment variables. The fallback keeps commands usable when invoked
// outside the root command (e.g., in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	batchSize := config.DefaultBatchSize
	if v := os.Getenv("CSVLITE_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			batchSize = n
		}
	}

	return &config.Config{
		Table:         getEnvOrDefault("CSVLITE_TABLE", config.DefaultTable),
		Delimiter:     getEnvOrDefault("CSVLITE_DELIMITER", config.DefaultDelimiter),
		BatchSize:     batchSize,
		InferTypes:    os.Getenv("CSVLITE_INFER_TYPES") == "true",
		SkipMalformed: os.Getenv("CSVLITE_SKIP_MALFORMED") == "true",
		Verbose:       os.Getenv("CSVLITE_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
