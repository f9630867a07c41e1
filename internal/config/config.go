package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AssetConfig describes one of the treasury's supported assets.
type AssetConfig struct {
	Address  string
	Symbol   string
	Decimals int32
}

// Config holds application configuration.
type Config struct {
	Port             int
	AdminAddress     string
	TreasuryAddress  string
	DatabaseURL      string   // empty = in-memory store
	KafkaBrokers     []string // empty = events dropped
	CompoundSchedule string   // cron spec; empty disables the scheduled trigger
	CompoundFrom     string   // asset address the scheduled compound debits
	BaseAsset        AssetConfig
	QuoteAsset       AssetConfig
	LogLevel         string
	DevMode          bool
}

// Load reads configuration from environment variables, with .env support.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnvAsInt("PORT", 8080),
		AdminAddress:     getEnv("ADMIN_ADDRESS", ""),
		TreasuryAddress:  getEnv("TREASURY_ADDRESS", "treasury"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		CompoundSchedule: getEnv("COMPOUND_SCHEDULE", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		BaseAsset: AssetConfig{
			Address:  getEnv("BASE_ASSET_ADDRESS", "usdc"),
			Symbol:   getEnv("BASE_ASSET_SYMBOL", "USDC"),
			Decimals: int32(getEnvAsInt("BASE_ASSET_DECIMALS", 6)),
		},
		QuoteAsset: AssetConfig{
			Address:  getEnv("QUOTE_ASSET_ADDRESS", "dai"),
			Symbol:   getEnv("QUOTE_ASSET_SYMBOL", "DAI"),
			Decimals: int32(getEnvAsInt("QUOTE_ASSET_DECIMALS", 18)),
		},
	}
	cfg.CompoundFrom = getEnv("COMPOUND_FROM_ASSET", cfg.BaseAsset.Address)

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.AdminAddress == "" {
		return fmt.Errorf("ADMIN_ADDRESS is required")
	}
	if c.BaseAsset.Address == c.QuoteAsset.Address {
		return fmt.Errorf("base and quote asset addresses must differ")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
