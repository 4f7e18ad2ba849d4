package config

import (
	"subsidy/internal/logger"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	ServerPort  int

	DatabaseDbPath       string
	DatabaseCacheAddress string
	DatabaseCachePort    int

	// SLA windows for the bill-return lifecycle. Values are business
	// constants agreed with the subsidy administration, not tunables to
	// change casually.
	RequestExpirationDays        int // calendar days for the first expiration window
	ReviewExtensionBusinessDays  int // business days for a re-review window
	RevalidationResponseDays     int // calendar days for a second-round response
	ResponseBusinessDays         int // business days for a first-round response
	ApprovalThreshold            int // approved attachments required to reach NonPaid

	WorkerPoolSize int
}

func InitConfig() (Config, error) {
	log := logger.New("config").Function("InitConfig")

	viper.SetEnvPrefix("SUBSIDY")
	viper.AutomaticEnv()

	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DATABASE_DB_PATH", "data/subsidy.db")
	viper.SetDefault("DATABASE_CACHE_ADDRESS", "localhost")
	viper.SetDefault("DATABASE_CACHE_PORT", 6379)
	viper.SetDefault("REQUEST_EXPIRATION_DAYS", 15)
	viper.SetDefault("REVIEW_EXTENSION_BUSINESS_DAYS", 5)
	viper.SetDefault("REVALIDATION_RESPONSE_DAYS", 7)
	viper.SetDefault("RESPONSE_BUSINESS_DAYS", 10)
	viper.SetDefault("APPROVAL_THRESHOLD", 5)
	viper.SetDefault("WORKER_POOL_SIZE", 8)

	config := Config{
		Environment:                 viper.GetString("ENVIRONMENT"),
		ServerPort:                  viper.GetInt("SERVER_PORT"),
		DatabaseDbPath:              viper.GetString("DATABASE_DB_PATH"),
		DatabaseCacheAddress:        viper.GetString("DATABASE_CACHE_ADDRESS"),
		DatabaseCachePort:           viper.GetInt("DATABASE_CACHE_PORT"),
		RequestExpirationDays:       viper.GetInt("REQUEST_EXPIRATION_DAYS"),
		ReviewExtensionBusinessDays: viper.GetInt("REVIEW_EXTENSION_BUSINESS_DAYS"),
		RevalidationResponseDays:    viper.GetInt("REVALIDATION_RESPONSE_DAYS"),
		ResponseBusinessDays:        viper.GetInt("RESPONSE_BUSINESS_DAYS"),
		ApprovalThreshold:           viper.GetInt("APPROVAL_THRESHOLD"),
		WorkerPoolSize:              viper.GetInt("WORKER_POOL_SIZE"),
	}

	if config.DatabaseDbPath == "" {
		return Config{}, log.Error("database path is empty")
	}

	log.Info("Config initialized", "environment", config.Environment)

	return config, nil
}
