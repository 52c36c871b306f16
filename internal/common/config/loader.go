// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DATABASE_PROJECTS_PASSWORD
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay (config.production.yaml etc.)
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or any parent that holds
// go.mod, so the binary and the tests both pick it up.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig backfills secrets from well-known environment variables
// when the yaml left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Projects.User == "" {
		if val := os.Getenv("PROJECTS_DB_USER"); val != "" {
			cfg.Database.Projects.User = val
		}
	}
	if cfg.Database.Projects.Password == "" {
		if val := os.Getenv("PROJECTS_DB_PASSWORD"); val != "" {
			cfg.Database.Projects.Password = val
		}
	}
	if cfg.Database.Reporting.User == "" {
		if val := os.Getenv("REPORTING_DB_USER"); val != "" {
			cfg.Database.Reporting.User = val
		}
	}
	if cfg.Database.Reporting.Password == "" {
		if val := os.Getenv("REPORTING_DB_PASSWORD"); val != "" {
			cfg.Database.Reporting.Password = val
		}
	}
	if cfg.Auth.Keycloak.Username == "" {
		if val := os.Getenv("KEYCLOAK_USERNAME"); val != "" {
			cfg.Auth.Keycloak.Username = val
		}
	}
	if cfg.Auth.Keycloak.Password == "" {
		if val := os.Getenv("KEYCLOAK_PASSWORD"); val != "" {
			cfg.Auth.Keycloak.Password = val
		}
	}
	if cfg.APIs.Projects.Token == "" {
		if val := os.Getenv("PROJECTS_API_TOKEN"); val != "" {
			cfg.APIs.Projects.Token = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// Consumer defaults
	if cfg.Consumer.WaitTimeSeconds == 0 {
		cfg.Consumer.WaitTimeSeconds = 20
	}
	if cfg.Consumer.MaxMessages == 0 {
		cfg.Consumer.MaxMessages = 1
	}
	if cfg.Consumer.VisibilityTimeout == 0 {
		cfg.Consumer.VisibilityTimeout = 120
	}
	if cfg.Consumer.MetricsAddr == "" {
		cfg.Consumer.MetricsAddr = ":9090"
	}

	// Database defaults
	for _, pg := range []*PostgresConfig{&cfg.Database.Projects, &cfg.Database.Reporting} {
		if pg.Port == 0 {
			pg.Port = 5432
		}
		if pg.MaxConnections == 0 {
			pg.MaxConnections = 5
		}
		if pg.MaxIdle == 0 {
			pg.MaxIdle = 2
		}
		if pg.SSLMode == "" {
			pg.SSLMode = "disable"
		}
	}

	// Assignment defaults
	if cfg.Assignment.ConfidenceThreshold == 0 {
		cfg.Assignment.ConfidenceThreshold = 0.7
	}
	if len(cfg.Assignment.UnassignedStatuses) == 0 {
		cfg.Assignment.UnassignedStatuses = []string{"NEW_PROJECT", "AWAITING_VENDOR_ASSIGNMENT"}
	}
	if cfg.Assignment.ChangeReason == "" {
		cfg.Assignment.ChangeReason = "Auto ML Process"
	}

	// API timeout defaults
	if cfg.APIs.Projects.Timeout == 0 {
		cfg.APIs.Projects.Timeout = 30000
	}
	if cfg.APIs.Vendors.Timeout == 0 {
		cfg.APIs.Vendors.Timeout = 30000
	}
	if cfg.APIs.Signals.Timeout == 0 {
		cfg.APIs.Signals.Timeout = 10000
	}

	// Audit / dedup defaults
	if cfg.Audit.Index == "" {
		cfg.Audit.Index = "vendor-autoassign-runs"
	}
	if cfg.Dedup.TTLHours == 0 {
		cfg.Dedup.TTLHours = 72
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Consumer.QueueURL == "" {
		return fmt.Errorf("consumer.queue_url is required")
	}
	if cfg.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}

	if cfg.Database.Projects.Host == "" {
		return fmt.Errorf("database.projects.host is required")
	}
	if cfg.Database.Projects.Database == "" {
		return fmt.Errorf("database.projects.database is required")
	}
	if cfg.Database.Reporting.Host == "" {
		return fmt.Errorf("database.reporting.host is required")
	}
	if cfg.Database.Reporting.Database == "" {
		return fmt.Errorf("database.reporting.database is required")
	}

	if cfg.APIs.Projects.BaseURL == "" {
		return fmt.Errorf("apis.projects.base_url is required")
	}
	if cfg.APIs.Vendors.RankingURL == "" {
		return fmt.Errorf("apis.vendors.ranking_url is required")
	}

	if cfg.Assignment.ConfidenceThreshold < 0 || cfg.Assignment.ConfidenceThreshold > 1 {
		return fmt.Errorf("assignment.confidence_threshold must be within [0,1]")
	}

	if cfg.Audit.Enabled && len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses is required when audit is enabled")
	}
	if cfg.Dedup.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when dedup is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
