// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml over it
// and lets environment variables override any key (server.address is
// SERVER_ADDRESS). A missing base file is not an error.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName("config." + env)
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every overridable key so AutomaticEnv can see it
// even when no config file mentions it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "motor-picker")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 10000)
	v.SetDefault("server.write_timeout", 30000)
	v.SetDefault("server.shutdown_timeout", 15000)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.requests_per_second", 20.0)
	v.SetDefault("server.rate_limit.burst", 40)

	v.SetDefault("matcher.default_max_results", 15)
	v.SetDefault("matcher.max_results_cap", 100)

	v.SetDefault("catalog.source", CatalogSourceEmbedded)
	v.SetDefault("catalog.xlsx_path", "")
	v.SetDefault("catalog.cache_enabled", false)
	v.SetDefault("catalog.cache_ttl", 3600)

	v.SetDefault("database.postgres.enabled", false)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "motors")
	v.SetDefault("database.postgres.user", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.redis.enabled", false)
	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("database.elasticsearch.enabled", false)
	v.SetDefault("database.elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("database.elasticsearch.index", "motors")

	v.SetDefault("camunda.enabled", false)
	v.SetDefault("camunda.broker_address", "localhost:26500")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// loadEnvFile loads the first .env found near the working directory or the
// module root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
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

// Find project root by looking for go.mod
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
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.Matcher.DefaultMaxResults <= 0 {
		cfg.Matcher.DefaultMaxResults = 15
	}
	if cfg.Matcher.MaxResultsCap <= 0 {
		cfg.Matcher.MaxResultsCap = 100
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if cfg.Server.RateLimit.Enabled && (cfg.Server.RateLimit.RequestsPerSecond <= 0 || cfg.Server.RateLimit.Burst <= 0) {
		return fmt.Errorf("server.rate_limit requires positive requests_per_second and burst")
	}
	if cfg.Matcher.DefaultMaxResults > cfg.Matcher.MaxResultsCap {
		return fmt.Errorf("matcher.default_max_results (%d) exceeds matcher.max_results_cap (%d)",
			cfg.Matcher.DefaultMaxResults, cfg.Matcher.MaxResultsCap)
	}

	switch cfg.Catalog.Source {
	case CatalogSourceEmbedded:
	case CatalogSourcePostgres:
		if !cfg.Database.Postgres.Enabled {
			return fmt.Errorf("catalog.source=postgres requires database.postgres.enabled")
		}
	case CatalogSourceXLSX:
		if cfg.Catalog.XLSXPath == "" {
			return fmt.Errorf("catalog.source=xlsx requires catalog.xlsx_path")
		}
	default:
		return fmt.Errorf("catalog.source must be one of embedded, postgres, xlsx; got %q", cfg.Catalog.Source)
	}
	if cfg.Catalog.CacheEnabled && !cfg.Database.Redis.Enabled {
		return fmt.Errorf("catalog.cache_enabled requires database.redis.enabled")
	}

	if cfg.Database.Postgres.Enabled {
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	}
	if cfg.Database.Elasticsearch.Enabled && len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses is required")
	}
	if cfg.Database.Redis.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}
	return nil
}
