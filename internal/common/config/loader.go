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

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like IDENTITY_BASE_URL
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

	// Environment-specific overlay, e.g. config.production.yaml.
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
// go.mod, so binaries and tests started from nested directories behave alike.
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

// expandEnvVars resolves ${VAR} placeholders inside string config values.
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

// overrideEmptyConfig backfills secrets from plain environment variables when
// the yaml left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Partners.Identity.Username == "" {
		if val := os.Getenv("IDENTITY_USERNAME"); val != "" {
			cfg.Partners.Identity.Username = val
		}
	}
	if cfg.Partners.Identity.Password == "" {
		if val := os.Getenv("IDENTITY_PASSWORD"); val != "" {
			cfg.Partners.Identity.Password = val
		}
	}
	if cfg.Partners.Identity.AuthorizationCode == "" {
		if val := os.Getenv("IDENTITY_AUTHORIZATION_CODE"); val != "" {
			cfg.Partners.Identity.AuthorizationCode = val
		}
	}
	if cfg.Partners.Credit.APIKey == "" {
		if val := os.Getenv("CREDIT_API_KEY"); val != "" {
			cfg.Partners.Credit.APIKey = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path.
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

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "us-east-1"
	}

	// Table names default to the production store layout.
	t := &cfg.Tables
	if t.Loan == "" {
		t.Loan = "Loan"
	}
	if t.LoanClientIndex == "" {
		t.LoanClientIndex = "Client-index"
	}
	if t.Offers == "" {
		t.Offers = "lending-loan-offers"
	}
	if t.StatusCatalog == "" {
		t.StatusCatalog = "StatusPreaproved"
	}
	if t.Client == "" {
		t.Client = "Client"
	}
	if t.ClientMsisdnIndex == "" {
		t.ClientMsisdnIndex = "Msisdn-ClientID-index"
	}
	if t.ClientIDMTSIndex == "" {
		t.ClientIDMTSIndex = "ClientIDMTS-index"
	}
	if t.UpdatedAccounts == "" {
		t.UpdatedAccounts = "UpdatedCustomerAccounts"
	}
	if t.ClientSMS == "" {
		t.ClientSMS = "ClientSMS"
	}
	if t.SMSTemplates == "" {
		t.SMSTemplates = "SMSTemplates"
	}
	if t.Agents == "" {
		t.Agents = "TigoAgent"
	}
	if t.AgentCodeIndex == "" {
		t.AgentCodeIndex = "AgentCode-index"
	}
	if t.Movements == "" {
		t.Movements = "LoanOffersMovements"
	}
	if t.MovementsClientIdx == "" {
		t.MovementsClientIdx = "ClientId-index"
	}
	if t.RequestLog == "" {
		t.RequestLog = "LogRequestsToServices"
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Database.Redis.StatusTTLMinutes == 0 {
		cfg.Database.Redis.StatusTTLMinutes = 60
	}

	if cfg.Partners.Identity.Timeout == 0 {
		cfg.Partners.Identity.Timeout = 10000
	}
	if cfg.Partners.Credit.Timeout == 0 {
		cfg.Partners.Credit.Timeout = 10000
	}

	if cfg.Notifications.SMS.MaxRetries == 0 {
		cfg.Notifications.SMS.MaxRetries = 5
	}

	if cfg.Reporting.RepairWindowMinutes == 0 {
		cfg.Reporting.RepairWindowMinutes = 60
	}
	if cfg.Reporting.RepairAlertThreshold == 0 {
		cfg.Reporting.RepairAlertThreshold = 50
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.MetricsAddress == "" {
		cfg.Server.MetricsAddress = ":9102"
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if cfg.AWS.Region == "" {
		return fmt.Errorf("aws.region is required")
	}

	if cfg.Partners.Identity.BaseURL == "" {
		return fmt.Errorf("partners.identity.base_url is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
