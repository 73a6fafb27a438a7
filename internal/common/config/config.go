// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct. It is built once at
// process start and passed by reference into every component; there is no
// ambient mutable global state.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	AWS           AWSConfig          `mapstructure:"aws"`
	Tables        TablesConfig       `mapstructure:"tables"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Partners      PartnersConfig     `mapstructure:"partners"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Reporting     ReportingConfig    `mapstructure:"reporting"`
	Server        ServerConfig       `mapstructure:"server"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
	// Endpoint overrides the DynamoDB endpoint, used for local stacks.
	Endpoint string `mapstructure:"endpoint"`
}

// TablesConfig names every DynamoDB table and index the core touches.
// Defaults match the production store.
type TablesConfig struct {
	Loan               string `mapstructure:"loan"`
	LoanClientIndex    string `mapstructure:"loan_client_index"`
	Offers             string `mapstructure:"offers"`
	StatusCatalog      string `mapstructure:"status_catalog"`
	Client             string `mapstructure:"client"`
	ClientMsisdnIndex  string `mapstructure:"client_msisdn_index"`
	ClientIDMTSIndex   string `mapstructure:"client_idmts_index"`
	UpdatedAccounts    string `mapstructure:"updated_accounts"`
	ClientSMS          string `mapstructure:"client_sms"`
	SMSTemplates       string `mapstructure:"sms_templates"`
	Agents             string `mapstructure:"agents"`
	AgentCodeIndex     string `mapstructure:"agent_code_index"`
	Movements          string `mapstructure:"movements"`
	MovementsClientIdx string `mapstructure:"movements_client_index"`
	RequestLog         string `mapstructure:"request_log"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// StatusTTLMinutes bounds the status catalog cache.
	StatusTTLMinutes int `mapstructure:"status_ttl_minutes"`
}

// PartnersConfig holds settings for external REST collaborators.
type PartnersConfig struct {
	Identity IdentityConfig `mapstructure:"identity"`
	Credit   CreditConfig   `mapstructure:"credit"`
}

// IdentityConfig points at the mobile-money switch that owns the canonical
// client identity (msisdn / external client id mapping).
type IdentityConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	Username          string `mapstructure:"username"`
	Password          string `mapstructure:"password"`
	AuthorizationCode string `mapstructure:"authorization_code"`
	Timeout           int    `mapstructure:"timeout"` // milliseconds
}

// CreditConfig points at the credit core holding loan account balances.
type CreditConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// NotificationConfig holds settings for SMS and email dispatch.
type NotificationConfig struct {
	SMS struct {
		Enabled            bool   `mapstructure:"enabled"`
		DefaultSMSSenderID string `mapstructure:"default_sms_sender_id"`
		MaxRetries         int    `mapstructure:"max_retries"`
	} `mapstructure:"sms"`
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
}

// ReportingConfig drives the relational decision mirror and the repair
// spike alert.
type ReportingConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	AlertRecipient       string `mapstructure:"alert_recipient"`
	RepairWindowMinutes  int    `mapstructure:"repair_window_minutes"`
	RepairAlertThreshold int    `mapstructure:"repair_alert_threshold"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}
