package config

import "fmt"

// Config is the main application configuration struct. It is constructed
// once at startup and passed explicitly into every component; nothing in
// the core reads ambient global state.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	HTTP          HTTPConfig         `mapstructure:"http"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Enhancer      EnhancerConfig     `mapstructure:"enhancer"`
	Dispatch      DispatchConfig     `mapstructure:"dispatch"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Reminders     ReminderConfig     `mapstructure:"reminders"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
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

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// EnhancerConfig holds settings for the text enhancement gateway.
type EnhancerConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	APIKey          string `mapstructure:"api_key"`
	Timeout         int    `mapstructure:"timeout"` // milliseconds
	FallbackSubject string `mapstructure:"fallback_subject"`
}

// DispatchConfig holds settings for the fan-out engine.
type DispatchConfig struct {
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

// NotificationConfig holds settings for the channel senders.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		Provider  string `mapstructure:"provider"` // "ses" or "smtp"
		FromEmail string `mapstructure:"from_email"`
		FromName  string `mapstructure:"from_name"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled       bool    `mapstructure:"enabled"`
		SenderID      string  `mapstructure:"sender_id"`
		RatePerSecond float64 `mapstructure:"rate_per_second"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		UseTLS   bool   `mapstructure:"use_tls"`
	} `mapstructure:"smtp"`
}

// ReminderConfig holds settings for the service reminder subsystem.
type ReminderConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	CheckSchedule    string `mapstructure:"check_schedule"` // cron expression
	DaysAhead        int    `mapstructure:"days_ahead"`
	NotificationDays int    `mapstructure:"notification_days"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
