package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable override
const EnvPrefix = "GUARD_ROTA_"

// StoreConfig selects and locates the storage backend
type StoreConfig struct {
	Driver        string `yaml:"driver" env:"DRIVER" validate:"required,oneof=postgres mongo"`
	PostgresDSN   string `yaml:"postgresDSN" env:"POSTGRES_DSN" validate:"required_if=Driver postgres"`
	MongoURI      string `yaml:"mongoURI" env:"MONGO_URI" validate:"required_if=Driver mongo"`
	MongoDatabase string `yaml:"mongoDatabase" env:"MONGO_DATABASE" validate:"required_if=Driver mongo"`
}

// SchedulerConfig tunes the solver and the rule constants. Zero values keep
// the scheduler defaults.
type SchedulerConfig struct {
	TimeLimit      time.Duration `yaml:"timeLimit" env:"TIME_LIMIT"`
	MaxWorkingDays int           `yaml:"maxWorkingDays" env:"MAX_WORKING_DAYS" validate:"min=0,max=7"`
	FairnessBand   int           `yaml:"fairnessBand" env:"FAIRNESS_BAND" validate:"min=0"`
	FairnessWeight int64         `yaml:"fairnessWeight" env:"FAIRNESS_WEIGHT" validate:"min=0"`
	SentinelCost   int64         `yaml:"sentinelCost" env:"SENTINEL_COST" validate:"min=0"`
}

// AutoConfig drives the unattended weekly run
type AutoConfig struct {
	// RRule is an RFC 5545 recurrence rule, e.g. "FREQ=WEEKLY;BYDAY=SU;BYHOUR=2"
	RRule     string `yaml:"rrule" env:"RRULE" validate:"required"`
	ManagerID int64  `yaml:"managerID" env:"MANAGER_ID" validate:"min=0"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR" validate:"required"`
	ReadTimeout     time.Duration `yaml:"readTimeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"SHUTDOWN_TIMEOUT"`
}

// RedisConfig enables the per-hotel run lock. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB" validate:"min=0"`
	LockTTL  time.Duration `yaml:"lockTTL" env:"LOCK_TTL"`
}

// RabbitMQConfig enables schedule event publishing. An empty URL disables it.
type RabbitMQConfig struct {
	URL            string        `yaml:"url" env:"URL"`
	Queue          string        `yaml:"queue" env:"QUEUE"`
	PublishTimeout time.Duration `yaml:"publishTimeout" env:"PUBLISH_TIMEOUT"`
}

// SheetsConfig enables publishing results to a spreadsheet
type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheetID" env:"SPREADSHEET_ID"`
	CredentialsFile string `yaml:"credentialsFile" env:"CREDENTIALS_FILE" validate:"required_with=SpreadsheetID"`
}

// MailConfig enables partial-schedule alerts. An empty Host disables them.
type MailConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT" validate:"min=0,max=65535"`
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`
	From     string `yaml:"from" env:"FROM" validate:"omitempty,email"`
}

// Config represents the application configuration
type Config struct {
	Store     StoreConfig     `yaml:"store" envPrefix:"STORE_"`
	Scheduler SchedulerConfig `yaml:"scheduler" envPrefix:"SCHEDULER_"`
	Auto      AutoConfig      `yaml:"auto" envPrefix:"AUTO_"`
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Redis     RedisConfig     `yaml:"redis" envPrefix:"REDIS_"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq" envPrefix:"RABBITMQ_"`
	Sheets    SheetsConfig    `yaml:"sheets" envPrefix:"SHEETS_"`
	Mail      MailConfig      `yaml:"mail" envPrefix:"MAIL_"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the configuration every file is layered over
func Default() Config {
	return Config{
		Store: StoreConfig{Driver: "postgres"},
		Auto: AutoConfig{
			RRule: "FREQ=WEEKLY;BYDAY=SU;BYHOUR=2;BYMINUTE=0;BYSECOND=0",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Redis:    RedisConfig{LockTTL: 5 * time.Minute},
		RabbitMQ: RabbitMQConfig{Queue: "schedule_events", PublishTimeout: 10 * time.Second},
		Mail:     MailConfig{Port: 587},
	}
}

// LoadWithEnv loads the configuration for an environment. It reads
// config/<env>.yaml, falling back to guard_rota_config.yaml in the current
// directory and then the home directory, and applies GUARD_ROTA_ overrides.
func LoadWithEnv(envName string) (*Config, error) {
	configPath, err := findConfigFile(envName)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads, overrides and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Mail.Host != "" && cfg.Mail.From == "" {
		return errors.New("config validation failed: mail.from is required when mail.host is set")
	}

	if _, err := rrule.StrToRRule(cfg.Auto.RRule); err != nil {
		return fmt.Errorf("invalid rrule in auto.rrule: %w", err)
	}

	return nil
}

// NextRun returns the first occurrence of the auto rule strictly after the given time
func (a AutoConfig) NextRun(after time.Time) (time.Time, error) {
	opt, err := rrule.StrToROption(a.RRule)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid rrule: %w", err)
	}
	if opt.Dtstart.IsZero() {
		opt.Dtstart = after.Truncate(time.Second)
	}
	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid rrule: %w", err)
	}

	next := rule.After(after, false)
	if next.IsZero() {
		return time.Time{}, errors.New("rrule has no further occurrences")
	}
	return next, nil
}

// findConfigFile searches for the environment's config file, then for
// guard_rota_config.yaml in the current directory and home directory
func findConfigFile(envName string) (string, error) {
	if envName != "" {
		envPath := filepath.Join("config", envName+".yaml")
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	configFileName := "guard_rota_config.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found for env %q in config/, current directory or home directory", envName)
}
