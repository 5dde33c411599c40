package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/subosito/gotenv"
)

const (
	StorageMySQL    = "mysql"
	StorageSQLite   = "sqlite"
	StorageInMemory = "inmemory"
)

type Config struct {
	AppEnv   string
	LogLevel string
	LogDir   string
	Port     string

	StorageType string

	// MySQL
	DBUser    string
	DBPass    string
	DBHost    string
	DBPort    string
	DBName    string
	FullDSN   string
	SQLiteDSN string

	SessionTTL           time.Duration
	SessionRenewWithin   time.Duration
	SessionSweepInterval time.Duration

	AllowedOrigins []string

	// Values Load could not parse; Validate reports them.
	loadProblems []string
}

// Load reads the optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var problems []string

	cfg := &Config{
		AppEnv:   strings.ToLower(getEnv("APP_ENV", "development")),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogDir:   getEnv("LOG_DIR", "./logging/logs"),
		Port:     getEnv("APP_PORT", "8080"),

		StorageType: strings.ToLower(getEnv("STORAGE_TYPE", StorageSQLite)),

		DBUser:    os.Getenv("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"),
		DBHost:    os.Getenv("DB_HOST"),
		DBPort:    os.Getenv("DB_PORT"),
		DBName:    getEnv("DB_NAME", "budget_dashboard"),
		FullDSN:   os.Getenv("FULL_DSN"),
		SQLiteDSN: getEnv("SQLITE_PATH", "./data/budget_dashboard.db"),

		SessionTTL:           getEnvDuration("SESSION_TTL", 90*24*time.Hour, &problems),
		SessionRenewWithin:   getEnvDuration("SESSION_RENEW_WITHIN", 5*24*time.Hour, &problems),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", time.Hour, &problems),

		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
	cfg.loadProblems = problems

	return cfg, nil
}

// Validate reports every problem at once instead of stopping at the first.
func (c *Config) Validate() error {
	problems := append([]string(nil), c.loadProblems...)

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StorageType {
	case StorageMySQL:
		if c.FullDSN == "" && (c.DBUser == "" || c.DBPass == "" || c.DBHost == "" || c.DBPort == "") {
			problems = append(problems, "missing required DB environment variables (DB_USER, DB_PASS, DB_HOST, DB_PORT or FULL_DSN)")
		}
	case StorageSQLite:
		if c.SQLiteDSN == "" {
			problems = append(problems, "SQLITE_PATH cannot be empty")
		}
	case StorageInMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid storage type '%s': must be one of mysql, sqlite, inmemory", c.StorageType))
	}

	if c.SessionTTL <= 0 {
		problems = append(problems, "SESSION_TTL must be positive")
	}
	if c.SessionRenewWithin < 0 || c.SessionRenewWithin >= c.SessionTTL {
		problems = append(problems, "SESSION_RENEW_WITHIN must be non-negative and shorter than SESSION_TTL")
	}
	if c.SessionSweepInterval <= 0 {
		problems = append(problems, "SESSION_SWEEP_INTERVAL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// MySQLDSN builds the driver DSN. FULL_DSN wins when set; multi statements
// are always enabled because migration files hold several statements.
func (c *Config) MySQLDSN() (string, error) {
	var dsnCfg *mysql.Config
	if c.FullDSN != "" {
		parsed, err := mysql.ParseDSN(c.FullDSN)
		if err != nil {
			return "", fmt.Errorf("failed to parse FULL_DSN: %w", err)
		}
		dsnCfg = parsed
	} else {
		dsnCfg = mysql.NewConfig()
		dsnCfg.User = c.DBUser
		dsnCfg.Passwd = c.DBPass
		dsnCfg.Net = "tcp"
		dsnCfg.Addr = c.DBHost + ":" + c.DBPort
		dsnCfg.DBName = c.DBName
	}

	dsnCfg.ParseTime = true
	dsnCfg.MultiStatements = true
	dsnCfg.Loc = time.UTC

	return dsnCfg.FormatDSN(), nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// getEnvDuration records an unparsable value in problems and returns the
// fallback in its place.
func getEnvDuration(key string, fallback time.Duration, problems *[]string) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("invalid %s '%s': must be a duration such as 24h or 30m", key, value))
		return fallback
	}
	return d
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
