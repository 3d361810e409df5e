package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendPostgres = "postgres"
	BackendRemote   = "remote"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Store     StoreConfig
	Email     EmailConfig
	Bootstrap BootstrapConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// SessionConfig drives the inactivity timer pair. The warning fires at
// Timeout-WarningWindow after the last recorded activity, the expiry at
// Timeout. Activity events closer together than ActivityDebounce are
// collapsed into a single timer reset.
type SessionConfig struct {
	JWTSecret        string
	Timeout          time.Duration
	WarningWindow    time.Duration
	ActivityDebounce time.Duration
	CleanupInterval  time.Duration
}

// StoreConfig selects the participant/result backend. The postgres
// backend is always available (it also holds admins, sessions and the
// result fallback queue); "remote" switches participant/result traffic
// to the action-protocol web app at RemoteURL.
type StoreConfig struct {
	Backend           string
	RemoteURL         string
	ReconcileInterval time.Duration
}

type EmailConfig struct {
	Enabled       bool
	AWSRegion     string
	FromAddress   string
	SurveyURLBase string
}

// BootstrapConfig controls the one-time default admin provisioning.
// The fixed initial password is a documented trade-off carried over
// from the original tool; it is stored hashed and should be rotated
// immediately after first login.
type BootstrapConfig struct {
	AdminID       string
	AdminPassword string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
		},
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "darktriad"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Session: SessionConfig{
			JWTSecret:        jwtSecret,
			Timeout:          getEnvAsDuration("SESSION_TIMEOUT", 30*time.Minute),
			WarningWindow:    getEnvAsDuration("SESSION_WARNING_WINDOW", 5*time.Minute),
			ActivityDebounce: getEnvAsDuration("SESSION_ACTIVITY_DEBOUNCE", 60*time.Second),
			CleanupInterval:  getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
		},
		Store: StoreConfig{
			Backend:           getEnv("STORE_BACKEND", BackendPostgres),
			RemoteURL:         getEnv("STORE_REMOTE_URL", ""),
			ReconcileInterval: getEnvAsDuration("STORE_RECONCILE_INTERVAL", 5*time.Minute),
		},
		Email: EmailConfig{
			Enabled:       getEnvAsBool("EMAIL_ENABLED", false),
			AWSRegion:     getEnv("EMAIL_AWS_REGION", "us-east-1"),
			FromAddress:   getEnv("EMAIL_FROM_ADDRESS", ""),
			SurveyURLBase: getEnv("EMAIL_SURVEY_URL_BASE", ""),
		},
		Bootstrap: BootstrapConfig{
			AdminID:       getEnv("BOOTSTRAP_ADMIN_ID", "admin"),
			AdminPassword: getEnv("BOOTSTRAP_ADMIN_PASSWORD", "123456"),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	switch cfg.Store.Backend {
	case BackendPostgres:
	case BackendRemote:
		if cfg.Store.RemoteURL == "" {
			return nil, fmt.Errorf("STORE_REMOTE_URL is required when STORE_BACKEND=remote")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}

	if cfg.Email.Enabled && cfg.Email.FromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when EMAIL_ENABLED=true")
	}

	if cfg.Session.WarningWindow >= cfg.Session.Timeout {
		return nil, fmt.Errorf("SESSION_WARNING_WINDOW must be shorter than SESSION_TIMEOUT")
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateJWTSecret enforces minimum security standards for the session signing secret
func validateJWTSecret(secret, env string) error {
	minLength := 16 // Development minimum
	if env == "production" {
		minLength = 32 // Production requires stronger secret (256 bits)
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		originsStr := getEnv("ALLOWED_ORIGINS", "")
		if originsStr == "" {
			return []string{} // Default to no origins in production
		}
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
