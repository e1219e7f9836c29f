package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
	BackendFile   = "file"

	SourceHTTP  = "http"
	SourceStore = "store"
)

type Config struct {
	// HTTP servers
	Port          string
	DashboardPort string
	RateLimitRPS  float64

	// Document store
	DataBackend     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	SQLiteDBPath    string
	DataFile        string

	// Dashboard loader
	DashboardSource string
	DataURL         string
	FetchTimeout    time.Duration
	InitialYear     string
	RandomSeed      uint64

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads a .env file when present, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "3001"),
		DashboardPort: getEnv("DASHBOARD_PORT", "3000"),
		RateLimitRPS:  getEnvFloat("RATE_LIMIT_RPS", 20),

		DataBackend:     getEnv("DATA_BACKEND", BackendMongo),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "blackcofferDB"),
		MongoCollection: getEnv("MONGO_COLLECTION", "datas"),
		SQLiteDBPath:    getEnv("SQLITE_DB_PATH", "./data/insights.db"),
		DataFile:        getEnv("DATA_FILE", "./data/jsondata.json"),

		DashboardSource: getEnv("DASHBOARD_SOURCE", SourceHTTP),
		DataURL:         getEnv("DATA_URL", "http://localhost:3001/api/data"),
		FetchTimeout:    getEnvDuration("FETCH_TIMEOUT", 30*time.Second),
		InitialYear:     getEnv("INITIAL_YEAR", ""),
		RandomSeed:      getEnvUint("RANDOM_SEED", uint64(time.Now().UnixNano())),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errors []string

	ports := []struct{ name, value string }{
		{"port", c.Port},
		{"dashboard port", c.DashboardPort},
	}
	for _, port := range ports {
		if p, err := strconv.Atoi(port.value); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': must be a number", port.name, port.value))
		} else if p < 1 || p > 65535 {
			errors = append(errors, fmt.Sprintf("invalid %s %d: must be between 1 and 65535", port.name, p))
		}
	}

	// 0 disables the limiter
	if c.RateLimitRPS < 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %v: must not be negative", c.RateLimitRPS))
	}

	validBackends := []string{BackendMongo, BackendSQLite, BackendFile}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendMongo:
		if u, err := url.Parse(c.MongoURI); err != nil {
			errors = append(errors, fmt.Sprintf("invalid Mongo URI '%s': %v", c.MongoURI, err))
		} else if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
			errors = append(errors, fmt.Sprintf("invalid Mongo URI scheme '%s': must be 'mongodb' or 'mongodb+srv'", u.Scheme))
		}
		if c.MongoDatabase == "" {
			errors = append(errors, "Mongo database name cannot be empty when using mongo backend")
		}
		if c.MongoCollection == "" {
			errors = append(errors, "Mongo collection name cannot be empty when using mongo backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case BackendFile:
		if c.DataFile == "" {
			errors = append(errors, "data file cannot be empty when using file backend")
		}
	}

	validSources := []string{SourceHTTP, SourceStore}
	if !slices.Contains(validSources, c.DashboardSource) {
		errors = append(errors, fmt.Sprintf("invalid dashboard source '%s': must be one of %v", c.DashboardSource, validSources))
	}
	if c.DashboardSource == SourceHTTP {
		if u, err := url.Parse(c.DataURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid data URL '%s': must be an http(s) URL", c.DataURL))
		}
	}

	if c.FetchTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at least 1 second", c.FetchTimeout))
	}

	if c.InitialYear != "" {
		if _, err := strconv.Atoi(c.InitialYear); err != nil || len(c.InitialYear) != 4 {
			errors = append(errors, fmt.Sprintf("invalid initial year '%s': must be a 4-digit year", c.InitialYear))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if u, err := strconv.ParseUint(value, 10, 64); err == nil {
			return u
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
