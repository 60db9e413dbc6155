package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/memgraph/ogm/internal/logger"
)

// DefaultMaxPoolSize is the default number of pooled driver connections.
const DefaultMaxPoolSize int32 = 100

// Config holds the database connection configuration.
type Config struct {
	URI         string
	Username    string
	Password    string
	Database    string
	Encrypted   bool // If true, connects with TLS
	LogLevel    string
	LogFormat   string
	MaxPoolSize int32
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("configuration is required but was nil")
	}

	if c.URI == "" {
		return fmt.Errorf("database URI is required but was empty")
	}

	// Memgraph runs without auth by default; credentials are all-or-nothing.
	if (c.Username == "") != (c.Password == "") {
		return fmt.Errorf("username and password must be provided together")
	}

	if c.MaxPoolSize <= 0 {
		return fmt.Errorf("max pool size must be positive, got %d", c.MaxPoolSize)
	}

	return nil
}

// BoltURI returns the connection URI, upgraded to a TLS scheme when
// Encrypted is set. URIs already carrying an explicit security scheme are
// returned unchanged.
func (c *Config) BoltURI() string {
	if !c.Encrypted {
		return c.URI
	}
	for _, scheme := range []string{"bolt://", "neo4j://"} {
		if rest, ok := strings.CutPrefix(c.URI, scheme); ok {
			return scheme[:len(scheme)-3] + "+s://" + rest
		}
	}
	return c.URI
}

// Overrides holds optional configuration values supplied by the caller.
type Overrides struct {
	URI      string
	Username string
	Password string
	Database string
}

// LoadConfig loads configuration from environment variables, applies caller
// overrides, and validates. Override values take precedence over environment
// variables. MG_* variables win over their NEO4J_* equivalents.
func LoadConfig(overrides *Overrides) (*Config, error) {
	logLevel := GetEnvWithDefault("MG_LOG_LEVEL", "info")
	logFormat := GetEnvWithDefault("MG_LOG_FORMAT", "text")

	// Validate log level and use default if invalid
	if !slices.Contains(logger.ValidLogLevels, logLevel) {
		fmt.Fprintf(os.Stderr, "Warning: invalid MG_LOG_LEVEL '%s', using default 'info'. Valid values: %v\n", logLevel, logger.ValidLogLevels)
		logLevel = "info"
	}

	// Validate log format and use default if invalid
	if !slices.Contains(logger.ValidLogFormats, logFormat) {
		fmt.Fprintf(os.Stderr, "Warning: invalid MG_LOG_FORMAT '%s', using default 'text'. Valid values: %v\n", logFormat, logger.ValidLogFormats)
		logFormat = "text"
	}

	cfg := &Config{
		URI:         getEnvFallback("MG_URI", "NEO4J_URI", "bolt://localhost:7687"),
		Username:    getEnvFallback("MG_USERNAME", "NEO4J_USERNAME", ""),
		Password:    getEnvFallback("MG_PASSWORD", "NEO4J_PASSWORD", ""),
		Database:    getEnvFallback("MG_DATABASE", "NEO4J_DATABASE", ""),
		Encrypted:   ParseBool(GetEnv("MG_ENCRYPTED"), false),
		LogLevel:    logLevel,
		LogFormat:   logFormat,
		MaxPoolSize: ParseInt32(GetEnv("MG_MAX_POOL_SIZE"), DefaultMaxPoolSize),
	}

	// Apply overrides if provided
	if overrides != nil {
		if overrides.URI != "" {
			cfg.URI = overrides.URI
		}
		if overrides.Username != "" {
			cfg.Username = overrides.Username
		}
		if overrides.Password != "" {
			cfg.Password = overrides.Password
		}
		if overrides.Database != "" {
			cfg.Database = overrides.Database
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// GetEnv returns the value of an environment variable or empty string if not set
func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvWithDefault returns the value of an environment variable or a default value
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFallback tries the primary key, then the fallback key, then the
// default.
func getEnvFallback(key, fallbackKey, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value := os.Getenv(fallbackKey); value != "" {
		return value
	}
	return defaultValue
}

// ParseBool parses a string to bool using strconv.ParseBool.
// Returns the default value if the string is empty or invalid.
// Logs a warning if the value is non-empty but invalid.
// Accepts: "1", "t", "T", "true", "True", "TRUE" for true
//
//	"0", "f", "F", "false", "False", "FALSE" for false
func ParseBool(value string, defaultValue bool) bool {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: Invalid boolean value %q, using default: %v", value, defaultValue)
		return defaultValue
	}
	return parsed
}

// ParseInt32 parses a string to int32.
// Returns the default value if the string is empty or invalid.
func ParseInt32(value string, defaultValue int32) int32 {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		log.Printf("Warning: Invalid integer value %q, using default: %v", value, defaultValue)
		return defaultValue
	}
	return int32(parsed)
}
