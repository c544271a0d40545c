package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultDatabaseAlias is the alias used when no --database is given
const DefaultDatabaseAlias = "default"

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Browser-facing settings. CORS credentials are only allowed for the
	// listed origins; the admin session cookie is Secure when CookieSecure.
	CORSAllowedOrigins []string
	CookieSecure       bool

	// Database configuration, keyed by alias. "default" is always present.
	Databases map[string]DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// JWT configuration
	JWT JWTConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Kafka tag events
	Kafka KafkaConfig

	// Tagging behaviour
	Tagging TaggingConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Alias    string
	Driver   string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	CacheTTL time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	JWTExpiresIn     time.Duration
	RefreshExpiresIn time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `json:"enabled"`
	WindowDuration  time.Duration `json:"window_duration"`
	DefaultRequests int           `json:"default_requests"`
	PublicRequests  int           `json:"public_requests"`
	AuthRequests    int           `json:"auth_requests"`
	AdminRequests   int           `json:"admin_requests"`
	HealthRequests  int           `json:"health_requests"`
	WhitelistedIPs  []string      `json:"whitelisted_ips"`
}

// KafkaConfig holds the tag event producer configuration
type KafkaConfig struct {
	Enabled        bool
	Brokers        []string
	TagEventsTopic string
	RetryMax       int
	Timeout        time.Duration

	// ConsumerGroup, when set, makes the server consume tag events to keep its cache fresh
	ConsumerGroup string
}

// TaggingConfig holds tagging feature switches
type TaggingConfig struct {
	MultilingualTags bool
	DefaultLanguage  string
	MaxTagLength     int
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		Databases: loadDatabases(),

		// Redis configuration
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			CacheTTL: getDurationEnv("REDIS_CACHE_TTL", 1*time.Hour),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret:           getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
			JWTExpiresIn:     getDurationEnvSeconds("JWT_EXPIRES_IN", 15*time.Minute),
			RefreshExpiresIn: getDurationEnvSeconds("JWT_REFRESH_EXPIRES_IN", 24*time.Hour),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:  getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests: getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:  getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 100),
			AuthRequests:    getIntEnv("RATE_LIMIT_AUTH_REQUESTS", 10),
			AdminRequests:   getIntEnv("RATE_LIMIT_ADMIN_REQUESTS", 200),
			HealthRequests:  getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 300),
			WhitelistedIPs:  getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		Kafka: KafkaConfig{
			Enabled:        getBoolEnv("KAFKA_ENABLED", false),
			Brokers:        getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			TagEventsTopic: getEnv("KAFKA_TAG_EVENTS_TOPIC", "tag-events"),
			RetryMax:       getIntEnv("KAFKA_RETRY_MAX", 3),
			Timeout:        getDurationEnv("KAFKA_TIMEOUT", 10*time.Second),
			ConsumerGroup:  getEnv("KAFKA_CONSUMER_GROUP", "tagging-cache-invalidators"),
		},

		Tagging: TaggingConfig{
			MultilingualTags: getBoolEnv("MULTILINGUAL_TAGS", false),
			DefaultLanguage:  getEnv("DEFAULT_LANGUAGE", "en"),
			MaxTagLength:     getIntEnv("MAX_TAG_LENGTH", 100),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port
	cfg.CORSAllowedOrigins = getStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	cfg.CookieSecure = getBoolEnv("COOKIE_SECURE", cfg.IsProduction())

	return cfg
}

// loadDatabases reads the default database from DB_* and every extra alias
// listed in DATABASE_ALIASES from DB_<ALIAS>_*.
func loadDatabases() map[string]DatabaseConfig {
	databases := map[string]DatabaseConfig{
		DefaultDatabaseAlias: loadDatabase(DefaultDatabaseAlias, "DB_"),
	}

	for _, alias := range getStringSliceEnv("DATABASE_ALIASES", nil) {
		alias = strings.ToLower(alias)
		if alias == DefaultDatabaseAlias {
			continue
		}
		databases[alias] = loadDatabase(alias, "DB_"+strings.ToUpper(alias)+"_")
	}

	return databases
}

func loadDatabase(alias, prefix string) DatabaseConfig {
	db := DatabaseConfig{
		Alias:    alias,
		Driver:   strings.ToLower(getEnv(prefix+"DRIVER", DriverPostgres)),
		Host:     getEnv(prefix+"HOST", "localhost"),
		Port:     getEnv(prefix+"PORT", "5432"),
		Name:     getEnv(prefix+"NAME", "tagging_db"),
		User:     getEnv(prefix+"USER", "tagging_user"),
		Password: getEnv(prefix+"PASSWORD", "tagging_password"),
		SSLMode:  getEnv(prefix+"SSLMODE", "disable"),
		DSN:      getEnv(prefix+"DSN", ""),
	}
	if db.DSN == "" {
		db.DSN = buildDatabaseDSN(db)
	}
	return db
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	if db.Driver == DriverSQLite {
		return db.Name + ".sqlite3"
	}
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getDurationEnvSeconds gets an environment variable as seconds (int) and converts to time.Duration
func getDurationEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// Database returns the configuration registered under alias
func (c *Config) Database(alias string) (DatabaseConfig, bool) {
	if alias == "" {
		alias = DefaultDatabaseAlias
	}
	db, ok := c.Databases[strings.ToLower(alias)]
	return db, ok
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
