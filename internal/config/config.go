package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	FRED     FREDConfig
	Curves   CurveConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers       []string
	ConsumerTopic string
	ProducerTopic string
	GroupID       string
}

// RedisConfig holds Redis cache configuration. An empty Addr disables caching.
type RedisConfig struct {
	Addr       string
	TTLSeconds int
}

// FREDConfig holds upstream FRED API configuration
type FREDConfig struct {
	APIKey  string
	BaseURL string
}

// CurveConfig holds curve construction settings. InitialLoadStartDate, when
// set to a YYYY-MM-DD date, triggers a full-history load from that date at
// startup.
type CurveConfig struct {
	InterpolationMethod  string
	MinDataPoints        int
	RefreshSchedule      string
	LookbackDays         int
	DefaultMaxPoints     int
	InitialLoadStartDate string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "bondcurves"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:       []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ConsumerTopic: getEnv("KAFKA_OBSERVATIONS_TOPIC", "yield-observations"),
			ProducerTopic: getEnv("KAFKA_CURVES_TOPIC", "curve-events"),
			GroupID:       getEnv("KAFKA_GROUP_ID", "bond-curve-service"),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", ""),
			TTLSeconds: getEnvInt("REDIS_TTL_SECONDS", 300),
		},
		FRED: FREDConfig{
			APIKey:  getEnv("FRED_API_KEY", ""),
			BaseURL: getEnv("FRED_BASE_URL", "https://api.stlouisfed.org/fred"),
		},
		Curves: CurveConfig{
			InterpolationMethod:  getEnv("CURVE_INTERPOLATION_METHOD", "cubic"),
			MinDataPoints:        getEnvInt("CURVE_MIN_DATA_POINTS", 3),
			RefreshSchedule:      getEnv("CURVE_REFRESH_SCHEDULE", "0 18 * * *"),
			LookbackDays:         getEnvInt("CURVE_LOOKBACK_DAYS", 30),
			DefaultMaxPoints:     getEnvInt("CURVE_DEFAULT_MAX_POINTS", 300),
			InitialLoadStartDate: getEnv("INITIAL_LOAD_START_DATE", ""),
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
