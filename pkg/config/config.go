package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	OpenAI    OpenAIConfig
	Optimizer OptimizerConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
	AllowOrigins   string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	// environment snapshots are cached only when enabled
	Enabled bool
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OptimizerConfig carries the tuning constants; zero values fall back to the built-in defaults.
type OptimizerConfig struct {
	FlowWindowDays        int
	AssociationWindowDays int
	BottleneckThreshold   float64
	DwellCVThreshold      float64
	DeadZoneFraction      float64
	MaxPathLength         int
	TopKPaths             int
	MinTransitions        int
	MinSupport            float64
	MinTransactions       int
	VeryStrongLift        float64
	StrongLift            float64
	MaxRevenueDeltaPct    float64
	MaxConversionDeltaPct float64
	JoinTimeout           time.Duration
	DefaultMaxChanges     int
	NarrativeEnabled      bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Store Optimizer API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),
			AllowOrigins:   getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "store_optimizer"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			Enabled:       getBool("REDIS_ENABLED", true),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Timeout: getDuration("OPENAI_TIMEOUT", 8*time.Second),
		},
		Optimizer: OptimizerConfig{
			FlowWindowDays:        getInt("OPT_FLOW_WINDOW_DAYS", 0),
			AssociationWindowDays: getInt("OPT_ASSOCIATION_WINDOW_DAYS", 0),
			BottleneckThreshold:   getFloat("OPT_BOTTLENECK_THRESHOLD", 0),
			DwellCVThreshold:      getFloat("OPT_DWELL_CV_THRESHOLD", 0),
			DeadZoneFraction:      getFloat("OPT_DEAD_ZONE_FRACTION", 0),
			MaxPathLength:         getInt("OPT_MAX_PATH_LENGTH", 0),
			TopKPaths:             getInt("OPT_TOP_K_PATHS", 0),
			MinTransitions:        getInt("OPT_MIN_TRANSITIONS", 0),
			MinSupport:            getFloat("OPT_MIN_SUPPORT", 0),
			MinTransactions:       getInt("OPT_MIN_TRANSACTIONS", 0),
			VeryStrongLift:        getFloat("OPT_VERY_STRONG_LIFT", 0),
			StrongLift:            getFloat("OPT_STRONG_LIFT", 0),
			MaxRevenueDeltaPct:    getFloat("OPT_MAX_REVENUE_DELTA_PCT", 0),
			MaxConversionDeltaPct: getFloat("OPT_MAX_CONVERSION_DELTA_PCT", 0),
			JoinTimeout:           getDuration("OPT_JOIN_TIMEOUT", 0),
			DefaultMaxChanges:     getInt("OPT_DEFAULT_MAX_CHANGES", 0),
			NarrativeEnabled:      getBool("OPT_NARRATIVE_ENABLED", true),
		},
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}
