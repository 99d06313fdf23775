package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends selectable through DB_BACKEND.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	MongoDB   MongoDBConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Backend string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type PostgresConfig struct {
	URL string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

type AuthConfig struct {
	Enabled            bool
	JWTSecret          string
	AccessTokenTTL     time.Duration
	OIDCIssuer         string
	OIDCClientID       string
	AllowInsecureToken bool
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5002")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("DB_BACKEND", BackendMongo)
	viper.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGODB_DATABASE", "docvault")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("CACHE_TTL", 300)
	viper.SetDefault("CACHE_PREFIX", "")
	viper.SetDefault("AUTH_ENABLED", true)
	viper.SetDefault("JWT_ACCESS_TOKEN_TTL", 60)
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("RATE_LIMIT_USE_REDIS", false)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Backend: strings.ToLower(viper.GetString("DB_BACKEND")),
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Postgres: PostgresConfig{
			URL: viper.GetString("POSTGRES_URL"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			TTL:    time.Duration(viper.GetInt("CACHE_TTL")) * time.Second,
			Prefix: viper.GetString("CACHE_PREFIX"),
		},
		Auth: AuthConfig{
			Enabled:            viper.GetBool("AUTH_ENABLED"),
			JWTSecret:          os.Getenv("JWT_SECRET"),
			AccessTokenTTL:     time.Duration(viper.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
			OIDCIssuer:         viper.GetString("OIDC_ISSUER"),
			OIDCClientID:       viper.GetString("OIDC_CLIENT_ID"),
			AllowInsecureToken: viper.GetBool("ALLOW_INSECURE_TOKEN"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	switch cfg.Database.Backend {
	case BackendMongo, BackendPostgres, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown DB_BACKEND %q (want mongo, postgres or memory)", cfg.Database.Backend)
	}
	if cfg.Database.Backend == BackendPostgres && cfg.Postgres.URL == "" {
		return nil, fmt.Errorf("POSTGRES_URL is required when DB_BACKEND=postgres")
	}

	// Basic validation
	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" && cfg.Auth.OIDCIssuer == "" && !cfg.Auth.AllowInsecureToken {
		log.Println("WARNING: auth is enabled but no JWT_SECRET or OIDC_ISSUER is set; mutating routes will reject every request")
	}

	return cfg, nil
}
