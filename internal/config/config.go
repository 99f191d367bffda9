package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
	SessionStoreSQLite   = "sqlite"

	CatalogSourceFile     = "file"
	CatalogSourcePostgres = "postgres"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"3001"`
	DatabaseURL string `env:"DATABASE_URL"`

	SessionStore string `env:"SESSION_STORE" envDefault:"memory"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"data/sessions.db"`

	CatalogSource string `env:"CATALOG_SOURCE" envDefault:"file"`
	CatalogFile   string `env:"CATALOG_FILE" envDefault:"data/products.json"`
	CatalogWatch  bool   `env:"CATALOG_WATCH" envDefault:"true"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SessionLockTTLMillis  int `env:"SESSION_LOCK_TTL_MS" envDefault:"5000"`
	ChatRateLimit         int `env:"CHAT_RATE_LIMIT" envDefault:"30"`
	ChatRateWindowSeconds int `env:"CHAT_RATE_WINDOW_SECONDS" envDefault:"60"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"60"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))
	cfg.CatalogSource = strings.ToLower(strings.TrimSpace(cfg.CatalogSource))
	return &cfg, nil
}

func (c *Config) SessionLockTTL() time.Duration {
	return time.Duration(c.SessionLockTTLMillis) * time.Millisecond
}

func (c *Config) ChatRateWindow() time.Duration {
	return time.Duration(c.ChatRateWindowSeconds) * time.Second
}
