package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"recipebox/internal/apperror"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr        string
		AllowOrigin string
	}
	Database struct {
		Driver string
		Path   string
		DSN    string
	}
	Auth struct {
		JWTSecret    string
		BcryptCost   int
		TokenTTL     time.Duration
		CookieName   string
		CookieSecure bool
	}
	Log struct {
		Level string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	_ = godotenv.Load() // optional file, never overrides the environment

	v := viper.New()
	v.SetEnvPrefix("RECIPEBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.alloworigin", "")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/recipebox.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.bcryptcost", 0)
	v.SetDefault("auth.tokenttl", "672h")
	v.SetDefault("auth.cookiename", "accessToken")
	v.SetDefault("auth.cookiesecure", false)
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate reports settings the process cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return apperror.Configuration("auth jwt secret is required")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return apperror.Configuration("auth bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost)
	}
	if c.Auth.TokenTTL <= 0 {
		return apperror.Configuration("auth token ttl must be positive")
	}
	if strings.TrimSpace(c.Auth.CookieName) == "" {
		return apperror.Configuration("auth cookie name is required")
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return apperror.Configuration("database path is required for sqlite")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return apperror.Configuration("database dsn is required for postgres")
		}
	default:
		return apperror.Configuration("unknown database driver %q", c.Database.Driver)
	}
	return nil
}
