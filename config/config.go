package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const productionEnv = "production"

type Config struct {
	Port        string `env:"PORT" envDefault:"5000"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	// CorsOrigins is a comma separated list passed to the CORS middleware.
	CorsOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`

	Mongo Mongo
	Token Token
	Redis Redis
}

type Mongo struct {
	ConnString string        `env:"MONGODB_CONNSTRING,required,notEmpty"`
	Database   string        `env:"MONGODB_DATABASE" envDefault:"car-rental"`
	Timeout    time.Duration `env:"MONGODB_TIMEOUT" envDefault:"10s"`
}

type Token struct {
	Secret string `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`
	// TTL is deliberately long: sessions last about a year.
	TTL time.Duration `env:"TOKEN_TTL" envDefault:"8760h"`
}

// Redis is optional. An empty Addr disables the listing view cache.
type Redis struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"1m"`
}

// Load reads a .env file when one exists and then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) IsProduction() bool {
	return cfg.Environment == productionEnv
}

func (cfg *Config) validate() error {
	if cfg.Token.TTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %v", cfg.Token.TTL)
	}
	if cfg.Mongo.Timeout <= 0 {
		return fmt.Errorf("MONGODB_TIMEOUT must be positive, got %v", cfg.Mongo.Timeout)
	}
	return nil
}
