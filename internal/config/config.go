// Package config loads process configuration from the environment.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LogConfig controls the process logger
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// RedisConfig locates the reward ledger backend
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// BotConfig holds the Discord connection settings
type BotConfig struct {
	Token         string `env:"DISCORD_TOKEN"`
	ApplicationID string `env:"APPLICATION_ID" envDefault:""`

	// GuildID scopes command registration to one server during development;
	// empty registers globally
	GuildID string `env:"GUILD_ID" envDefault:""`
}

// AppConfig is the full process configuration
type AppConfig struct {
	Log   LogConfig
	Redis RedisConfig
	Bot   BotConfig
}

// Load reads configuration from the environment, applying a .env file first
// when one is present.
func Load() (AppConfig, error) {
	// Missing .env is the normal production case
	_ = godotenv.Load()

	var cfg AppConfig
	if err := env.Parse(&cfg.Log); err != nil {
		return AppConfig{}, err
	}
	if err := env.Parse(&cfg.Redis); err != nil {
		return AppConfig{}, err
	}
	if err := env.Parse(&cfg.Bot); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}
