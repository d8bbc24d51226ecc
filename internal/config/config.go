package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything the server reads from the environment. Values are
// read once at startup; there is no hot-reload.
type Config struct {
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	Env      string `mapstructure:"ENV"` // development|production

	// Backend selection: a non-empty MONGODB_URI wins, otherwise DB_DRIVER
	// (sqlite|postgres) with DB_DSN.
	MongoURI    string `mapstructure:"MONGODB_URI"`
	MongoDBName string `mapstructure:"MONGODB_DB_NAME"`
	DBDriver    string `mapstructure:"DB_DRIVER"`
	DBDSN       string `mapstructure:"DB_DSN"`

	SessionSecret string `mapstructure:"SESSION_SECRET"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	CORSOrigins string `mapstructure:"CORS_ORIGINS"` // comma-separated
}

func (c *Config) Production() bool { return c.Env == "production" }

func (c *Config) Origins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Load reads config.yaml if present, then environment variables, then defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("HTTP_ADDR", ":5000")
	v.SetDefault("ENV", "development")
	v.SetDefault("MONGODB_URI", "")
	v.SetDefault("MONGODB_DB_NAME", "mathathon")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("SESSION_SECRET", "mathathon-default-secret")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
