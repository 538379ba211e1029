package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Store    StoreConfig
	Admin    AdminConfig
	Ledger   LedgerConfig
	Line     LineConfig
	RabbitMQ RabbitMQConfig
	Remote   RemoteConfig
	Log      LogConfig
}

// DatabaseConfig selects the durable store. An empty URL keeps all
// collections in process memory.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int           `split_words:"true" default:"10"`
	MaxIdleConns    int           `split_words:"true" default:"2"`
	ConnMaxLifetime time.Duration `split_words:"true" default:"5m"`
}

type ServerConfig struct {
	Port         string        `default:"8080"`
	ReadTimeout  time.Duration `split_words:"true" default:"10s"`
	WriteTimeout time.Duration `split_words:"true" default:"10s"`
}

type StoreConfig struct {
	Timezone string `default:"Asia/Bangkok"`
}

type AdminConfig struct {
	Username     string        `default:"admin"`
	PasswordHash string        `split_words:"true"`
	JWTSecret    string        `split_words:"true"`
	TokenTTL     time.Duration `split_words:"true" default:"12h"`
}

type LedgerConfig struct {
	Token   string
	Owner   string
	Repo    string
	BaseURL string `split_words:"true"`
}

type LineConfig struct {
	ChannelToken string `split_words:"true"`
	Endpoint     string `default:"https://api.line.me"`
}

type RabbitMQConfig struct {
	URL      string
	Exchange string `default:"orders_exchange"`
}

type RemoteConfig struct {
	Timeout time.Duration `default:"5s"`
}

type LogConfig struct {
	Level  string `default:"info"`
	Format string `default:"json"`
}

func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if _, err := time.LoadLocation(cfg.Store.Timezone); err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Store.Timezone, err)
	}

	return cfg, nil
}

// Location returns the timezone order dates are rendered and filtered in.
func (c StoreConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
