// Package config reads bot settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	TelegramToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramDebug bool   `env:"TELEGRAM_DEBUG" envDefault:"false"`

	VKToken   string `env:"VK_COMMUNITY_TOKEN"`
	VKGroupID int    `env:"VK_GROUP_ID"`

	QuestionsPath     string `env:"QUESTIONS_PATH" envDefault:"./questions"`
	QuestionsEncoding string `env:"QUESTIONS_ENCODING" envDefault:"koi8-r"`
	Dedup             bool   `env:"QUIZ_DEDUP" envDefault:"true"`
	Workers           int    `env:"WORKERS" envDefault:"16"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"redis"`
	Redis        Redis  `envPrefix:"REDIS_"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"quiz.db"`

	Log Log `envPrefix:"LOG_"`
}

type Redis struct {
	Host      string        `env:"HOST" envDefault:"0.0.0.0"`
	Port      int           `env:"PORT" envDefault:"6379"`
	Password  string        `env:"PASSWORD"`
	DB        int           `env:"DB" envDefault:"0"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"2s"`
	Retry     uint          `env:"RETRY" envDefault:"3"`
	KeyPrefix string        `env:"KEY_PREFIX"`
}

func (r Redis) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

type Log struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
	File   string `env:"FILE"`
}

// Load reads dotenvPath (skipped when it does not exist) and then the
// process environment. Variables already set win over the file.
func Load(dotenvPath string) (Config, error) {
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreBackend {
	case BackendRedis, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive, got %d", c.Workers)
	}
	return nil
}
