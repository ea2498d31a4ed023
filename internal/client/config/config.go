// Package config загружает конфигурацию клиента grc.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./grc.yaml;
//  4. только ENV (cleanenv).
//
// Переменные окружения всегда перекрывают значения из файла.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultAPIURL адрес backend по умолчанию
const DefaultAPIURL = "http://localhost:8000/api"

// LocalConfigFile файл конфигурации в текущем каталоге
const LocalConfigFile = "grc.yaml"

// Драйверы локального хранилища
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	APIURL   string        `yaml:"api_url"   env:"GRC_API_URL"`
	LogLevel string        `yaml:"log_level" env:"GRC_LOG_LEVEL" env-default:"warn"`
	Storage  StorageConfig `yaml:"storage"`
	Timeout  time.Duration `yaml:"timeout"   env:"GRC_TIMEOUT"   env-default:"30s"`
}

// StorageConfig локальное хранилище токенов и настроек.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"GRC_STORAGE_DRIVER" env-default:"bolt"`
	Path   string `yaml:"path"   env:"GRC_STORAGE_PATH"   env-default:"grc-client.db"`
}

func Load(path string) (*Config, error) {
	var cfg Config

	read := func(p string) error {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		return nil
	}

	switch {
	// 1) --config
	case path != "":
		if err := read(path); err != nil {
			return nil, err
		}
	// 2) CONFIG_PATH
	case os.Getenv("CONFIG_PATH") != "":
		if err := read(os.Getenv("CONFIG_PATH")); err != nil {
			return nil, err
		}
	// 3) ./grc.yaml
	default:
		if _, err := os.Stat(LocalConfigFile); err == nil {
			if err := read(LocalConfigFile); err != nil {
				return nil, err
			}
		}
	}

	// 4) ENV поверх файла
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to overlay env: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults подставляет VITE_API_URL (имя переменной из web-сборки) и адрес по умолчанию
func (c *Config) applyDefaults() {
	if c.APIURL == "" {
		c.APIURL = os.Getenv("VITE_API_URL")
	}
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
}

// Validate проверяет значения после загрузки и после применения флагов
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverBolt, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q (want %s, %s or %s)",
			c.Storage.Driver, DriverBolt, DriverSQLite, DriverMemory)
	}
	if c.Storage.Driver != DriverMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage path is required for driver %q", c.Storage.Driver)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel уровень логирования; некорректное значение отсекает Validate
func (c *Config) SlogLevel() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel разбирает debug/info/warn/error
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
