package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Renal37/number-lifecycle/internal/models"
	"github.com/Renal37/number-lifecycle/internal/services"
	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Endpoint       string        `yaml:"run_address" env:"RUN_ADDRESS"`
	RemoteEndpoint string        `yaml:"order_service_address" env:"ORDER_SERVICE_ADDRESS"`
	DSN            string        `yaml:"storage_dsn" env:"STORAGE_DSN"`
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL"`
	Env            string        `yaml:"env" env:"ENV"`
	AuthSecretKey  string        `yaml:"auth_secret_key" env:"AUTH_SECRET_KEY"`
	RemoteTimeout  time.Duration `yaml:"remote_timeout" env:"REMOTE_TIMEOUT"`

	// Routes переопределяет пути удалённого сервиса для отдельных вариантов.
	Routes map[models.Variant]services.Routes `yaml:"routes"`
}

func defaultConfig() Config {
	return Config{
		Endpoint:       "localhost:8090",
		RemoteEndpoint: "http://localhost:8080",
		DSN:            "data/numberpanel.db",
		LogLevel:       "info",
		Env:            "production",
		RemoteTimeout:  10 * time.Second,
	}
}

// NewConfig собирает конфигурацию: значения по умолчанию, затем YAML-файл (-c),
// затем флаги командной строки, затем переменные окружения.
func NewConfig(args []string) (Config, error) {
	config := defaultConfig()

	fs := flag.NewFlagSet("numberpanel", flag.ContinueOnError)

	var (
		endpoint       string
		remoteEndpoint string
		dsn            string
		configPath     string
	)

	fs.StringVar(&endpoint, "a", config.Endpoint, "address and port to run server")
	fs.StringVar(&remoteEndpoint, "r", config.RemoteEndpoint, "base URL of the remote order service")
	fs.StringVar(&dsn, "d", config.DSN, "storage DSN: postgres:// URL or SQLite file path")
	fs.StringVar(&configPath, "c", os.Getenv("CONFIG_PATH"), "path to YAML config file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			config.Endpoint = endpoint
		case "r":
			config.RemoteEndpoint = remoteEndpoint
		case "d":
			config.DSN = dsn
		}
	})

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	return config, nil
}
