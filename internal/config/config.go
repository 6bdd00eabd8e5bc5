package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"orderboard/internal/domain"
)

// Config holds every application setting.
type Config struct {
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Sync     SyncConfig
	HTTP     HTTPConfig
	LogLevel string `env:"LOG_LEVEL"`
}

type DatabaseConfig struct {
	URL            string        `env:"DATABASE_URL"`
	MaxConns       int           `env:"DB_MAX_CONNS"`
	ConnectRetries int           `env:"DB_CONNECT_RETRIES"`
	RetryDelay     time.Duration `env:"DB_RETRY_DELAY"`
}

type RabbitMQConfig struct {
	URL      string `env:"RABBITMQ_URL"`
	Exchange string `env:"NOTIFY_EXCHANGE"`
}

type SyncConfig struct {
	APIURL       string        `env:"ORDERBOARD_API_URL"`
	PollInterval time.Duration `env:"POLL_INTERVAL"`
	OrderWindow  time.Duration `env:"ORDER_WINDOW"`
}

type HTTPConfig struct {
	Port          int `env:"PORT"`
	MaxConcurrent int `env:"HTTP_MAX_CONCURRENT"`
}

// Defaults returns the built-in settings.
func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{MaxConns: 10, ConnectRetries: 10, RetryDelay: 2 * time.Second},
		RabbitMQ: RabbitMQConfig{Exchange: "notifications_fanout"},
		Sync:     SyncConfig{PollInterval: 10 * time.Second, OrderWindow: domain.DefaultOrderWindow},
		HTTP:     HTTPConfig{Port: 3000, MaxConcurrent: 50},
		LogLevel: "info",
	}
}

// Load applies defaults, then the optional file at path, then the environment.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Sync.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", cfg.Sync.PollInterval)
	}
	if cfg.Sync.OrderWindow <= 0 {
		return nil, fmt.Errorf("order window must be positive, got %s", cfg.Sync.OrderWindow)
	}
	return cfg, nil
}

// loadFile reads a two-level "section:\n  key: value" file.
func (cfg *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var section string
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasSuffix(line, ":") && !strings.HasPrefix(raw, " ") && !strings.HasPrefix(raw, "\t") {
			section = strings.TrimSuffix(line, ":")
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		if err := cfg.assign(section, key, value); err != nil {
			return fmt.Errorf("config line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

func (cfg *Config) assign(section, key, value string) error {
	var err error
	switch section {
	case "database":
		switch key {
		case "url":
			cfg.Database.URL = value
		case "max_conns":
			cfg.Database.MaxConns, err = strconv.Atoi(value)
		case "connect_retries":
			cfg.Database.ConnectRetries, err = strconv.Atoi(value)
		case "retry_delay":
			cfg.Database.RetryDelay, err = time.ParseDuration(value)
		}
	case "rabbitmq":
		switch key {
		case "url":
			cfg.RabbitMQ.URL = value
		case "exchange":
			cfg.RabbitMQ.Exchange = value
		}
	case "sync":
		switch key {
		case "api_url":
			cfg.Sync.APIURL = value
		case "poll_interval":
			cfg.Sync.PollInterval, err = time.ParseDuration(value)
		case "order_window":
			cfg.Sync.OrderWindow, err = time.ParseDuration(value)
		}
	case "http":
		switch key {
		case "port":
			cfg.HTTP.Port, err = strconv.Atoi(value)
		case "max_concurrent":
			cfg.HTTP.MaxConcurrent, err = strconv.Atoi(value)
		}
	case "log":
		if key == "level" {
			cfg.LogLevel = value
		}
	}
	if err != nil {
		return fmt.Errorf("%s.%s: %w", section, key, err)
	}
	return nil
}
