package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Invoice OCR Prototype"`
		Port int    `envconfig:"PORT" default:"8000"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"invoice_ocr"`
	}

	// API is the backend the review client talks to.
	API struct {
		BaseURL string        `envconfig:"API_BASE_URL" default:"http://127.0.0.1:8000"`
		Timeout time.Duration `envconfig:"API_TIMEOUT" default:"30s"`
	}

	// OCR is the external extraction service. With no URL configured the
	// server stores submissions without extraction.
	OCR struct {
		URL     string        `envconfig:"OCR_URL"`
		Engine  string        `envconfig:"OCR_ENGINE" default:"microsoft/trocr-base-handwritten"`
		Timeout time.Duration `envconfig:"OCR_TIMEOUT" default:"60s"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
