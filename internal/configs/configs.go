package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8081"`

	KIS2BaseURL  string        `env:"KIS2_BASE_URL" envDefault:"http://localhost:8000"`
	KIS2Username string        `env:"KIS2_USERNAME" envDefault:""`
	KIS2Password string        `env:"KIS2_PASSWORD" envDefault:""`
	KIS2Timeout  time.Duration `env:"KIS2_TIMEOUT" envDefault:"30s"`

	// Order moments are compared at this fixed UTC offset, matching the
	// timezone the legacy system stores its timestamps in.
	ImportCompareTZOffsetHours int `env:"IMPORT_COMPARE_TZ_OFFSET_HOURS" envDefault:"3"`

	KafkaBrokers     string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaImportTopic string `env:"KAFKA_IMPORT_TOPIC" envDefault:"kis3.import.triggers"`
	KafkaReportTopic string `env:"KAFKA_REPORT_TOPIC" envDefault:"kis3.import.reports"`
	KafkaGroupID     string `env:"KAFKA_GROUP_ID" envDefault:"kis3-importer"`

	DatabaseURL     string `env:"DATABASE_URL" envDefault:""`
	PostgresHost    string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort    string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser    string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPass    string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PostgresDB      string `env:"POSTGRES_DB" envDefault:"kis3"`
	PostgresSSLMode string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
}

func LoadConfig() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("config parse: %w", err)
	}
	return c, nil
}

func (c Config) KafkaBrokersSlice() []string {
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) PgDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPass,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}
