package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "api", cfg.App.APIPath)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Reservation.HoldWindow)
	assert.True(t, cfg.Reservation.Transactional)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, "ticketing.reservations", cfg.RabbitMQ.Exchange)
	assert.Len(t, cfg.Kafka.AllTopics(), 4)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("API_PATH", "/v2/")
	t.Setenv("APP_URL", "https://tickets.example.com/")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("RESERVATION_HOLD_MINUTES", "5")
	t.Setenv("RESERVATION_TRANSACTIONAL", "false")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("RABBITMQ_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "v2", cfg.App.APIPath)
	assert.Equal(t, "https://tickets.example.com", cfg.App.AppURL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Reservation.HoldWindow)
	assert.False(t, cfg.Reservation.Transactional)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.RabbitMQ.Enabled)
}
