package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriterPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.LogReservation("CREATE", 42, "reserved 2 seats")
	l.Warn("kafka", "publish skipped")

	out := buf.String()
	assert.Contains(t, out, "INFO  [RESERVATION] [CREATE] 42 - reserved 2 seats")
	assert.Contains(t, out, "WARN  [KAFKA      ] publish skipped")
	assert.Contains(t, out, "logger_test.go:")
}

func TestFormatJSONOutput(t *testing.T) {
	l := NewWithWriter(&bytes.Buffer{})
	out := l.formatJSONOutput(LogEntry{Timestamp: "2026-01-02T03:04:05.000Z", Level: "INFO", Category: "APP", Message: "hi"})
	assert.JSONEq(t, `{"timestamp":"2026-01-02T03:04:05.000Z","level":"INFO","category":"APP","message":"hi"}`, out)
}

func TestDomainHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.LogBroker("RABBITMQ", "PUBLISH", "ticket-selling.lifecycle", "reservation.created reservation 3")
	l.LogSchema("SEED", "Demo user and catalog inserted")
	l.LogRateLimited("POST", "/api/reservations", "10.0.0.1:5000")

	out := buf.String()
	assert.Contains(t, out, "INFO  [RABBITMQ   ] [PUBLISH] ticket-selling.lifecycle - reservation.created reservation 3")
	assert.Contains(t, out, "INFO  [SCHEMA     ] [SEED] Demo user and catalog inserted")
	assert.Contains(t, out, "WARN  [RATE_LIMIT ] POST /api/reservations from 10.0.0.1:5000 shed")
}

func TestLevelNames(t *testing.T) {
	l := NewWithWriter(&bytes.Buffer{})
	assert.Equal(t, "FATAL", l.levelToString(FATAL))
	assert.Equal(t, "INFO", l.levelToString(LogLevel(42)))
	assert.Equal(t, "WARN", styleOf("WARN").name)
	assert.Equal(t, "INFO", styleOf("TRACE").name)
}
