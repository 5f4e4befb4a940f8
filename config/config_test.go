package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "database:\n  host: db\n  port: 5432\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 2.0, cfg.HTTP.VoucherRPS)
	assert.Equal(t, 5, cfg.HTTP.VoucherBurst)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 24*60, cfg.Booking.CartTTLMinutes)
	assert.Equal(t, 15, cfg.Booking.PaymentTTLMinutes)
	assert.Equal(t, "website", cfg.Booking.DefaultSource)
	assert.Equal(t, "hold_while_editing", cfg.Realtime.RefreshPolicy)
	assert.Equal(t, "vn", cfg.VNPay.Locale)
	assert.Equal(t, 1, cfg.Worker.ExpirationSweepMinutes)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FileValues(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
http:
  address: ":9090"
kafka:
  brokers: ["k1:9092", "k2:9092"]
  booking_events_topic: events
realtime:
  refresh_policy: last_write_wins
`))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "events", cfg.Kafka.BookingEventsTopic)
	assert.Equal(t, "last_write_wins", cfg.Realtime.RefreshPolicy)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_HOST", "pg.internal")
	t.Setenv("DATABASE_PORT", "6543")
	t.Setenv("KAFKA_BROKERS", "a:1,b:2")
	t.Setenv("VNPAY_HASH_SECRET", "secret")

	cfg, err := LoadConfig(writeConfig(t, "database:\n  host: db\n  port: 5432\n"))
	require.NoError(t, err)

	assert.Equal(t, "pg.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Kafka.Brokers)
	assert.Equal(t, "secret", cfg.VNPay.HashSecret)
	assert.Contains(t, cfg.Database.DSN(), "host=pg.internal port=6543")
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	_, err = LoadConfig(writeConfig(t, "http: [not, a, map"))
	assert.ErrorContains(t, err, "failed to parse config")
}
