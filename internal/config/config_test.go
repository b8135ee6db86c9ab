package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, time.Hour, cfg.JWT.AccessExpiration)
	assert.Equal(t, uint64(3), cfg.Notification.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.Notification.RetryInterval)
	assert.True(t, cfg.Accrual.Enabled)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_MAX_CONNS", "10")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("NOTIFICATION_RETRY_INTERVAL", "1s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, time.Second, cfg.Notification.RetryInterval)
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/cmlabs-hris?sslmode=disable", cfg.DatabaseURL())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"APP_PORT": "http"}},
		{"bad duration", map[string]string{"JWT_ACCESS_EXPIRATION_TIME": "soon"}},
		{"bad retries", map[string]string{"NOTIFICATION_MAX_RETRIES": "-1"}},
		{"bad bool", map[string]string{"ACCRUAL_ENABLED": "maybe"}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}},
		{"postgres without password", map[string]string{"STORE_DRIVER": "postgres"}},
		{"missing secret", map[string]string{"JWT_SECRET_KEY": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("JWT_SECRET_KEY", "secret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
