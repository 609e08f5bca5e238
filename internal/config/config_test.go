package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("ORDERS_TIMEZONE", "UTC")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.Orders.RequestTimeout)
	assert.Equal(t, time.UTC, cfg.Orders.Location)
	assert.Equal(t, "redis", cfg.Realtime.Driver)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, int64(10<<20), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, cfg.Database.WriterDSN, cfg.Database.ReaderDSN)
}

func TestNewOverrides(t *testing.T) {
	t.Setenv("ORDERS_TIMEZONE", "Asia/Riyadh")
	t.Setenv("ORDERS_REQUEST_TIMEOUT", "3s")
	t.Setenv("REALTIME_DRIVER", "Memory")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("MESSAGING_ENABLED", "false")
	t.Setenv("STORAGE_PUBLIC_BASE_URL", "https://cdn.example.com/")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "Asia/Riyadh", cfg.Orders.Location.String())
	assert.Equal(t, 3*time.Second, cfg.Orders.RequestTimeout)
	assert.Equal(t, "memory", cfg.Realtime.Driver)
	assert.Equal(t, "noop", cfg.Cache.Driver)
	assert.Equal(t, "noop", cfg.Messaging.Driver)
	assert.Equal(t, "https://cdn.example.com", cfg.Storage.PublicBaseURL)
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad timezone", "ORDERS_TIMEZONE", "Mars/Olympus"},
		{"bad realtime driver", "REALTIME_DRIVER", "nats"},
		{"bad storage driver", "STORAGE_DRIVER", "ftp"},
		{"s3 without bucket", "STORAGE_DRIVER", "s3"},
		{"bad http port", "HTTP_PORT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := New()
			assert.Error(t, err)
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_UPLOAD", "5MiB")
	t.Setenv("TEST_UPLOAD_PLAIN", "2048")
	t.Setenv("TEST_UPLOAD_BAD", "lots")
	t.Setenv("TEST_BROKERS", " a:9092, ,b:9092 ")
	t.Setenv("TEST_EMPTY_BROKERS", " , ")
	t.Setenv("TEST_PORT", "not-a-number")

	assert.Equal(t, int64(5<<20), getEnvAsBytes("TEST_UPLOAD", 1))
	assert.Equal(t, int64(2048), getEnvAsBytes("TEST_UPLOAD_PLAIN", 1))
	assert.Equal(t, int64(1), getEnvAsBytes("TEST_UPLOAD_BAD", 1))
	assert.Equal(t, []string{"a:9092", "b:9092"}, getEnvAsStringSlice("TEST_BROKERS", nil))
	assert.Equal(t, []string{"fallback"}, getEnvAsStringSlice("TEST_EMPTY_BROKERS", []string{"fallback"}))
	assert.Equal(t, 8080, getEnvAsInt("TEST_PORT", 8080))
	assert.Equal(t, time.Second, getEnvAsDuration("TEST_UNSET_DURATION", time.Second))
}

func TestNewAcceptsMemoryCache(t *testing.T) {
	t.Setenv("ORDERS_TIMEZONE", "UTC")
	t.Setenv("CACHE_DRIVER", "memory")
	t.Setenv("STORAGE_MAX_UPLOAD_BYTES", "2MB")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, int64(2_000_000), cfg.Storage.MaxUploadBytes)
}
