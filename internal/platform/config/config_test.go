package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, StoreFile, cfg.Model.Store)
	assert.Equal(t, 5, cfg.Model.Retention)
	assert.Equal(t, uint64(42), cfg.Model.Seed)
	assert.Equal(t, 2.0, cfg.Risk.HighBelow)
	assert.Equal(t, 3.5, cfg.Risk.MediumBelow)
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Server.RequireDeliveredOrder)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("GRAPHTRUST_ADDR", ":9090")
	t.Setenv("MODEL_STORE", "memory")
	t.Setenv("TRAIN_SEED", "7")
	t.Setenv("RISK_HIGH_BELOW", "1.5")
	t.Setenv("KAFKA_BROKERS", " a:9092, b:9092 ,a:9092,")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("REVIEW_REQUIRE_ORDER", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, StoreMemory, cfg.Model.Store)
	assert.Equal(t, uint64(7), cfg.Model.Seed)
	assert.Equal(t, 1.5, cfg.Risk.HighBelow)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Kafka.Enabled())
	assert.True(t, cfg.Server.RequireDeliveredOrder)
}

func TestFromEnvYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphtrust.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":7000"
  admin_token: from-file
model:
  store: memory
  retention: 3
risk:
  high_below: 1.0
  medium_below: 3.0
`), 0o600))
	t.Setenv("GRAPHTRUST_CONFIG", path)
	t.Setenv("ADMIN_API_TOKEN", "from-env")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "from-env", cfg.Server.AdminToken)
	assert.Equal(t, 3, cfg.Model.Retention)
	assert.Equal(t, 1.0, cfg.Risk.HighBelow)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unparseable number", map[string]string{"MODEL_RETENTION": "many"}},
		{"unknown store", map[string]string{"MODEL_STORE": "s3"}},
		{"redis store without url", map[string]string{"MODEL_STORE": "redis"}},
		{"postgres store without dsn", map[string]string{"MODEL_STORE": "postgres"}},
		{"inverted thresholds", map[string]string{"RISK_HIGH_BELOW": "4", "RISK_MEDIUM_BELOW": "3"}},
		{"unparseable bool", map[string]string{"REVIEW_REQUIRE_ORDER": "maybe"}},
		{"unknown log format", map[string]string{"LOG_FORMAT": "xml"}},
		{"missing config file", map[string]string{"GRAPHTRUST_CONFIG": "/nonexistent/graphtrust.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
