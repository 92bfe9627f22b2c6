package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 24*time.Hour, c.Chart.CacheTTL)
	assert.Equal(t, 50, c.Chart.BatchLimit)
	assert.Equal(t, "memory", c.Cache.Backend)
	assert.Equal(t, "celestial.chart.requests", c.Kafka.RequestsTopic)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
	assert.Equal(t, "/metrics", c.Metrics.Path)
	assert.False(t, c.Kafka.Enabled)
	assert.False(t, c.RedisRequired())
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
environment: production
server:
  port: 9090
chart:
  cache_ttl: 1h
cache:
  backend: redis
  redis:
    host: redis.internal
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, time.Hour, c.Chart.CacheTTL)
	assert.Equal(t, "redis.internal", c.Cache.Redis.Host)
	assert.Equal(t, 6379, c.Cache.Redis.Port)
	assert.True(t, c.RedisRequired())
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"bad backend":          "cache:\n  backend: disk\n",
		"kafka without broker": "kafka:\n  enabled: true\n",
		"collector no kafka":   "logging:\n  collector:\n    enabled: true\n",
		"queue on memory":      "queue:\n  enabled: true\n",
		"zero batch limit":     "chart:\n  batch_limit: 0\n",
		"port out of range":    "server:\n  port: 70000\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Parse(nil)
	require.NoError(t, err)

	env := map[string]string{
		"CELESTIAL_ENV":   "staging",
		"HTTP_PORT":       "8181",
		"REDIS_ADDR":      "cache:6380",
		"KAFKA_BROKERS":   "k1:9092,k2:9092",
		"CLICKHOUSE_HOST": "ch",
		"LOG_LEVEL":       "debug",
	}
	require.NoError(t, c.ApplyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, "staging", c.Environment)
	assert.Equal(t, 8181, c.Server.Port)
	assert.Equal(t, "cache", c.Cache.Redis.Host)
	assert.Equal(t, 6380, c.Cache.Redis.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.True(t, c.ClickHouse.Enabled)
	assert.Equal(t, "debug", c.Logging.Level)

	assert.Error(t, c.ApplyEnv(func(k string) string {
		if k == "HTTP_PORT" {
			return "http"
		}
		return ""
	}))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: test\nchart:\n  batch_workers: 8\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Chart.BatchWorkers)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
