package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sample = `
app:
  service_name: taskhub
database:
  user: taskhub
  password: secret
  name: taskhub
broker:
  driver: kafka
  kafka:
    brokers: ["localhost:9092"]
publisher:
  name: main
  poll_interval: 500ms
subscribers:
  notification:
    name: notification-projector
    enabled: true
    worker_count: 4
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfigFromFile(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "kafka", cfg.Broker.Driver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Broker.Kafka.Brokers)
	assert.Equal(t, 500*time.Millisecond, cfg.Publisher.PollInterval)
	assert.Equal(t, "lock:outbox:main", cfg.Publisher.LockKey)
	assert.Equal(t, 4, cfg.Subscribers.Notification.WorkerCount)
	assert.True(t, cfg.Subscribers.Notification.Enabled)
	assert.False(t, cfg.Subscribers.Audit.Enabled)

	// defaults
	assert.Equal(t, "taskhub.events", cfg.Broker.Topic)
	assert.Equal(t, 1000, cfg.Publisher.BatchSize)
	assert.Equal(t, uint32(5), cfg.Publisher.Breaker.ConsecutiveFails)
	assert.Equal(t, 60*time.Second, cfg.Realtime.PongWait)
}

func TestLoadConfigFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("BROKER_DRIVER", "rabbitmq")
	t.Setenv("DB_PASSWORD", "from-env")

	cfg, err := LoadConfigFromFile(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "rabbitmq", cfg.Broker.Driver)
	assert.Equal(t, "from-env", cfg.Database.Password)
}

func TestLoadConfigFromFile_Missing(t *testing.T) {
	_, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestRedacted(t *testing.T) {
	cfg, err := LoadConfigFromFile(writeConfig(t, sample))
	require.NoError(t, err)

	data, err := yaml.Marshal(cfg.redacted())
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret")
	assert.Equal(t, "secret", cfg.Database.Password)
}
