package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "query.yml")
	contents := `
loglevel: debug
logpath: stderr
index: /data/index.bin
codec: varbyte
blocksize: 128
redis:
  addr: localhost:6379
  db: 1
postgres:
  dsn: postgres://localhost/blockidx
kafka:
  brokers: ["localhost:9092"]
  topic: queries.executed
metrics_addr: ":9090"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", c.LogLevel)
	require.Equal(t, "/data/index.bin", c.IndexPath)
	require.Equal(t, "varbyte", c.Codec)
	require.Equal(t, uint32(128), c.BlockSize)
	require.Equal(t, "localhost:6379", c.Redis.Addr)
	require.Equal(t, 1, c.Redis.DB)
	require.Equal(t, "postgres://localhost/blockidx", c.Postgres.DSN)
	require.Equal(t, []string{"localhost:9092"}, c.Kafka.Brokers)
	require.Equal(t, "queries.executed", c.Kafka.Topic)
	require.Equal(t, ":9090", c.MetricsAddr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/query.yml")
	require.Error(t, err)
}
