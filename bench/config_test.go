package bench

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
name: smoke
workers: 4
seed: 42
timeout: 30s
log:
  level: info
  encoder: plaintext
metrics:
  exporter: console
  interval: 2s
cases:
  - container: map
    size: 1000
    useHint: true
  - name: dup-heavy
    container: Hash_MultiSet
    size: 2000
    keySpace: 10
    allocator: heap
    buckets: 100
`)
	cfg, err := ParseConfig(data)
	require.NoError(t, err)
	require.Equal(t, "smoke", cfg.Name)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, uint64(42), cfg.Seed)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.Equal(t, 2*time.Second, cfg.Metrics.Interval)
	require.Len(t, cfg.Cases, 2)

	c0 := cfg.Cases[0]
	require.Equal(t, MapKind, c0.Container)
	require.Equal(t, "map-1000#0", c0.Name)
	require.Equal(t, ArenaAllocator, c0.Allocator)
	require.Equal(t, defaultArenaChunk, c0.ArenaChunk)
	require.Equal(t, 1, c0.Rounds)
	require.True(t, c0.UseHint)

	c1 := cfg.Cases[1]
	require.Equal(t, HashMultiSetKind, c1.Container)
	require.Equal(t, "dup-heavy", c1.Name)
	require.Equal(t, HeapAllocator, c1.Allocator)
	require.Equal(t, uint64(100), c1.Buckets)
}

func TestParseConfigDefaultCases(t *testing.T) {
	cfg, err := ParseConfig([]byte("name: all\n"))
	require.NoError(t, err)
	require.Len(t, cfg.Cases, len(AllContainerKinds))
	for i, kind := range AllContainerKinds {
		require.Equal(t, kind, cfg.Cases[i].Container)
		require.Equal(t, defaultCaseSize, cfg.Cases[i].Size)
	}
	require.NotZero(t, cfg.Seed)
	require.Equal(t, defaultTimeout, cfg.Timeout)
}

func TestConfigValidate(t *testing.T) {
	_, err := ParseConfig([]byte(`
workers: -1
log:
  encoder: xml
metrics:
  exporter: statsd
cases:
  - name: a
    container: btree
  - name: a
    container: set
    size: -5
    keySpace: -1
    allocator: pool
    nodeLimit: -2
`))
	require.Error(t, err)
	require.Len(t, multierr.Errors(errorsCause(err)), 9)

	_, err = ParseConfig([]byte("cases: [oops"))
	require.Error(t, err)
}

func errorsCause(err error) error {
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok || u.Unwrap() == nil {
			return err
		}
		err = u.Unwrap()
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cases:\n  - container: set\n    size: 10\n"), 0o600))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Cases, 1)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, DefaultConfig().Validate())
}
