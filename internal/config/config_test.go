package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/adt/internal/cqueue"
	"github.com/roach88/adt/internal/objpool"
)

func TestParseEmptyGivesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
log:
  level: debug
  encoding: json
circular_queue:
  max_size: 4
  overwrite: true
object_pool:
  start_size: 2
  auto_increase: true
  increase_break_point: 0
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Encoding)
	assert.Equal(t, CircularQueueConfig{MaxSize: 4, Overwrite: true}, cfg.CircularQueue)
	assert.Equal(t, ObjectPoolConfig{
		StartSize:          2,
		MaxSize:            1000,
		AutoIncrease:       true,
		IncreaseBreakPoint: 0,
		IncreaseFactor:     2,
	}, cfg.ObjectPool)
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse([]byte("circular_queue:\n  capacity: 4\n"))
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestParseInvalidValues(t *testing.T) {
	_, err := Parse([]byte(`
circular_queue:
  max_size: 0
object_pool:
  increase_factor: 1
  increase_break_point: 2
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular_queue.max_size must be an integer >= 1")
	assert.Contains(t, err.Error(), "object_pool.increase_factor must be a number > 1")
	assert.Contains(t, err.Error(), "object_pool.increase_break_point must be a number between 0 and 1")
}

func TestParseCapacityLimit(t *testing.T) {
	_, err := Parse([]byte(`
circular_queue:
  max_size: 16777217
object_pool:
  max_size: 16777217
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular_queue.max_size must be an integer <= 16777216")
	assert.Contains(t, err.Error(), "object_pool.max_size must be an integer <= 16777216")
}

func TestSubstituteEnv(t *testing.T) {
	t.Setenv("ADT_TEST_SIZE", "12")
	t.Setenv("ADT_TEST_EMPTY", "")

	tests := []struct {
		in   string
		want string
	}{
		{"max_size: ${ADT_TEST_SIZE}", "max_size: 12"},
		{"max_size: ${ADT_TEST_UNSET_VAR:-7}", "max_size: 7"},
		{"max_size: ${ADT_TEST_EMPTY:-3}", "max_size: 3"},
		{"level: ${ADT_TEST_UNSET_VAR}", "level: "},
		{"literal $ADT_TEST_SIZE", "literal $ADT_TEST_SIZE"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SubstituteEnv(tt.in), tt.in)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("ADT_TEST_QUEUE_SIZE", "9")
	path := filepath.Join(t.TempDir(), "adt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("circular_queue:\n  max_size: ${ADT_TEST_QUEUE_SIZE}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.CircularQueue.MaxSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestOptionsBuildContainers(t *testing.T) {
	cfg := Default()
	cfg.CircularQueue = CircularQueueConfig{MaxSize: 3, Overwrite: true}
	cfg.ObjectPool.StartSize = 5

	q, err := cqueue.New[int](CircularQueueOptions[int](cfg.CircularQueue)...)
	require.NoError(t, err)
	assert.Equal(t, 3, q.MaxSize())
	assert.True(t, q.Overwrite())

	p, err := objpool.New(func(...any) int { return 0 }, cfg.ObjectPool.Options()...)
	require.NoError(t, err)
	assert.Equal(t, 5, p.ObjectCount())
}
