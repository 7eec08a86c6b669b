package storage

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestBackends runs the same contract against every KV implementation.
func TestBackends(t *testing.T) {
	testCases := []struct {
		name string
		open func(t *testing.T) KV
	}{
		{name: "memory", open: func(t *testing.T) KV { return NewMemory() }},
		{name: "file", open: func(t *testing.T) KV {
			kv, err := Open(KindFile, t.TempDir())
			require.NoError(t, err)
			return kv
		}},
		{name: "sqlite", open: func(t *testing.T) KV {
			kv, err := Open(KindSQLite, t.TempDir())
			require.NoError(t, err)
			return kv
		}},
		{name: "file in missing dir", open: func(t *testing.T) KV {
			kv, err := Open(KindFile, filepath.Join(t.TempDir(), "fresh"))
			require.NoError(t, err)
			return kv
		}},
		{name: "sqlite in missing dir", open: func(t *testing.T) KV {
			kv, err := Open(KindSQLite, filepath.Join(t.TempDir(), "fresh", "nested"))
			require.NoError(t, err)
			return kv
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kv := tc.open(t)
			defer func() { assert.NoError(t, kv.Close()) }()

			_, ok, err := kv.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set("bookmarks", `[1]`))
			require.NoError(t, kv.Set("bookmarks", `[1,2]`))
			value, ok, err := kv.Get("bookmarks")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[1,2]`, value)
		})
	}
}

func TestOpen_UnknownKind(t *testing.T) {
	_, err := Open("redis", t.TempDir())
	assert.ErrorContains(t, err, "unknown storage kind")
}

func TestFileKV_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	require.NoError(t, err)

	require.NoError(t, kv.Set("slot", "value"))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "slot.json", entries[0].Name())
}

func TestFileKV_Watch(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	require.NoError(t, err)

	var calls atomic.Int32
	stop, err := kv.Watch("slot", 20*time.Millisecond, func() { calls.Add(1) }, zap.NewNop())
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("x"), 0o644))
	require.NoError(t, kv.Set("slot", "one"))
	require.NoError(t, kv.Set("slot", "two"))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}
