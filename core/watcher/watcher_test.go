package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"enchlib/core/tables"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReloader struct {
	calls atomic.Int32
	err   error
}

func (r *countingReloader) Reload() (*tables.Snapshot, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return tables.NewSnapshot(), nil
}

func startWatcher(t *testing.T, r Reloader, debounce time.Duration) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "enchlib")
	w, err := New(dir, tables.Files(), r, debounce, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, w.Start(ctx))
	return dir
}

func TestWatcher_ReloadsOnTrackedFile(t *testing.T) {
	r := &countingReloader{}
	dir := startWatcher(t, r, 100*time.Millisecond)

	path := filepath.Join(dir, "AviableEnch.config")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("m:a=true\n"), 0o644))
	}

	assert.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	r := &countingReloader{}
	dir := startWatcher(t, r, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AviableEnch.config.tmp"), []byte("x"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), r.calls.Load())
}

func TestWatcher_ReloadErrorKeepsRunning(t *testing.T) {
	r := &countingReloader{err: errors.New("bad disk")}
	dir := startWatcher(t, r, 10*time.Millisecond)

	path := filepath.Join(dir, "EnchRarity.config")
	require.NoError(t, os.WriteFile(path, []byte("m:a=rare\n"), 0o644))
	assert.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("m:a=epic\n"), 0o644))
	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, 2*time.Second, 20*time.Millisecond)
}
