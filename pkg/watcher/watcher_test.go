package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func startWatcher(t *testing.T, files []string, callback func(string)) *FileWatcher {
	t.Helper()
	fw, err := NewFileWatcher(50*time.Millisecond, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, fw.Watch(files, callback))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = fw.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = fw.Close()
	})
	return fw
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.step")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	var calls atomic.Int32
	changed := make(chan string, 10)
	startWatcher(t, []string{path}, func(p string) {
		calls.Add(1)
		changed <- p
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	}

	select {
	case got := <-changed:
		want, err := filepath.Abs(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcherSeesAtomicSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.step")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	changed := make(chan string, 10)
	startWatcher(t, []string{path}, func(p string) { changed <- p })

	tmp := filepath.Join(dir, "part.step.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("v2"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification after rename")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.step")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	changed := make(chan string, 10)
	startWatcher(t, []string{path}, func(p string) { changed <- p })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.step"), []byte("x"), 0o644))

	select {
	case p := <-changed:
		t.Fatalf("unexpected notification for %s", p)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherRemoveAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.step")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	fw, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	require.NoError(t, fw.Watch([]string{path, path}, func(string) {}))
	assert.Len(t, fw.callbacks, 1)
	require.NoError(t, fw.RemoveAll())
	assert.Empty(t, fw.callbacks)
	assert.Empty(t, fw.dirs)
}

func TestWatchMissingDirectory(t *testing.T) {
	fw, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	assert.Error(t, fw.Watch([]string{filepath.Join(t.TempDir(), "nope", "part.step")}, func(string) {}))
}
