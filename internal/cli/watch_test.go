package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWatchedFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"model/media.cue", true},
		{"model/media.yaml", true},
		{"model/media.yml", true},
		{"templates/struct.tpl", true},
		{"templates/boilerplate.txt", true},
		{"model/.media.yaml.swp", false},
		{"model/notes.txt", false},
		{"out/Types.types.h", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, watchedFile(tt.path), tt.path)
	}
}

func TestRelevantEvent(t *testing.T) {
	assert.True(t, relevantEvent(fsnotify.Event{Name: "a.yaml", Op: fsnotify.Write}))
	assert.True(t, relevantEvent(fsnotify.Event{Name: "a.yaml", Op: fsnotify.Remove}))
	assert.False(t, relevantEvent(fsnotify.Event{Name: "a.yaml", Op: fsnotify.Chmod}))
	assert.False(t, relevantEvent(fsnotify.Event{Name: "a.h", Op: fsnotify.Write}))
}

func TestNewWatcherDedupesDirectories(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(a, nil, 0o644))
	require.NoError(t, os.WriteFile(b, nil, 0o644))

	w, err := NewWatcher([]string{a, b, dir, filepath.Join(dir, "missing")}, 0, nil)
	require.NoError(t, err)
	defer w.watcher.Close()

	assert.Equal(t, []string{filepath.Clean(dir)}, w.Dirs())
}

func TestNewWatcherNothingToWatch(t *testing.T) {
	_, err := NewWatcher([]string{filepath.Join(t.TempDir(), "missing")}, 0, nil)
	assert.Error(t, err)
}

func TestWatcherDebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "media.yaml")
	require.NoError(t, os.WriteFile(model, []byte("a"), 0o644))

	w, err := NewWatcher([]string{dir}, 50*time.Millisecond, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) { calls.Add(1) })
	}()

	// Irrelevant file first, then a burst of writes to the model
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(model, []byte{byte('a' + i)}, 0o644))
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst collapses into one call")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
