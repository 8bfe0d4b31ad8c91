package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewValidation(t *testing.T) {
	_, err := New([]string{t.TempDir()}, 0, nil)
	assert.Error(t, err)

	_, err = New([]string{filepath.Join(t.TempDir(), "absent")}, 0, func([]string) {})
	assert.Error(t, err)
}

func TestWatcherBatchesHTMLChanges(t *testing.T) {
	dir := t.TempDir()

	batches := make(chan []string, 4)
	w, err := New([]string{dir}, 50*time.Millisecond, func(paths []string) {
		batches <- paths
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to arm before writing.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.html"), []byte("<p>b</p>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"), []byte("<p>a</p>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	select {
	case paths := <-batches:
		require.Len(t, paths, 2)
		assert.Equal(t, filepath.Join(dir, "a.html"), paths[0])
		assert.Equal(t, filepath.Join(dir, "b.html"), paths[1])
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change batch")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	dir := t.TempDir()

	batches := make(chan []string, 4)
	w, err := New([]string{dir}, 50*time.Millisecond, func(paths []string) {
		batches <- paths
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)

	sub := filepath.Join(dir, "pages")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Let the create event register the new directory before writing into it.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "new.html"), []byte("<p>n</p>"), 0644))

	select {
	case paths := <-batches:
		require.NotEmpty(t, paths)
		assert.Contains(t, paths, filepath.Join(sub, "new.html"))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change batch")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
