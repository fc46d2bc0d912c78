package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_DeletionTriggersCallback(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "identitymap.db")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	fired := make(chan struct{}, 1)
	w, err := New(target, func() {
		fired <- struct{}{}
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.Remove(target))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("deletion callback did not fire")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "identitymap.db")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	w, err := New(target, func() {})
	require.NoError(t, err)
	require.NoError(t, w.Start())

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
