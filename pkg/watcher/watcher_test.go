package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSpawnEmitsDirtyOnFileWrite(t *testing.T) {
	root := t.TempDir()
	h := Spawn(root, DefaultConfig)
	defer h.Stop()

	target := filepath.Join(root, "f.txt")
	require.NoError(t, os.WriteFile(target, []byte("hello"), 0o644))

	select {
	case evt := <-h.Events():
		require.Equal(t, Dirty, evt.Kind)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for an event")
	}
}

func TestStopClosesEventsChannel(t *testing.T) {
	root := t.TempDir()
	h := Spawn(root, Config{FallbackInitial: time.Millisecond, FallbackMax: time.Millisecond})
	h.Stop()

	_, ok := <-h.Events()
	require.False(t, ok)
}
