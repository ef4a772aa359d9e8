package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root, pattern string, handled chan<- string) *WatchWorker {
	t.Helper()
	w := NewWatchWorker(WatchConfig{
		Root:    root,
		Pattern: pattern,
		Settle:  30 * time.Millisecond,
		Handle: func(ctx context.Context, p string) error {
			handled <- p
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer stopCancel()
		_ = w.Stop(stopCtx)
		cancel()
	})
	return w
}

func TestWatchWorker_HandlesMatchingFiles(t *testing.T) {
	root := t.TempDir()
	handled := make(chan string, 4)
	w := startWatcher(t, root, "**/*.ODF", handled)

	require.Eventually(t, w.Active, time.Second, 10*time.Millisecond)

	target := filepath.Join(root, "CTD_1.ODF")
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("skip"), 0644))
	require.NoError(t, os.WriteFile(target, []byte(fixture), 0644))

	select {
	case p := <-handled:
		assert.Equal(t, target, p)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for handler")
	}

	select {
	case p := <-handled:
		t.Fatalf("unexpected second handler call for %s", p)
	case <-time.After(150 * time.Millisecond):
	}

	state := w.Introspect().State().(WatcherState)
	assert.Equal(t, 1, state.Handled)
	assert.Equal(t, "**/*.ODF", state.Pattern)
}

func TestWatchWorker_NewSubdirectories(t *testing.T) {
	root := t.TempDir()
	handled := make(chan string, 4)
	w := startWatcher(t, root, "**/*.ODF", handled)
	require.Eventually(t, w.Active, time.Second, 10*time.Millisecond)

	sub := filepath.Join(root, "2020")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(sub, "CTD_2.ODF")
	require.NoError(t, os.WriteFile(target, []byte(fixture), 0644))

	select {
	case p := <-handled:
		assert.Equal(t, target, p)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for handler in subdirectory")
	}
}

func TestWatchWorker_InvalidConfig(t *testing.T) {
	w := NewWatchWorker(WatchConfig{Root: t.TempDir()})
	assert.Error(t, w.Start(context.Background()), "missing handler")

	w = NewWatchWorker(WatchConfig{
		Root:    t.TempDir(),
		Pattern: "[",
		Handle:  func(context.Context, string) error { return nil },
	})
	assert.Error(t, w.Start(context.Background()), "bad pattern")
}

func TestDebouncer(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.add("a", func() { calls.Add(1) })
	}
	d.add("b", func() { calls.Add(1) })

	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	d.add("c", func() { calls.Add(1) })
	d.stopAndWait(time.Second)
	d.add("d", func() { calls.Add(1) })
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}
