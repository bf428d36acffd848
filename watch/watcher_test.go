package watch

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

	"github.com/teranos/logifact/errors"
)

type counter struct{ n atomic.Int32 }

func (c *counter) run(context.Context) error {
	c.n.Add(1)
	return nil
}

func start(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
}

func TestWatchFileDebounces(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(model, []byte("packages: []\n"), 0644))

	var c counter
	w, err := New(c.run, 100*time.Millisecond, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	require.NoError(t, w.AddFile(model))
	start(t, w)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(model, []byte("packages: []\n# edit\n"), 0644))
	}
	assert.Eventually(t, func() bool { return c.n.Load() == 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), c.n.Load())
}

func TestWatchFileIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(model, []byte("{}"), 0644))

	var c counter
	w, err := New(c.run, 20*time.Millisecond, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	require.NoError(t, w.AddFile(model))
	start(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), c.n.Load())
}

func TestWatchTreePicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "facts")
	require.NoError(t, os.MkdirAll(out, 0755))

	var c counter
	w, err := New(c.run, 20*time.Millisecond, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	require.NoError(t, w.AddTree(root, GoSource, out))
	start(t, w)

	// output and non-Go files do not trigger
	require.NoError(t, os.WriteFile(filepath.Join(out, "x.go"), []byte("package x\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("hi"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), c.n.Load())

	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.MkdirAll(sub, 0755))
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(sub, "a.go"), []byte("package pkg\n"), 0644)
		return c.n.Load() >= 1
	}, 3*time.Second, 100*time.Millisecond)
}

func TestRunErrorsKeepWatching(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "m.toml")
	require.NoError(t, os.WriteFile(model, nil, 0644))

	var calls atomic.Int32
	w, err := New(func(context.Context) error {
		calls.Add(1)
		return errors.New("bad model")
	}, 20*time.Millisecond, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	require.NoError(t, w.AddFile(model))
	start(t, w)

	require.NoError(t, os.WriteFile(model, []byte("a = 1\n"), 0644))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 3*time.Second, 20*time.Millisecond)
	require.NoError(t, os.WriteFile(model, []byte("a = 2\n"), 0644))
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, 3*time.Second, 20*time.Millisecond)
}

func TestRunStopsOnCancel(t *testing.T) {
	w, err := New(func(context.Context) error { return nil }, 0, nil)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, DefaultDebounce, w.debounce)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx), context.Canceled)
}

func TestMatchers(t *testing.T) {
	assert.True(t, GoSource("/a/b/main.go"))
	assert.True(t, GoSource("/a/go.mod"))
	assert.False(t, GoSource("/a/main_test.go"))
	assert.False(t, GoSource("/a/go.sum"))

	for name, want := range map[string]bool{
		"model.yaml~": true, ".model.yaml.swp": true, "config.toml.back2": true,
		".#model.json": true, "model.yaml": false, "background.json": false,
	} {
		assert.Equal(t, want, isBackupFile(name), name)
	}
}
