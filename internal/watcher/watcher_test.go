package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu       sync.Mutex
	created  []string
	modified []string
	deleted  []string
}

func (h *recordingHandler) OnCreated(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.created = append(h.created, path)
}

func (h *recordingHandler) OnModified(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.modified = append(h.modified, path)
}

func (h *recordingHandler) OnDeleted(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deleted = append(h.deleted, path)
}

func (h *recordingHandler) counts() (int, int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.created), len(h.modified), len(h.deleted)
}

type extFilter struct{ exts []string }

func (f extFilter) CanExtract(path string) bool {
	for _, ext := range f.exts {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func newTestWatcher(t *testing.T, h Handler, opts ...Option) *Watcher {
	t.Helper()
	w, err := New(h, extFilter{exts: []string{".txt", ".md"}}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() }) //nolint:errcheck
	return w
}

func TestDebounceCoalescesRapidEvents(t *testing.T) {
	h := &recordingHandler{}
	w := newTestWatcher(t, h, WithDebounce(50*time.Millisecond))

	// Five rapid writes to the same file collapse into one event.
	for i := 0; i < 5; i++ {
		w.record("/docs/a.txt", EventModified)
	}

	time.Sleep(150 * time.Millisecond)
	created, modified, deleted := h.counts()
	assert.Zero(t, created)
	assert.Equal(t, 1, modified)
	assert.Zero(t, deleted)
}

func TestDebounceLastEventWins(t *testing.T) {
	h := &recordingHandler{}
	w := newTestWatcher(t, h, WithDebounce(50*time.Millisecond))

	w.record("/docs/a.txt", EventCreated)
	w.record("/docs/a.txt", EventModified)
	w.record("/docs/a.txt", EventDeleted)

	time.Sleep(150 * time.Millisecond)
	created, modified, deleted := h.counts()
	assert.Zero(t, created)
	assert.Zero(t, modified)
	assert.Equal(t, 1, deleted)
}

func TestDebounceSeparatePathsAllDeliver(t *testing.T) {
	h := &recordingHandler{}
	w := newTestWatcher(t, h, WithDebounce(50*time.Millisecond))

	w.record("/docs/a.txt", EventCreated)
	w.record("/docs/b.txt", EventModified)
	w.record("/docs/c.md", EventDeleted)

	time.Sleep(150 * time.Millisecond)
	created, modified, deleted := h.counts()
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, modified)
	assert.Equal(t, 1, deleted)
}

func TestUnsupportedExtensionsDropped(t *testing.T) {
	h := &recordingHandler{}
	w := newTestWatcher(t, h, WithDebounce(30*time.Millisecond))

	w.record("/docs/image.png", EventCreated)
	w.record("/docs/binary.exe", EventModified)

	time.Sleep(100 * time.Millisecond)
	created, modified, _ := h.counts()
	assert.Zero(t, created)
	assert.Zero(t, modified)
}

func TestIgnorePatterns(t *testing.T) {
	h := &recordingHandler{}
	w := newTestWatcher(t, h,
		WithDebounce(30*time.Millisecond),
		WithIgnorePatterns([]string{".*", "*.tmp", "node_modules"}))

	t.Run("hidden files", func(t *testing.T) {
		assert.True(t, w.ignored("/docs/.hidden.txt"))
	})

	t.Run("pattern on file name", func(t *testing.T) {
		assert.True(t, w.ignored("/docs/scratch.tmp"))
	})

	t.Run("ancestor directory name", func(t *testing.T) {
		assert.True(t, w.ignored("/project/node_modules/pkg/readme.md"))
		assert.True(t, w.ignored("/project/.git/config.txt"))
	})

	t.Run("clean path passes", func(t *testing.T) {
		assert.False(t, w.ignored("/docs/notes.txt"))
	})

	t.Run("ignored events never deliver", func(t *testing.T) {
		w.record("/docs/.hidden.txt", EventCreated)
		time.Sleep(100 * time.Millisecond)
		created, _, _ := h.counts()
		assert.Zero(t, created)
	})
}

func TestStopDropsPending(t *testing.T) {
	h := &recordingHandler{}
	w, err := New(h, nil, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start(nil))

	w.record("/docs/a.txt", EventCreated)
	require.NoError(t, w.Stop())

	time.Sleep(120 * time.Millisecond)
	created, _, _ := h.counts()
	assert.Zero(t, created)

	t.Run("double stop errors", func(t *testing.T) {
		assert.Error(t, w.Stop())
	})
}

func TestWatcherEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("filesystem event timing")
	}

	dir := t.TempDir()
	h := &recordingHandler{}
	w, err := New(h, extFilter{exts: []string{".txt"}},
		WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start([]string{dir}))
	defer w.Stop() //nolint:errcheck

	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	assert.Eventually(t, func() bool {
		created, _, _ := h.counts()
		return created == 1
	}, 3*time.Second, 50*time.Millisecond, "create event should arrive")

	require.NoError(t, os.Remove(path))
	assert.Eventually(t, func() bool {
		_, _, deleted := h.counts()
		return deleted == 1
	}, 3*time.Second, 50*time.Millisecond, "delete event should arrive")
}
