package library

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0660))
}

func TestScanMultiPartLibraryWithDedup(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "photos")
	part2 := filepath.Join(parent, "photos2")
	other := filepath.Join(parent, "unrelated")
	for _, d := range []string{root, part2, other} {
		require.NoError(t, os.Mkdir(d, 0770))
	}

	touch(t, filepath.Join(root, "a.jpg"))
	touch(t, filepath.Join(root, "b.JPEG"))
	touch(t, filepath.Join(root, "c.png"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(part2, "d.jpg"))
	touch(t, filepath.Join(other, "e.jpg"))

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 4)
	for _, f := range files {
		require.NotContains(t, f, "unrelated")
		require.NotContains(t, f, "notes")
	}
}

func TestPickNewEmptyLibrary(t *testing.T) {
	s := NewSelector(t.TempDir())
	_, err := s.PickNew(NewHistory(0), false)
	require.ErrorIs(t, err, ErrNoImagesFound)
}

func TestPickNewRepeatAvoidance(t *testing.T) {
	dir := t.TempDir()
	const m = 24
	for i := 0; i < m; i++ {
		touch(t, filepath.Join(dir, fmt.Sprintf("img%02d.jpg", i)))
	}

	s := NewSelector(dir)
	h := NewHistory(0)
	window := m / 3

	const trials = 300
	repeats := 0
	for i := 0; i < trials; i++ {
		pick, err := s.PickNew(h, false)
		require.NoError(t, err)
		if h.RecentContains(pick, window) {
			repeats++
		}
		h.Append(pick)
	}

	// statistical, retries are bounded so repeats are possible but rare
	require.LessOrEqual(t, repeats, trials/10)
}

func TestPickNewEditModePrefersUntagged(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "tagged.jpg"))
	touch(t, filepath.Join(dir, "tagged.jpg.clockpos.txt"))
	touch(t, filepath.Join(dir, "fresh.jpg"))

	s := NewSelector(dir)
	s.SidecarSuffix = ".clockpos.txt"

	h := NewHistory(0)
	for i := 0; i < 20; i++ {
		pick, err := s.PickNew(h, true)
		require.NoError(t, err)
		require.Equal(t, filepath.Join(dir, "fresh.jpg"), pick)
	}
}
