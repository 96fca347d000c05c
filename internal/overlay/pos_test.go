package overlay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPosRoundTrip(t *testing.T) {
	img := filepath.Join(t.TempDir(), "photo.jpg")

	p := Pos{X: 100, Y: 200, Placement: 0x80 | 3, FontIndex: 2, ShadowOffset: 8}
	require.NoError(t, p.Save(img))

	got := LoadPos(img)
	require.Equal(t, p, got)
	require.Equal(t, 3, got.Corner())
	require.True(t, got.CompactDate())
}

func TestLoadPosMissingSidecar(t *testing.T) {
	img := filepath.Join(t.TempDir(), "photo.jpg")
	require.Equal(t, Pos{}, LoadPos(img))
}

func TestLoadPosCorruptSidecar(t *testing.T) {
	img := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(img+PosFileSuffix, []byte("12 banana 3 4 5"), 0660))
	require.Equal(t, Pos{}, LoadPos(img))

	require.NoError(t, os.WriteFile(img+PosFileSuffix, []byte("12"), 0660))
	require.Equal(t, Pos{}, LoadPos(img))
}

func TestLoadPosShortSidecar(t *testing.T) {
	img := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(img+PosFileSuffix, []byte("12 34"), 0660))
	require.Equal(t, Pos{X: 12, Y: 34}, LoadPos(img))
}

func TestNextCornerCycle(t *testing.T) {
	p := Pos{Placement: 1}
	var seen []int
	for i := 0; i < 12; i++ {
		seen = append(seen, p.Corner())
		p = p.NextCorner()
	}
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 19, 16, 13}, seen)
	require.Equal(t, 1, p.Corner())
}

func TestNextCornerFromZeroAndUnknown(t *testing.T) {
	require.Equal(t, 8, Pos{}.NextCorner().Corner())
	require.Equal(t, 7, Pos{Placement: 42}.NextCorner().Corner())
}

func TestNextCornerKeepsCompactFlag(t *testing.T) {
	p := Pos{Placement: 0x80 | 5}
	p = p.NextCorner()
	require.True(t, p.CompactDate())
	require.Equal(t, 6, p.Corner())
}

func TestToggleCompact(t *testing.T) {
	p := Pos{Placement: 5}
	p = p.ToggleCompact()
	require.True(t, p.CompactDate())
	require.Equal(t, 5, p.Corner())
	p = p.ToggleCompact()
	require.False(t, p.CompactDate())
}

func TestNextShadowCycle(t *testing.T) {
	p := Pos{}
	var seen []int
	for i := 0; i < 4; i++ {
		p = p.NextShadow()
		seen = append(seen, p.ShadowOffset)
	}
	require.Equal(t, []int{4, 8, 12, 0}, seen)
}

func TestNextFontWraps(t *testing.T) {
	p := Pos{FontIndex: 3}
	require.Equal(t, 0, p.NextFont(4).FontIndex)
	require.Equal(t, 3, p.NextFont(0).FontIndex)
}
