package frame

import (
	"image"

	"github.com/disintegration/imaging"
)

// Pair couples a full-resolution frame with its downscaled copy. The small
// copy is what gets blended frame by frame during transitions, the full copy
// is only shown at steady state. Both are always produced together.
type Pair struct {
	Full  *image.NRGBA
	Small *image.NRGBA
}

// Transition is a finite sequence of pre-blended frames forming a monotonic
// alpha ramp between two pairs. The first frame is the source at full
// resolution, the intermediate frames are blends of the small copies, the
// last frame is the destination at full resolution.
type Transition struct {
	Frames []image.Image
	Dest   *Pair
	Path   string
}

// Clone shares the (immutable) frame images but copies the slice, so the
// clone can be consumed independently.
func (t *Transition) Clone() *Transition {
	frames := make([]image.Image, len(t.Frames))
	copy(frames, t.Frames)
	return &Transition{Frames: frames, Dest: t.Dest, Path: t.Path}
}

// NewBlack returns an opaque black frame of the given size.
func NewBlack(width, height int) *image.NRGBA {
	return imaging.New(width, height, blackColor)
}
