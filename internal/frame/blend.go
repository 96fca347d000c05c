package frame

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
)

// Blend builds the alpha ramp from a to b with the given number of steps.
// The ramp starts at a.Full, walks through blends of the small copies and
// ends at b.Full. A cancelled context returns nil; a partial ramp must never
// escape.
func Blend(ctx context.Context, a, b *Pair, steps int) []image.Image {
	if steps < 2 {
		steps = 2
	}
	frames := make([]image.Image, 0, steps+1)
	frames = append(frames, a.Full)
	for i := 1; i < steps; i++ {
		if ctx.Err() != nil {
			return nil
		}
		alpha := float64(i) / float64(steps)
		frames = append(frames, imaging.Overlay(a.Small, b.Small, image.Pt(0, 0), alpha))
	}
	if ctx.Err() != nil {
		return nil
	}
	frames = append(frames, b.Full)
	return frames
}

// Darken divides every color channel of img so that alpha 0 is near black
// and alpha >= limit is the unmodified image. It drives the manual fade used
// when a precomputed transition is not ready.
func Darken(img *image.NRGBA, alpha, limit int) *image.NRGBA {
	if alpha >= limit {
		return img
	}
	if alpha < 0 {
		alpha = 0
	}
	div := limit - alpha
	if div <= 1 {
		return img
	}
	out := imaging.Clone(img)
	var lut [256]uint8
	for i := 0; i < 256; i++ {
		lut[i] = uint8(i / div)
	}
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] = lut[out.Pix[i]]
		out.Pix[i+1] = lut[out.Pix[i+1]]
		out.Pix[i+2] = lut[out.Pix[i+2]]
	}
	return out
}
