package frame

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/sirupsen/logrus"
)

var blackColor = color.NRGBA{0, 0, 0, 255}

// ErrTooLarge reports an image whose decoded size would exceed the loader's
// pixel budget. The caller degrades to a placeholder frame instead of risking
// an allocation failure on constrained hardware.
var ErrTooLarge = errors.New("image exceeds pixel budget")

// CorrectFunc applies per-image color correction. The source path is used to
// locate the sidecar file holding the corrections.
type CorrectFunc func(img image.Image, srcPath string) image.Image

// Loader reads image files into display-sized pairs, applying aspect-fit
// letterboxing and an optional blurred-border fill.
type Loader struct {
	Width      int
	Height     int
	SmallDiv   int
	BlurBorder float64
	MaxPixels  int64
	Correct    CorrectFunc
}

func NewLoader(width, height, smallDiv int, blurBorder float64, maxPixels int64, correct CorrectFunc) *Loader {
	if smallDiv < 1 {
		smallDiv = 1
	}
	return &Loader{
		Width:      width,
		Height:     height,
		SmallDiv:   smallDiv,
		BlurBorder: blurBorder,
		MaxPixels:  maxPixels,
		Correct:    correct,
	}
}

func (l *Loader) SmallSize() (int, int) {
	return int(math.Round(float64(l.Width) / float64(l.SmallDiv))),
		int(math.Round(float64(l.Height) / float64(l.SmallDiv)))
}

// Blank returns an opaque black pair at display size.
func (l *Loader) Blank() *Pair {
	sw, sh := l.SmallSize()
	return &Pair{
		Full:  NewBlack(l.Width, l.Height),
		Small: NewBlack(sw, sh),
	}
}

// Placeholder returns a minimal frame pair used when a full-resolution
// allocation is refused. 16x9 pixels is enough for the display surface to
// stretch over the screen without a visible crash.
func (l *Loader) Placeholder() *Pair {
	tiny := NewBlack(16, 9)
	return &Pair{Full: tiny, Small: tiny}
}

// Load reads a file into a display-sized pair. A nil error means both frames
// of the pair are usable; any decoding or size problem comes back as an error
// so the caller can drop the candidate and continue.
func (l *Loader) Load(path string) (*Pair, error) {
	if err := l.checkBudget(path); err != nil {
		return nil, err
	}

	img, err := openImage(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	logrus.Debugf("img open \"%s\" (%d , %d)", path, bounds.Dx(), bounds.Dy())

	if l.Correct != nil {
		img = l.Correct(img, path)
	}

	full := l.compose(img)
	sw, sh := l.SmallSize()
	small := imaging.Clone(resize.Resize(uint(sw), uint(sh), full, resize.Bilinear))
	return &Pair{Full: full, Small: small}, nil
}

func (l *Loader) checkBudget(path string) error {
	if l.MaxPixels <= 0 {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return err
	}
	if int64(cfg.Width)*int64(cfg.Height) > l.MaxPixels {
		return fmt.Errorf("%w: %s is %dx%d", ErrTooLarge, path, cfg.Width, cfg.Height)
	}
	return nil
}

// openImage shields the caller from panics in third-party decoders; a corrupt
// file must only ever cost us one candidate.
func openImage(path string) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = fmt.Errorf("panic decoding %s: %v", path, r)
		}
	}()
	return imaging.Open(path, imaging.AutoOrientation(true))
}

// compose letterboxes the image onto a display-sized canvas. When the
// letterbox bars are narrow enough, the canvas is filled with a blurred,
// dimmed copy of the image instead of plain black.
func (l *Loader) compose(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	imgAspect := float64(bounds.Dx()) / float64(bounds.Dy())
	screenAspect := float64(l.Width) / float64(l.Height)

	canvas := NewBlack(l.Width, l.Height)

	if imgAspect >= screenAspect {
		dstHeight := int(math.Round(float64(bounds.Dy()) * float64(l.Width) / float64(bounds.Dx())))
		topOffset := (l.Height - dstHeight) / 2
		fitted := imaging.Resize(img, l.Width, dstHeight, imaging.Lanczos)
		if l.BlurBorder > 0 && topOffset < dstHeight/3 {
			canvas = l.blurFill(canvas, fitted, image.Pt(0, 0), image.Pt(0, l.Height-dstHeight))
		}
		return imaging.Paste(canvas, fitted, image.Pt(0, topOffset))
	}

	dstWidth := int(math.Round(float64(bounds.Dx()) * float64(l.Height) / float64(bounds.Dy())))
	leftOffset := (l.Width - dstWidth) / 2
	fitted := imaging.Resize(img, dstWidth, l.Height, imaging.Lanczos)
	if l.BlurBorder > 0 && leftOffset < dstWidth/3 {
		canvas = l.blurFill(canvas, fitted, image.Pt(0, 0), image.Pt(l.Width-dstWidth, 0))
	}
	return imaging.Paste(canvas, fitted, image.Pt(leftOffset, 0))
}

func (l *Loader) blurFill(canvas, fitted *image.NRGBA, posA, posB image.Point) *image.NRGBA {
	canvas = imaging.Paste(canvas, fitted, posA)
	canvas = imaging.Paste(canvas, fitted, posB)
	canvas = imaging.Blur(canvas, 20)
	return dim(canvas, l.BlurBorder)
}

// dim multiplies every color channel by factor in place.
func dim(img *image.NRGBA, factor float64) *image.NRGBA {
	var lut [256]uint8
	for i := 0; i < 256; i++ {
		lut[i] = uint8(math.Min(255, math.Round(float64(i)*factor)))
	}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = lut[img.Pix[i]]
		img.Pix[i+1] = lut[img.Pix[i+1]]
		img.Pix[i+2] = lut[img.Pix[i+2]]
	}
	return img
}
