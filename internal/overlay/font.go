package overlay

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/bitmapfont/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// facePair is one clock style: a large face for the time, an optional
// smaller face for the date line, and the line spacing between them.
type facePair struct {
	timeFace font.Face
	dateFace font.Face
	spacing  int
}

// FontSet holds the clock style variants cycled by the edit-mode font key.
type FontSet struct {
	pairs []facePair
}

func (fs *FontSet) Len() int {
	return len(fs.pairs)
}

func (fs *FontSet) pair(index int) facePair {
	if len(fs.pairs) == 0 {
		return facePair{timeFace: bitmapfont.Face, dateFace: bitmapfont.Face}
	}
	return fs.pairs[index%len(fs.pairs)]
}

// LoadFonts builds the four clock variants (big and small, each with and
// without a date line) from the first TTF found under dir. Without a usable
// TTF the built-in bitmap face keeps the clock legible.
func LoadFonts(dir string) *FontSet {
	fs := &FontSet{}

	ttf := findTTF(dir)
	if ttf == nil {
		logrus.Warnf("no usable TTF font under %s, using built-in face", dir)
		fs.pairs = []facePair{{timeFace: bitmapfont.Face, dateFace: bitmapfont.Face}}
		return fs
	}

	fs.pairs = []facePair{
		fitFaces(ttf, 500, 500, 0.3, 0.1, 6),
		fitFaces(ttf, 300, 300, 0.4, 0.15, 6),
		fitFaces(ttf, 500, 500, 0, 0, 6),
		fitFaces(ttf, 300, 300, 0, 0, 6),
	}
	return fs
}

func findTTF(dir string) *opentype.Font {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".ttf") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		parsed, err := opentype.Parse(raw)
		if err != nil {
			logrus.Warnf("unable to parse font %s: %v", entry.Name(), err)
			continue
		}
		logrus.Infof("clock font: %s", entry.Name())
		return parsed
	}
	return nil
}

// fitFaces sizes the time face down from mainSize until the stacked time and
// date lines fit within maxHeight pixels.
func fitFaces(ttf *opentype.Font, mainSize, maxHeight float64, dateScale, lineSpace float64, margin int) facePair {
	for size := mainSize; size > 8; size -= 8 {
		timeFace, err := newFace(ttf, size)
		if err != nil {
			break
		}
		var dateFace font.Face
		spacing := 0
		dateHeight := 0
		if dateScale > 0 {
			dateFace, err = newFace(ttf, size*dateScale)
			if err != nil {
				break
			}
			dateHeight = faceHeight(dateFace)
			spacing = int(math.Round(float64(faceHeight(timeFace)) * lineSpace))
		}
		total := faceHeight(timeFace) + spacing + dateHeight + margin*2
		if float64(total) <= maxHeight {
			return facePair{timeFace: timeFace, dateFace: dateFace, spacing: spacing}
		}
	}
	fallbackDate := font.Face(nil)
	if dateScale > 0 {
		fallbackDate = bitmapfont.Face
	}
	return facePair{timeFace: bitmapfont.Face, dateFace: fallbackDate}
}

func newFace(ttf *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(ttf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func faceHeight(face font.Face) int {
	metrics := face.Metrics()
	return metrics.Ascent.Round() + metrics.Descent.Round()
}
