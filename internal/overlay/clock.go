package overlay

import (
	"image"
	"image/color"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const ipOverlayDuration = 5 * time.Second

var (
	foreColor   = image.NewUniform(color.NRGBA{255, 255, 255, 255})
	borderColor = image.NewUniform(color.NRGBA{0, 0, 0, 255})
)

// Clock draws the time/date overlay for the current photo and owns the
// per-image placement while that photo is on screen. Edit operations mutate
// the placement and persist it immediately.
type Clock struct {
	fonts   *FontSet
	pos     Pos
	curPath string
	ipUntil time.Time
	ipText  func() string
}

// NewClock loads the font set from fontsDir. ipText supplies the transient
// host-IP overlay string on demand.
func NewClock(fontsDir string, ipText func() string) *Clock {
	return &Clock{fonts: LoadFonts(fontsDir), ipText: ipText}
}

// NewImage switches the overlay to the placement stored for path.
func (c *Clock) NewImage(path string) {
	logrus.Debugf("clock prep for %s", path)
	c.curPath = path
	if path != "" {
		c.pos = LoadPos(path)
	} else {
		c.pos = Pos{}
	}
}

// ShowIP opens the transient host-IP overlay window.
func (c *Clock) ShowIP() {
	c.ipUntil = time.Now().Add(ipOverlayDuration)
}

// Draw renders the overlay onto img in place.
func (c *Clock) Draw(img *image.NRGBA, now time.Time) {
	if now.Before(c.ipUntil) && c.ipText != nil {
		pair := c.fonts.pair(0)
		face := pair.dateFace
		if face == nil {
			face = pair.timeFace
		}
		c.drawLines(img, c.ipText(), "", face, nil, 0)
		return
	}
	pair := c.fonts.pair(c.pos.FontIndex)
	timeStr := now.Format("3:04")
	dateStr := ""
	if pair.dateFace != nil {
		if c.pos.CompactDate() {
			dateStr = now.Format("Mon, Jan 2")
		} else {
			dateStr = now.Format("Monday, January 2")
		}
	}
	c.drawLines(img, timeStr, dateStr, pair.timeFace, pair.dateFace, pair.spacing)
}

// drawLines lays out the two text lines around the anchor according to the
// numpad corner code and renders them with border and optional shadow.
func (c *Clock) drawLines(img *image.NRGBA, line1, line2 string, face1, face2 font.Face, spacing int) {
	w1, h1 := measure(face1, line1)
	w2, h2 := 0, 0
	if line2 != "" && face2 != nil {
		w2, h2 = measure(face2, line2)
	}
	totalWidth := w1
	if w2 > totalWidth {
		totalWidth = w2
	}
	totalHeight := h1
	if line2 != "" {
		totalHeight += h2 + spacing
	}

	x1, x2 := c.pos.X, c.pos.X
	y1 := c.pos.Y

	switch c.pos.Corner() {
	case 8, 5, 2:
		x1 = c.pos.X - w1/2
		x2 = c.pos.X - w2/2
	case 9, 6, 3:
		x1 = c.pos.X - w1
		x2 = c.pos.X - w2
	case 19, 16, 13:
		x1 = c.pos.X - totalWidth
		x2 = c.pos.X - totalWidth
	}
	switch c.pos.Corner() {
	case 4, 5, 6, 16:
		y1 = c.pos.Y - totalHeight/2
	case 1, 2, 3, 13:
		y1 = c.pos.Y - totalHeight
	}
	y2 := y1 + spacing + h1

	c.drawText(img, line1, face1, x1, y1+ascent(face1))
	if line2 != "" && face2 != nil {
		c.drawText(img, line2, face2, x2, y2+ascent(face2))
	}
}

func (c *Clock) drawText(img *image.NRGBA, text string, face font.Face, x, y int) {
	if c.pos.ShadowOffset > 0 {
		drawString(img, text, face, x+c.pos.ShadowOffset, y+c.pos.ShadowOffset, borderColor)
	}
	// Stroke the outline by stamping the border color around the glyphs.
	const border = 2
	for dx := -border; dx <= border; dx++ {
		for dy := -border; dy <= border; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawString(img, text, face, x+dx, y+dy, borderColor)
		}
	}
	drawString(img, text, face, x, y, foreColor)
}

func drawString(img *image.NRGBA, text string, face font.Face, x, y int, src image.Image) {
	d := &font.Drawer{
		Dst:  img,
		Src:  src,
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func measure(face font.Face, text string) (int, int) {
	d := &font.Drawer{Face: face}
	return d.MeasureString(text).Round(), faceHeight(face)
}

func ascent(face font.Face) int {
	return face.Metrics().Ascent.Round()
}

// Position returns the current placement.
func (c *Clock) Position() Pos {
	return c.pos
}

// SetXY repositions the overlay anchor and persists the sidecar.
func (c *Clock) SetXY(x, y int) {
	c.pos.X = x
	c.pos.Y = y
	c.save()
}

func (c *Clock) CycleCorner() {
	c.pos = c.pos.NextCorner()
	c.save()
}

func (c *Clock) ToggleSize() {
	c.pos = c.pos.ToggleCompact()
	c.save()
}

func (c *Clock) CycleFont() {
	c.pos = c.pos.NextFont(c.fonts.Len())
	c.save()
}

func (c *Clock) CycleShadow() {
	c.pos = c.pos.NextShadow()
	c.save()
}

func (c *Clock) save() {
	if c.curPath == "" {
		return
	}
	if err := c.pos.Save(c.curPath); err != nil {
		logrus.Warnf("unable to save clock position for %s: %v", c.curPath, err)
	}
}
