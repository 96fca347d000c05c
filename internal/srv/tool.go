package srv

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/bitmapfont/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var col = color.RGBA{255, 255, 255, 255}
var uniformImage = image.NewUniform(col)

func AddLabel(img *image.NRGBA, x, y int, label string) {

	point := fixed.Point26_6{fixed.Int26_6((x + 4) * 64), fixed.Int26_6(y * 64)}

	d := &font.Drawer{
		Dst:  img,
		Src:  uniformImage,
		Face: bitmapfont.Face,
		Dot:  point,
	}
	d.DrawString(label)
}

func AddCenteredLabel(img *image.NRGBA, y int, label string) {
	AddLabel(img, (img.Bounds().Dx()-len(label)*6)/2, y, label)
}
