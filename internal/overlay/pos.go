// Package overlay draws the clock and date over the current photo, with a
// per-image placement persisted in a sidecar file.
package overlay

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// PosFileSuffix is appended to the image path to form the sidecar path.
const PosFileSuffix = ".clockpos.txt"

// Pos is the persisted clock placement for one image: anchor point,
// placement code (low 7 bits = numpad-style corner, bit 0x80 = compact date),
// font variant index and shadow offset.
type Pos struct {
	X            int
	Y            int
	Placement    int
	FontIndex    int
	ShadowOffset int
}

func (p Pos) Corner() int {
	return p.Placement & 0x7f
}

func (p Pos) CompactDate() bool {
	return p.Placement&0x80 != 0
}

// LoadPos reads the sidecar for imgPath. A missing or corrupt sidecar yields
// the zero placement with a logged warning, never an error.
func LoadPos(imgPath string) Pos {
	raw, err := os.ReadFile(imgPath + PosFileSuffix)
	if err != nil {
		return Pos{}
	}
	fields := strings.Fields(string(raw))
	if len(fields) < 2 {
		logrus.Warnf("unable to parse clock position from \"%s%s\"", imgPath, PosFileSuffix)
		return Pos{}
	}
	nums := make([]int, 5)
	for i := 0; i < len(nums) && i < len(fields); i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			logrus.Warnf("unable to parse clock position from \"%s%s\": %v", imgPath, PosFileSuffix, err)
			return Pos{}
		}
		nums[i] = n
	}
	return Pos{X: nums[0], Y: nums[1], Placement: nums[2], FontIndex: nums[3], ShadowOffset: nums[4]}
}

// Save writes the sidecar as five whitespace-separated integers.
func (p Pos) Save(imgPath string) error {
	s := fmt.Sprintf("%d %d %d %d %d\n", p.X, p.Y, p.Placement, p.FontIndex, p.ShadowOffset)
	if err := os.WriteFile(imgPath+PosFileSuffix, []byte(s), 0660); err != nil {
		return err
	}
	logrus.Infof("wrote \"%s\" to file \"%s%s\"", strings.TrimSpace(s), imgPath, PosFileSuffix)
	return nil
}

// NextCorner advances the corner through the numpad cycle
// 1..9, 19, 16, 13 and back to 1.
func (p Pos) NextCorner() Pos {
	c := p.Corner()
	switch {
	case c == 9:
		c = 19
	case c >= 1 && c <= 8:
		c++
	case c == 19:
		c = 16
	case c == 16:
		c = 13
	case c == 13:
		c = 1
	case c == 0:
		c = 8
	default:
		c = 7
	}
	p.Placement = (p.Placement & 0x80) | c
	return p
}

// ToggleCompact flips the compact-date flag.
func (p Pos) ToggleCompact() Pos {
	p.Placement ^= 0x80
	return p
}

// NextFont cycles through the font variants.
func (p Pos) NextFont(numFonts int) Pos {
	if numFonts <= 0 {
		return p
	}
	p.FontIndex = (p.FontIndex + 1) % numFonts
	return p
}

// NextShadow steps the shadow offset to the next multiple of 4, wrapping at
// 16 back to none.
func (p Pos) NextShadow() Pos {
	s := p.ShadowOffset
	s -= s % 4
	s += 4
	s %= 16
	p.ShadowOffset = s
	return p
}
