package srv

import (
	"time"

	"github.com/disintegration/imaging"

	"github.com/frank26080115/fotokiosk/internal/tool"
	"github.com/frank26080115/fotokiosk/internal/version"
)

// refreshIdleFrame redraws the steady-state frame: the current photo with the
// clock overlay stamped on a fresh copy, so the underlying pair stays clean
// for blending.
func (s *KioskApp) refreshIdleFrame() {
	img := imaging.Clone(s.current.Full)
	s.clockOverlay.Draw(img, time.Now())
	if s.editMode {
		AddLabel(img, 2, 14, "EDIT "+s.currentPath)
	}
	s.displayDevice.ShowFrame(img)
}

func (s *KioskApp) showSplash() {
	img := imaging.Clone(s.current.Full)
	h := img.Bounds().Dy()
	AddCenteredLabel(img, h/2, "fotokiosk "+version.AppVersion.String())
	AddCenteredLabel(img, h/2+16, tool.GetIPAddress())
	s.displayDevice.ShowFrame(img)
}
