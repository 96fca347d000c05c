package srv

import (
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frank26080115/fotokiosk/internal/colorcorrect"
	"github.com/frank26080115/fotokiosk/internal/srv/event"
)

const doubleTapWindow = 5 * time.Second
const doubleClickWindow = 500 * time.Millisecond

func (s *KioskApp) eventLoop() {
	tick := time.NewTimer(s.tickInterval())

	for loop := true; loop; {
		select {
		case ev := <-s.displayDevice.EventChannel():
			s.handleInput(ev)
		case ev := <-s.rawInputDevice.EventChannel():
			s.handleInput(ev)
		case ev := <-s.apiEventChannel():
			s.handleApiEvent(ev)
		case <-tick.C:
			s.tick()
		case <-s.eventLoopAskDone:
			loop = false
		}

		// re-pace the tick, the state may just have changed
		if !tick.Stop() {
			select {
			case <-tick.C:
			default:
			}
		}
		tick.Reset(s.tickInterval())
	}
	tick.Stop()
	s.eventLoopDone <- true
}

func (s *KioskApp) tickInterval() time.Duration {
	switch s.fadeState {
	case IDLE_FADE_STATE:
		return 500 * time.Millisecond
	case MONITOR_OFF_FADE_STATE:
		return 5 * time.Second
	default:
		return fadeFrameDelay
	}
}

// apiEventChannel returns nil when the API is disabled, which parks that
// select case forever.
func (s *KioskApp) apiEventChannel() chan event.ApiEvent {
	if s.apiDevice == nil {
		return nil
	}
	return s.apiDevice.EventChannel()
}

func (s *KioskApp) handleInput(ev event.InputEvent) {
	logrus.Debugf("Receive input event: %d", ev.InputId)

	if ev.InputId == event.QUIT_INPUT {
		logrus.Debugf("See you!")
		syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		return
	}

	// every key counts as user activity
	if !s.StayOn {
		s.powerDevice.Poke(true)
	}

	if s.fadeState == MONITOR_OFF_FADE_STATE {
		// the first key only wakes the display
		if ev.InputId != event.SLEEP_INPUT {
			s.wakeUp()
		}
		s.publishStatus()
		return
	}

	switch ev.InputId {
	case event.PREVIOUS_INPUT:
		if err := s.prevPhoto(); err != nil {
			logrus.Warnf("Unable to show previous photo: %v", err)
		}
	case event.NEXT_INPUT:
		if err := s.nextPhoto(); err != nil {
			logrus.Warnf("Unable to show next photo: %v", err)
		}
	case event.WAKE_INPUT:
		// reserved while the monitor is on, the poke above is enough
	case event.SLEEP_INPUT:
		if err := s.powerDevice.ForceOff(); err != nil {
			logrus.Warnf("Unable to turn monitor off: %v", err)
		}
		s.sleepDisplay()
	case event.OVERLAY_INPUT:
		now := time.Now()
		if now.Sub(s.lastOverlayTap) < doubleTapWindow {
			s.clockOverlay.ShowIP()
			s.refreshIdleFrame()
		}
		s.lastOverlayTap = now
	case event.EDIT_MODE_INPUT:
		s.editMode = !s.editMode
		logrus.Infof("Edit mode: %v", s.editMode)
		s.restartPreRenderer()
		s.refreshIdleFrame()
	case event.EDIT_CORNER_INPUT:
		if s.editMode {
			s.clockOverlay.CycleCorner()
			s.refreshIdleFrame()
		}
	case event.EDIT_SIZE_INPUT:
		if s.editMode {
			s.clockOverlay.ToggleSize()
			s.refreshIdleFrame()
		}
	case event.EDIT_FONT_INPUT:
		if s.editMode {
			s.clockOverlay.CycleFont()
			s.refreshIdleFrame()
		}
	case event.EDIT_SHADOW_INPUT:
		if s.editMode {
			s.clockOverlay.CycleShadow()
			s.refreshIdleFrame()
		}
	case event.EDIT_CORRECTIONS_INPUT:
		if s.editMode && s.EditorCommand != "" && s.currentPath != "" {
			cmd := colorcorrect.EditorCommand(s.EditorCommand, s.currentPath)
			if err := cmd.Start(); err != nil {
				logrus.Warnf("Unable to launch corrections editor: %v", err)
			}
		}
	case event.POINTER_INPUT:
		if s.editMode {
			now := time.Now()
			if now.Sub(s.lastPointerAt) < doubleClickWindow {
				s.clockOverlay.SetXY(ev.X, ev.Y)
				s.refreshIdleFrame()
			}
			s.lastPointerAt = now
		}
	}
	s.publishStatus()
}

func (s *KioskApp) handleApiEvent(ev event.ApiEvent) {
	switch data := ev.Data.(type) {
	case event.ApiEventSlideshowNextData:
		ev.Result <- s.nextPhoto()
	case event.ApiEventSlideshowPreviousData:
		ev.Result <- s.prevPhoto()
	case event.ApiEventSlideshowNewData:
		ev.Result <- s.newPhoto()
	case event.ApiEventPowerData:
		if data.On {
			err := s.powerDevice.ForceOn()
			if err == nil && s.fadeState == MONITOR_OFF_FADE_STATE {
				s.wakeUp()
			}
			ev.Result <- err
		} else {
			err := s.powerDevice.ForceOff()
			if err == nil {
				s.sleepDisplay()
			}
			ev.Result <- err
		}
	}
	s.publishStatus()
}
