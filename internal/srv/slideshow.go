package srv

import (
	"errors"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frank26080115/fotokiosk/internal/frame"
	"github.com/frank26080115/fotokiosk/internal/library"
	"github.com/frank26080115/fotokiosk/internal/prerender"
	"github.com/frank26080115/fotokiosk/internal/srv/event"
)

// fadeFrameDelay paces both precomputed playback and the manual per-tick
// fade.
const fadeFrameDelay = 40 * time.Millisecond

// prerenderRetryInterval bounds how often a dead pre-render run (empty or
// unreadable library) is retried from the idle tick.
const prerenderRetryInterval = 10 * time.Second

func (s *KioskApp) tick() {
	switch s.fadeState {
	case IDLE_FADE_STATE:
		s.idleTick()
	case FADE_IN_FADE_STATE:
		s.fadeAlpha++
		if s.fadeAlpha >= s.FadeAlphaLimit {
			s.displayDevice.ShowFrame(s.current.Full)
			s.enterIdle()
		} else {
			s.displayDevice.ShowFrame(frame.Darken(s.current.Small, s.fadeAlpha, s.FadeAlphaLimit))
		}
	case FADE_OUT_NEXT_FADE_STATE, FADE_OUT_NEW_FADE_STATE, FADE_OUT_PREV_FADE_STATE:
		s.fadeAlpha--
		if s.fadeAlpha <= 0 {
			s.finishManualFadeOut()
		} else {
			s.displayDevice.ShowFrame(frame.Darken(s.current.Small, s.fadeAlpha, s.FadeAlphaLimit))
		}
	case MONITOR_OFF_FADE_STATE:
		if s.powerDevice.IsMonitorOn() {
			logrus.Infof("Monitor is back on")
			s.wakeUp()
		}
	}
	s.publishStatus()
}

func (s *KioskApp) idleTick() {
	// watch the monitor, one stray probe must not blank the show
	if !s.StayOn {
		if s.powerDevice.IsMonitorOn() {
			s.monitorOffStreak = 0
		} else {
			s.monitorOffStreak++
		}
		if s.monitorOffStreak >= 2 {
			logrus.Infof("Monitor went off")
			s.enterMonitorOff()
			return
		}
	}

	if time.Since(s.lastShownAt) >= time.Duration(s.FrameInterval)*time.Second {
		// under stay-on the photo cadence doubles as monitor keep-alive
		if s.StayOn && !s.editMode {
			s.powerDevice.Poke(false)
		}
		if s.preRenderer.NewReady() {
			if err := s.newPhoto(); err != nil {
				logrus.Warnf("Unable to show new photo: %v", err)
			}
			return
		}
		// the run may have died on an empty library, retry with backoff
		if time.Since(s.lastPreRenderStartAt) >= prerenderRetryInterval {
			logrus.Debugf("new photo due but no transition ready, restarting pre-renderer")
			s.restartPreRenderer()
		}
	}

	s.refreshIdleFrame()
}

func (s *KioskApp) enterIdle() {
	s.fadeState = IDLE_FADE_STATE
	s.lastShownAt = time.Now()
	s.restartPreRenderer()
}

func (s *KioskApp) enterMonitorOff() {
	s.fadeState = MONITOR_OFF_FADE_STATE
	s.displayDevice.ShowFrame(s.loader.Blank().Full)
}

// sleepDisplay blanks immediately, used by the API power-off operation.
func (s *KioskApp) sleepDisplay() {
	if s.fadeState == MONITOR_OFF_FADE_STATE {
		return
	}
	s.monitorOffStreak = 0
	s.enterMonitorOff()
}

// wakeUp de-blanks the display, through the precomputed wake ramp when it is
// available, otherwise by fading the current image in manually.
func (s *KioskApp) wakeUp() {
	if err := s.powerDevice.ForceOn(); err != nil {
		logrus.Warnf("Unable to turn monitor on: %v", err)
	}
	s.monitorOffStreak = 0

	if t := s.preRenderer.TakeWake(); t != nil {
		s.playTransition(t)
		s.fadeState = IDLE_FADE_STATE
		s.lastShownAt = time.Now()
		return
	}

	s.fadeState = FADE_IN_FADE_STATE
	s.fadeAlpha = 0
	s.displayDevice.ShowFrame(frame.Darken(s.current.Small, 0, s.FadeAlphaLimit))
}

// showFirstPhoto loads the opening image at startup and fades it in from
// black. An empty library leaves the splash up; the idle retry takes over.
func (s *KioskApp) showFirstPhoto() {
	path := s.LastShown()
	if path != "" {
		if pair, err := s.loader.Load(path); err == nil {
			s.beginFirstFadeIn(pair, path)
			return
		}
		logrus.Warnf("Unable to reload last shown photo \"%s\"", path)
	}

	for attempt := 0; attempt < s.RepeatRetries; attempt++ {
		path, err := s.selector.PickNew(s.history, s.editMode)
		if err != nil {
			if errors.Is(err, library.ErrNoImagesFound) {
				logrus.Warnf("Photo library is empty, waiting for images")
				s.lastShownAt = time.Now()
				return
			}
			logrus.Warnf("Unable to pick first photo: %v", err)
			return
		}
		pair, err := s.loader.Load(path)
		if err != nil {
			logrus.Warnf("Unable to load first photo \"%s\": %v", path, err)
			continue
		}
		s.beginFirstFadeIn(pair, path)
		return
	}

	logrus.Warnf("Gave up loading a first photo, degrading to placeholder")
	s.beginFirstFadeIn(s.loader.Placeholder(), "")
}

func (s *KioskApp) beginFirstFadeIn(pair *frame.Pair, path string) {
	s.setCurrent(pair, path)
	if path != "" {
		s.history.Append(path)
	}
	s.fadeState = FADE_IN_FADE_STATE
	s.fadeAlpha = 0
	s.publishStatus()
}

// nextPhoto steps forward through history, or to the pre-picked new image at
// the tail.
func (s *KioskApp) nextPhoto() error {
	if t, isNew := s.preRenderer.TakeNext(); t != nil {
		s.playTransition(t)
		if isNew {
			s.history.Append(t.Path)
		} else {
			s.history.Advance()
		}
		s.afterTransition(t)
		return nil
	}

	// manual fallback
	s.preRenderer.Halt()

	if path, ok := s.history.PeekNext(); ok {
		pair, err := s.loader.Load(path)
		if err != nil {
			logrus.Warnf("Unable to load next photo \"%s\", purging: %v", path, err)
			s.history.Remove(path)
			return s.newPhotoManual()
		}
		s.startManualFadeOut(FADE_OUT_NEXT_FADE_STATE, pair, path, false)
		return nil
	}

	return s.newPhotoManual()
}

// prevPhoto steps back through history, purging entries whose files have
// disappeared. At the head it does nothing.
func (s *KioskApp) prevPhoto() error {
	if t := s.preRenderer.TakePrev(); t != nil {
		s.playTransition(t)
		s.history.Retreat()
		s.afterTransition(t)
		return nil
	}

	s.preRenderer.Halt()

	for {
		path, ok := s.history.PeekPrev()
		if !ok {
			logrus.Debugf("already at the oldest photo")
			s.restartPreRenderer()
			return nil
		}
		pair, err := s.loader.Load(path)
		if err != nil {
			logrus.Warnf("Unable to load previous photo \"%s\", purging: %v", path, err)
			s.history.Remove(path)
			continue
		}
		s.startManualFadeOut(FADE_OUT_PREV_FADE_STATE, pair, path, false)
		return nil
	}
}

// newPhoto branches off to a fresh random pick, discarding any forward
// history.
func (s *KioskApp) newPhoto() error {
	if t := s.preRenderer.TakeNew(); t != nil {
		s.playTransition(t)
		s.history.TruncateForward()
		s.history.Append(t.Path)
		s.afterTransition(t)
		return nil
	}

	s.preRenderer.Halt()
	return s.newPhotoManual()
}

func (s *KioskApp) newPhotoManual() error {
	var lastErr error
	for attempt := 0; attempt < s.RepeatRetries; attempt++ {
		path, err := s.selector.PickNew(s.history, s.editMode)
		if err != nil {
			s.restartPreRenderer()
			return err
		}
		pair, err := s.loader.Load(path)
		if err != nil {
			logrus.Warnf("Unable to load new photo \"%s\": %v", path, err)
			lastErr = err
			continue
		}
		s.startManualFadeOut(FADE_OUT_NEW_FADE_STATE, pair, path, true)
		return nil
	}
	s.restartPreRenderer()
	return lastErr
}

func (s *KioskApp) startManualFadeOut(state FadeState, pair *frame.Pair, path string, isNew bool) {
	s.pendingPair = pair
	s.pendingPath = path
	s.pendingIsNew = isNew
	s.fadeState = state
	s.fadeAlpha = s.FadeAlphaLimit
}

func (s *KioskApp) finishManualFadeOut() {
	switch s.fadeState {
	case FADE_OUT_NEW_FADE_STATE:
		s.history.TruncateForward()
		s.history.Append(s.pendingPath)
	case FADE_OUT_NEXT_FADE_STATE:
		if s.pendingIsNew {
			s.history.Append(s.pendingPath)
		} else {
			s.history.Advance()
		}
	case FADE_OUT_PREV_FADE_STATE:
		s.history.Retreat()
	}

	s.setCurrent(s.pendingPair, s.pendingPath)
	s.pendingPair = nil
	s.pendingPath = ""
	s.pendingIsNew = false

	s.fadeState = FADE_IN_FADE_STATE
	s.fadeAlpha = 0
	s.displayDevice.ShowFrame(frame.Darken(s.current.Small, 0, s.FadeAlphaLimit))
}

// playTransition shows a precomputed ramp back-to-back. A key press skips
// straight to the final frame.
func (s *KioskApp) playTransition(t *frame.Transition) {
	last := len(t.Frames) - 1
	for i, f := range t.Frames {
		s.displayDevice.ShowFrame(f)
		if i == last {
			break
		}
		time.Sleep(fadeFrameDelay)
		if s.playbackInterrupted() {
			s.displayDevice.ShowFrame(t.Frames[last])
			break
		}
	}
}

func (s *KioskApp) playbackInterrupted() bool {
	select {
	case ev := <-s.displayDevice.EventChannel():
		return s.interruptingEvent(ev)
	default:
	}
	select {
	case ev := <-s.rawInputDevice.EventChannel():
		return s.interruptingEvent(ev)
	default:
	}
	return false
}

func (s *KioskApp) interruptingEvent(ev event.InputEvent) bool {
	if ev.InputId == event.QUIT_INPUT {
		logrus.Debugf("See you!")
		syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
	}
	if !s.StayOn {
		s.powerDevice.Poke(true)
	}
	return true
}

func (s *KioskApp) afterTransition(t *frame.Transition) {
	s.setCurrent(t.Dest, t.Path)
	s.fadeState = IDLE_FADE_STATE
	s.lastShownAt = time.Now()
	s.restartPreRenderer()
}

func (s *KioskApp) setCurrent(pair *frame.Pair, path string) {
	s.current = pair
	s.currentPath = path
	s.clockOverlay.NewImage(path)
	if path != "" {
		s.SetLastShown(path)
	}
}

func (s *KioskApp) restartPreRenderer() {
	s.lastPreRenderStartAt = time.Now()
	s.preRenderer.Start(prerender.Snapshot{
		Current:  s.current,
		History:  s.history.Clone(),
		EditMode: s.editMode,
	})
}
