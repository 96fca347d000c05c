package srv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/frank26080115/fotokiosk/internal/overlay"
	"github.com/frank26080115/fotokiosk/internal/srv/event"
)

func TestEditModeGatesClockEdits(t *testing.T) {
	app := newTestApp(t)
	a := addPhoto(t, app, "a.png")
	showPhoto(t, app, a)

	app.handleInput(event.InputEvent{InputId: event.EDIT_CORNER_INPUT})
	require.Equal(t, 0, app.clockOverlay.Position().Corner())

	app.handleInput(event.InputEvent{InputId: event.EDIT_MODE_INPUT})
	require.True(t, app.editMode)

	app.handleInput(event.InputEvent{InputId: event.EDIT_CORNER_INPUT})
	require.Equal(t, 8, app.clockOverlay.Position().Corner())

	// the edit persisted to the sidecar
	require.Equal(t, 8, overlay.LoadPos(a).Corner())

	app.handleInput(event.InputEvent{InputId: event.EDIT_MODE_INPUT})
	require.False(t, app.editMode)
}

func TestPointerRepositionNeedsDoubleClick(t *testing.T) {
	app := newTestApp(t)
	a := addPhoto(t, app, "a.png")
	showPhoto(t, app, a)
	app.editMode = true

	app.handleInput(event.InputEvent{InputId: event.POINTER_INPUT, X: 7, Y: 11})
	require.Equal(t, 0, app.clockOverlay.Position().X)

	app.handleInput(event.InputEvent{InputId: event.POINTER_INPUT, X: 7, Y: 11})
	pos := app.clockOverlay.Position()
	require.Equal(t, 7, pos.X)
	require.Equal(t, 11, pos.Y)
	require.FileExists(t, a+overlay.PosFileSuffix)
}

func TestKeyOnlyWakesBlankedDisplay(t *testing.T) {
	app := newTestApp(t)
	a := addPhoto(t, app, "a.png")
	addPhoto(t, app, "b.png")
	showPhoto(t, app, a)

	app.handleInput(event.InputEvent{InputId: event.SLEEP_INPUT})
	require.Equal(t, MONITOR_OFF_FADE_STATE, app.fadeState)
	require.False(t, app.powerDevice.IsMonitorOn())

	// the first key wakes the display but does not navigate
	app.handleInput(event.InputEvent{InputId: event.NEXT_INPUT})
	require.Equal(t, FADE_IN_FADE_STATE, app.fadeState)
	require.Equal(t, a, app.currentPath)
	require.True(t, app.powerDevice.IsMonitorOn())
}

func TestOverlayDoubleTapWindow(t *testing.T) {
	app := newTestApp(t)
	a := addPhoto(t, app, "a.png")
	showPhoto(t, app, a)

	stale := time.Now().Add(-2 * doubleTapWindow)
	app.lastOverlayTap = stale
	app.handleInput(event.InputEvent{InputId: event.OVERLAY_INPUT})
	require.True(t, app.lastOverlayTap.After(stale))

	app.handleInput(event.InputEvent{InputId: event.OVERLAY_INPUT})
	require.Equal(t, IDLE_FADE_STATE, app.fadeState)
}

func TestApiPowerRoundTrip(t *testing.T) {
	app := newTestApp(t)
	a := addPhoto(t, app, "a.png")
	showPhoto(t, app, a)

	result := make(chan error, 1)
	app.handleApiEvent(event.ApiEvent{Result: result, Data: event.ApiEventPowerData{On: false}})
	require.NoError(t, <-result)
	require.Equal(t, MONITOR_OFF_FADE_STATE, app.fadeState)

	app.handleApiEvent(event.ApiEvent{Result: result, Data: event.ApiEventPowerData{On: true}})
	require.NoError(t, <-result)
	require.Equal(t, FADE_IN_FADE_STATE, app.fadeState)
}

func TestApiNextAdvancesSlideshow(t *testing.T) {
	app := newTestApp(t)
	a := addPhoto(t, app, "a.png")
	b := addPhoto(t, app, "b.png")
	showPhoto(t, app, a)
	app.history.Append(b)
	app.history.Retreat()

	result := make(chan error, 1)
	app.handleApiEvent(event.ApiEvent{Result: result, Data: event.ApiEventSlideshowNextData{}})
	require.NoError(t, <-result)
	require.Equal(t, FADE_OUT_NEXT_FADE_STATE, app.fadeState)

	walkFade(t, app)
	require.Equal(t, b, app.currentPath)
}
