package srv

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/frank26080115/fotokiosk/internal/frame"
)

func newTestApp(t *testing.T) *KioskApp {
	t.Helper()

	configDir := filepath.Join(t.TempDir(), "config")
	libraryRoot := filepath.Join(t.TempDir(), "photos")
	require.NoError(t, os.Mkdir(configDir, 0770))
	require.NoError(t, os.Mkdir(libraryRoot, 0770))

	param := fmt.Sprintf(`library_root: %s
frame_interval: 3600
time_to_sleep: 300
stay_on: false
small_div: 4
blur_border_dim: 0
fade_alpha_limit: 3
prerender_steps: 4
repeat_window_min: 1
repeat_retries: 5
history_limit: 0
max_pixels: 80000000
display:
  width: 64
  height: 36
power:
  driver: none
api:
  enabled: false
`, libraryRoot)
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "param.yaml"), []byte(param), 0660))

	app := NewKioskApp(configDir, false, true)
	t.Cleanup(app.preRenderer.Halt)
	return app
}

func addPhoto(t *testing.T, app *KioskApp, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 18))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	path := filepath.Join(app.LibraryRoot, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func mustLoad(t *testing.T, app *KioskApp, path string) *frame.Pair {
	t.Helper()
	pair, err := app.loader.Load(path)
	require.NoError(t, err)
	return pair
}

// showPhoto puts the app in idle on a known image without going through
// Start.
func showPhoto(t *testing.T, app *KioskApp, path string) {
	t.Helper()
	app.setCurrent(mustLoad(t, app, path), path)
	app.history.Append(path)
	app.fadeState = IDLE_FADE_STATE
	app.lastShownAt = time.Now()
}

// walkFade runs ticks until the state machine settles back to idle or
// monitor-off.
func walkFade(t *testing.T, app *KioskApp) {
	t.Helper()
	for i := 0; i < 4*app.FadeAlphaLimit; i++ {
		if app.fadeState == IDLE_FADE_STATE || app.fadeState == MONITOR_OFF_FADE_STATE {
			return
		}
		app.tick()
	}
	require.Failf(t, "fade never settled", "stuck in state %s", app.fadeState)
}

func TestManualNewPhotoFade(t *testing.T) {
	app := newTestApp(t)
	b := addPhoto(t, app, "b.png")

	// the only image on disk is b, so the random pick is forced
	gone := filepath.Join(app.LibraryRoot, "gone.png")
	app.setCurrent(app.loader.Blank(), gone)
	app.history.Append(gone)
	app.lastShownAt = time.Now()

	require.NoError(t, app.newPhoto())
	require.Equal(t, FADE_OUT_NEW_FADE_STATE, app.fadeState)
	require.Equal(t, app.FadeAlphaLimit, app.fadeAlpha)
	require.Equal(t, b, app.pendingPath)

	walkFade(t, app)
	require.Equal(t, IDLE_FADE_STATE, app.fadeState)
	require.Equal(t, b, app.currentPath)
	require.Equal(t, 2, app.history.Len())
	require.Equal(t, 1, app.history.Cursor())
	require.Equal(t, b, app.LastShown())
}

func TestManualNextAdvancesThroughHistory(t *testing.T) {
	app := newTestApp(t)
	a := addPhoto(t, app, "a.png")
	b := addPhoto(t, app, "b.png")
	showPhoto(t, app, a)
	app.history.Append(b)
	app.history.Retreat()

	require.NoError(t, app.nextPhoto())
	require.Equal(t, FADE_OUT_NEXT_FADE_STATE, app.fadeState)

	walkFade(t, app)
	require.Equal(t, b, app.currentPath)
	require.Equal(t, 1, app.history.Cursor())
	require.Equal(t, 2, app.history.Len())
}

func TestManualPrevStopsAtOldestPhoto(t *testing.T) {
	app := newTestApp(t)
	a := addPhoto(t, app, "a.png")
	showPhoto(t, app, a)

	require.NoError(t, app.prevPhoto())
	require.Equal(t, IDLE_FADE_STATE, app.fadeState)
	require.Equal(t, a, app.currentPath)
	require.Equal(t, 0, app.history.Cursor())
}

func TestManualPrevPurgesMissingFiles(t *testing.T) {
	app := newTestApp(t)
	a := addPhoto(t, app, "a.png")
	b := addPhoto(t, app, "b.png")
	c := addPhoto(t, app, "c.png")
	showPhoto(t, app, a)
	app.history.Append(b)
	app.history.Append(c)
	app.setCurrent(mustLoad(t, app, c), c)

	require.NoError(t, os.Remove(b))
	require.NoError(t, app.prevPhoto())
	require.Equal(t, FADE_OUT_PREV_FADE_STATE, app.fadeState)
	require.Equal(t, a, app.pendingPath)

	walkFade(t, app)
	require.Equal(t, a, app.currentPath)
	require.Equal(t, 2, app.history.Len())
	require.Equal(t, 0, app.history.Cursor())
}

func TestNewPhotoDiscardsForwardHistory(t *testing.T) {
	app := newTestApp(t)
	c := addPhoto(t, app, "c.png")

	// history holds two stale paths with the cursor mid-record; the only
	// pickable image is c
	goneA := filepath.Join(app.LibraryRoot, "gone-a.png")
	goneB := filepath.Join(app.LibraryRoot, "gone-b.png")
	app.setCurrent(app.loader.Blank(), goneA)
	app.history.Append(goneA)
	app.history.Append(goneB)
	app.history.Retreat()
	app.lastShownAt = time.Now()

	require.NoError(t, app.newPhoto())
	walkFade(t, app)

	require.Equal(t, c, app.currentPath)
	require.Equal(t, []string{goneA, c}, app.history.Entries())
	require.Equal(t, 1, app.history.Cursor())
}

func TestMonitorOffAfterTwoFailedProbes(t *testing.T) {
	app := newTestApp(t)
	a := addPhoto(t, app, "a.png")
	showPhoto(t, app, a)

	require.NoError(t, app.powerDevice.ForceOff())

	app.tick()
	require.Equal(t, IDLE_FADE_STATE, app.fadeState)
	app.tick()
	require.Equal(t, MONITOR_OFF_FADE_STATE, app.fadeState)
}

func TestMonitorBackOnFadesCurrentPhotoIn(t *testing.T) {
	app := newTestApp(t)
	a := addPhoto(t, app, "a.png")
	showPhoto(t, app, a)

	require.NoError(t, app.powerDevice.ForceOff())
	app.sleepDisplay()
	require.Equal(t, MONITOR_OFF_FADE_STATE, app.fadeState)

	require.NoError(t, app.powerDevice.ForceOn())
	app.tick()
	require.Equal(t, FADE_IN_FADE_STATE, app.fadeState)

	walkFade(t, app)
	require.Equal(t, IDLE_FADE_STATE, app.fadeState)
	require.Equal(t, a, app.currentPath)
}

func TestShowFirstPhotoEmptyLibraryKeepsSplash(t *testing.T) {
	app := newTestApp(t)
	app.current = app.loader.Blank()

	app.showFirstPhoto()
	require.Equal(t, IDLE_FADE_STATE, app.fadeState)
	require.Equal(t, "", app.currentPath)
	require.Equal(t, 0, app.history.Len())
}

func TestShowFirstPhotoReloadsLastShown(t *testing.T) {
	app := newTestApp(t)
	a := addPhoto(t, app, "a.png")
	addPhoto(t, app, "b.png")
	app.SetLastShown(a)

	app.showFirstPhoto()
	require.Equal(t, FADE_IN_FADE_STATE, app.fadeState)
	require.Equal(t, a, app.currentPath)
	require.Equal(t, 1, app.history.Len())
}

func TestStatusReflectsStateMachine(t *testing.T) {
	app := newTestApp(t)
	a := addPhoto(t, app, "a.png")
	showPhoto(t, app, a)
	app.publishStatus()

	status := app.Status()
	require.Equal(t, a, status.CurrentPhoto)
	require.Equal(t, "idle", status.FadeState)
	require.True(t, status.MonitorOn)
	require.False(t, status.EditMode)
	require.Equal(t, 1, status.HistoryLength)
}
