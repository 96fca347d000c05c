package srv

import (
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frank26080115/fotokiosk/apimodel"
	"github.com/frank26080115/fotokiosk/internal/colorcorrect"
	"github.com/frank26080115/fotokiosk/internal/frame"
	"github.com/frank26080115/fotokiosk/internal/library"
	"github.com/frank26080115/fotokiosk/internal/overlay"
	"github.com/frank26080115/fotokiosk/internal/prerender"
	"github.com/frank26080115/fotokiosk/internal/srv/config"
	"github.com/frank26080115/fotokiosk/internal/srv/device"
	"github.com/frank26080115/fotokiosk/internal/tool"
	"github.com/frank26080115/fotokiosk/internal/version"
)

type KioskApp struct {
	*config.ServerConfig

	displayDevice  *device.Display
	rawInputDevice *device.RawInput
	powerDevice    *device.Power
	apiDevice      *device.Api

	loader       *frame.Loader
	selector     *library.Selector
	history      *library.History
	preRenderer  *prerender.PreRenderer
	clockOverlay *overlay.Clock

	current     *frame.Pair
	currentPath string

	fadeState FadeState
	fadeAlpha int

	// manual fade destination, used when no precomputed transition was ready
	pendingPair  *frame.Pair
	pendingPath  string
	pendingIsNew bool

	editMode             bool
	monitorOffStreak     int
	lastShownAt          time.Time
	lastPreRenderStartAt time.Time
	lastOverlayTap       time.Time
	lastPointerAt        time.Time

	statusLock sync.RWMutex
	status     apimodel.Status

	eventLoopAskDone chan bool
	eventLoopDone    chan bool
}

type FadeState int64

const (
	IDLE_FADE_STATE FadeState = iota
	FADE_IN_FADE_STATE
	FADE_OUT_NEXT_FADE_STATE
	FADE_OUT_NEW_FADE_STATE
	FADE_OUT_PREV_FADE_STATE
	MONITOR_OFF_FADE_STATE
)

func (f FadeState) String() string {
	switch f {
	case IDLE_FADE_STATE:
		return "idle"
	case FADE_IN_FADE_STATE:
		return "fade-in"
	case FADE_OUT_NEXT_FADE_STATE:
		return "fade-out-next"
	case FADE_OUT_NEW_FADE_STATE:
		return "fade-out-new"
	case FADE_OUT_PREV_FADE_STATE:
		return "fade-out-prev"
	case MONITOR_OFF_FADE_STATE:
		return "monitor-off"
	}
	return "unknown"
}

func NewKioskApp(configDir string, debugMode bool, simulationMode bool) *KioskApp {

	logrus.Debugf("Creation of fotokiosk server %s ...", version.AppVersion.String())

	app := &KioskApp{
		fadeState:        IDLE_FADE_STATE,
		eventLoopAskDone: make(chan bool),
		eventLoopDone:    make(chan bool),
		ServerConfig:     config.NewServerConfig(configDir, debugMode, simulationMode),
	}

	app.loader = frame.NewLoader(
		app.DisplayParam.Width,
		app.DisplayParam.Height,
		app.SmallDiv,
		app.BlurBorderDim,
		app.MaxPixels,
		colorcorrect.Correct)

	app.selector = library.NewSelector(app.LibraryRoot)
	app.selector.MinWindow = app.RepeatWindowMin
	app.selector.Retries = app.RepeatRetries
	app.selector.SidecarSuffix = overlay.PosFileSuffix

	app.history = library.NewHistory(app.HistoryLimit)
	app.preRenderer = prerender.New(app.loader, app.selector, app.PrerenderSteps)
	app.clockOverlay = overlay.NewClock(app.FontsDir, tool.GetIPAddress)

	app.displayDevice = device.NewDisplay(app.DisplayParam.Width, app.DisplayParam.Height, app.SimulationMode)
	app.rawInputDevice = device.NewRawInput(app.DisplayParam.InputDevice)
	app.powerDevice = device.NewPower(app.ServerConfig)
	if app.ApiParam.Enabled {
		app.apiDevice = device.NewApi(app.ServerConfig, app.listPhotos, app.Status)
	}

	logrus.Debugln("Server created")

	return app
}

func (s *KioskApp) Start() {
	logrus.Printf("Starting fotokiosk server ...")

	// Init random generator
	rand.Seed(time.Now().UnixNano())

	logrus.Printf("Starting devices ...")

	// Start display device
	s.displayDevice.Start()

	// Display splash screen
	s.current = s.loader.Blank()
	s.showSplash()

	// Start power device
	s.powerDevice.Start()

	// Load the first photo and gate on the first pre-render run
	s.showFirstPhoto()

	// Start event loop
	go s.eventLoop()

	// Start raw input device
	if !s.SimulationMode {
		s.rawInputDevice.Start()
	}

	// Start api device
	if s.apiDevice != nil {
		s.apiDevice.Start()
	}
}

func (s *KioskApp) Stop() {
	logrus.Printf("Stopping fotokiosk server ...")

	// Stop api
	if s.apiDevice != nil {
		s.apiDevice.StopSendingEvent()
	}

	// Stop raw input device
	if !s.SimulationMode {
		s.rawInputDevice.StopSendingEvent()
	}

	// Stop event loop
	logrus.Infof("Stop event loop")
	s.eventLoopAskDone <- true
	<-s.eventLoopDone

	// Stop pre-renderer
	s.preRenderer.Halt()

	// Restore monitor and stop power device
	s.powerDevice.Stop()

	// Stop display device
	s.displayDevice.Stop()

	// Flush config backup
	s.ServerConfig.ServerState.FlushSave()

	logrus.Printf("Server stopped")

	os.Exit(0)
}

// Status answers the HTTP API without entering the event loop.
func (s *KioskApp) Status() apimodel.Status {
	s.statusLock.RLock()
	defer s.statusLock.RUnlock()
	return s.status
}

func (s *KioskApp) publishStatus() {
	s.statusLock.Lock()
	defer s.statusLock.Unlock()
	s.status = apimodel.Status{
		CurrentPhoto:  s.currentPath,
		FadeState:     s.fadeState.String(),
		HistoryLength: s.history.Len(),
		HistoryCursor: s.history.Cursor(),
		MonitorOn:     s.fadeState != MONITOR_OFF_FADE_STATE,
		EditMode:      s.editMode,
	}
}

func (s *KioskApp) listPhotos() []string {
	files, err := library.Scan(s.LibraryRoot)
	if err != nil {
		logrus.Warnf("Unable to scan photo library: %v", err)
		return nil
	}
	return files
}
