package device

import (
	"strings"
	"sync"
	"time"

	evdev "github.com/holoplot/go-evdev"
	"github.com/sirupsen/logrus"

	"github.com/frank26080115/fotokiosk/internal/srv/event"
)

// RawInput reads key presses straight from an evdev device, so the kiosk
// keeps reacting to its remote keyboard even when no window manager gives the
// surface keyboard focus. It is optional: when no device can be opened the
// kiosk runs on window input alone.
type RawInput struct {
	lock         sync.RWMutex
	eventChannel chan event.InputEvent

	// device name or path, empty means pick the first keyboard-looking one
	wantedDevice string

	device  *evdev.InputDevice
	askDone chan bool
	done    chan bool
}

func NewRawInput(wantedDevice string) *RawInput {
	device := RawInput{
		wantedDevice: wantedDevice,
		eventChannel: make(chan event.InputEvent, 16),
		askDone:      make(chan bool),
		done:         make(chan bool),
	}

	return &device
}

func (d *RawInput) Start() {
	logrus.Infof("Start raw input device")

	d.lock.Lock()
	defer d.lock.Unlock()

	devPath := d.findDevicePath()
	if devPath == "" {
		logrus.Warnf("No usable input device found, raw input disabled")
		return
	}

	var err error
	d.device, err = evdev.Open(devPath)
	if err != nil {
		logrus.Warnf("Unable to open input device %s: %v", devPath, err)
		d.device = nil
		return
	}

	name, _ := d.device.Name()
	logrus.Infof("Using input device: %s (%s)", devPath, name)

	go func() {
		for loop := true; loop; {
			select {
			case <-d.askDone:
				loop = false
			default:
				ev, err := d.device.ReadOne()
				if err != nil {
					logrus.Debugf("input device read error: %v", err)
					time.Sleep(100 * time.Millisecond)
					continue
				}
				if ev.Type == evdev.EV_KEY && ev.Value == 1 {
					d.forwardKey(ev.Code)
				}
			}
		}
		d.done <- true
	}()
}

func (d *RawInput) StopSendingEvent() {
	logrus.Infof("Stop raw input device")

	d.lock.Lock()
	defer d.lock.Unlock()

	if d.device == nil {
		return
	}

	// unblocks the pending ReadOne
	d.device.Close()
	d.askDone <- true
	<-d.done
}

func (d *RawInput) EventChannel() chan event.InputEvent {
	return d.eventChannel
}

func (d *RawInput) findDevicePath() string {
	if strings.HasPrefix(d.wantedDevice, "/dev/") {
		return d.wantedDevice
	}

	paths, err := evdev.ListDevicePaths()
	if err != nil {
		logrus.Warnf("Unable to list input devices: %v", err)
		return ""
	}

	for _, ip := range paths {
		if d.wantedDevice != "" {
			if ip.Name == d.wantedDevice {
				return ip.Path
			}
			continue
		}
		if strings.Contains(strings.ToLower(ip.Name), "keyboard") {
			return ip.Path
		}
	}
	return ""
}

func (d *RawInput) forwardKey(code evdev.EvCode) {
	var ev event.InputEvent
	switch code {
	case evdev.KEY_LEFT:
		ev = event.InputEvent{InputId: event.PREVIOUS_INPUT}
	case evdev.KEY_RIGHT:
		ev = event.InputEvent{InputId: event.NEXT_INPUT}
	case evdev.KEY_UP:
		ev = event.InputEvent{InputId: event.WAKE_INPUT}
	case evdev.KEY_DOWN:
		ev = event.InputEvent{InputId: event.OVERLAY_INPUT}
	case evdev.KEY_ESC, evdev.KEY_Q:
		ev = event.InputEvent{InputId: event.QUIT_INPUT}
	case evdev.KEY_E:
		ev = event.InputEvent{InputId: event.EDIT_MODE_INPUT}
	case evdev.KEY_MINUS:
		ev = event.InputEvent{InputId: event.EDIT_CORNER_INPUT}
	case evdev.KEY_EQUAL, evdev.KEY_KPPLUS:
		ev = event.InputEvent{InputId: event.EDIT_SIZE_INPUT}
	case evdev.KEY_F:
		ev = event.InputEvent{InputId: event.EDIT_FONT_INPUT}
	case evdev.KEY_S:
		ev = event.InputEvent{InputId: event.EDIT_SHADOW_INPUT}
	case evdev.KEY_T:
		ev = event.InputEvent{InputId: event.EDIT_CORRECTIONS_INPUT}
	case evdev.KEY_POWER, evdev.KEY_SLEEP:
		ev = event.InputEvent{InputId: event.SLEEP_INPUT}
	default:
		return
	}

	select {
	case d.eventChannel <- ev:
	default:
		logrus.Debugf("raw input event %d dropped", ev.InputId)
	}
}
