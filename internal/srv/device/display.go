package device

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"sync"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"github.com/sirupsen/logrus"

	"github.com/frank26080115/fotokiosk/internal/srv/event"
)

// Display owns the fullscreen surface. Frames are pushed with ShowFrame and
// painted from the window loop; key and pointer presses come back as semantic
// input events.
type Display struct {
	lock    sync.RWMutex
	lastImg image.Image

	width          int
	height         int
	simulationMode bool

	window       *app.Window
	eventChannel chan event.InputEvent
}

func NewDisplay(width, height int, simulationMode bool) *Display {
	device := Display{
		width:          width,
		height:         height,
		simulationMode: simulationMode,
		eventChannel:   make(chan event.InputEvent, 16),
	}

	return &device
}

func (d *Display) Start() {
	logrus.Infof("Start display device")

	if d.simulationMode {
		d.window = app.NewWindow(
			app.Title("fotokiosk"),
			app.Size(unit.Px(float32(d.width/2)), unit.Px(float32(d.height/2))),
		)
	} else {
		d.window = app.NewWindow(
			app.Title("fotokiosk"),
			app.Size(unit.Px(float32(d.width)), unit.Px(float32(d.height))),
			app.Fullscreen.Option(),
		)
	}

	go func() {
		if err := d.gioloop(); err != nil {
			log.Fatal(err)
		}
	}()
	go app.Main()
}

func (d *Display) Stop() {
	logrus.Infof("Stop display device")
	d.window.Close()
}

func (d *Display) EventChannel() chan event.InputEvent {
	return d.eventChannel
}

// ShowFrame replaces the displayed frame and schedules a repaint.
func (d *Display) ShowFrame(img image.Image) {
	d.lock.Lock()
	d.lastImg = img
	d.lock.Unlock()
	if d.window != nil {
		d.window.Invalidate()
	}
}

func (d *Display) gioloop() error {
	var ops op.Ops
	for {
		e := <-d.window.Events()
		switch e := e.(type) {
		case system.DestroyEvent:
			return e.Err
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)

			for _, ev := range gtx.Queue.Events(d) {
				switch ev := ev.(type) {
				case key.Event:
					if ev.State == key.Press {
						d.forwardKey(ev)
					}
				case pointer.Event:
					if ev.Type == pointer.Press {
						d.forward(event.InputEvent{
							InputId: event.POINTER_INPUT,
							X:       int(ev.Position.X),
							Y:       int(ev.Position.Y),
						})
					}
				}
			}
			key.InputOp{Tag: d}.Add(gtx.Ops)
			key.FocusOp{Tag: d}.Add(gtx.Ops)
			pointer.InputOp{Tag: d, Types: pointer.Press}.Add(gtx.Ops)

			d.lock.RLock()
			lastImg := d.lastImg
			d.lock.RUnlock()

			if lastImg != nil {
				img := widget.Image{Src: paint.NewImageOp(lastImg), Fit: widget.Contain}
				img.Layout(gtx)
			}
			e.Frame(gtx.Ops)
		}
	}
}

func (d *Display) forwardKey(ev key.Event) {
	switch ev.Name {
	case key.NameLeftArrow:
		d.forward(event.InputEvent{InputId: event.PREVIOUS_INPUT})
	case key.NameRightArrow:
		d.forward(event.InputEvent{InputId: event.NEXT_INPUT})
	case key.NameUpArrow:
		d.forward(event.InputEvent{InputId: event.WAKE_INPUT})
	case key.NameDownArrow:
		d.forward(event.InputEvent{InputId: event.OVERLAY_INPUT})
	case key.NameEscape, "Q":
		d.forward(event.InputEvent{InputId: event.QUIT_INPUT})
	case "E":
		d.forward(event.InputEvent{InputId: event.EDIT_MODE_INPUT})
	case "-":
		d.forward(event.InputEvent{InputId: event.EDIT_CORNER_INPUT})
	case "+", "=":
		d.forward(event.InputEvent{InputId: event.EDIT_SIZE_INPUT})
	case "F":
		d.forward(event.InputEvent{InputId: event.EDIT_FONT_INPUT})
	case "S":
		d.forward(event.InputEvent{InputId: event.EDIT_SHADOW_INPUT})
	case "T":
		d.forward(event.InputEvent{InputId: event.EDIT_CORRECTIONS_INPUT})
	}
}

// forward never blocks the render loop. An event is dropped when the
// controller is too far behind.
func (d *Display) forward(ev event.InputEvent) {
	select {
	case d.eventChannel <- ev:
	default:
		logrus.Debugf("input event %d dropped", ev.InputId)
	}
}
