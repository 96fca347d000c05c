package event

// Input
type InputId int

const (
	PREVIOUS_INPUT InputId = iota
	NEXT_INPUT
	WAKE_INPUT
	SLEEP_INPUT
	OVERLAY_INPUT
	QUIT_INPUT
	EDIT_MODE_INPUT
	EDIT_CORNER_INPUT
	EDIT_SIZE_INPUT
	EDIT_FONT_INPUT
	EDIT_SHADOW_INPUT
	EDIT_CORRECTIONS_INPUT
	POINTER_INPUT
)

type InputEvent struct {
	InputId InputId

	// Pointer position, only meaningful for POINTER_INPUT.
	X int
	Y int
}

// Api
type ApiEvent struct {
	Result chan error
	Data   interface{}
}

type ApiEventSlideshowNextData struct{}
type ApiEventSlideshowPreviousData struct{}
type ApiEventSlideshowNewData struct{}

type ApiEventPowerData struct {
	On bool
}
