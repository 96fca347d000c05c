package config

import (
	_ "embed"
)

//go:embed param_default.yaml
var ParamDefaultFile []byte

type ServerParam struct {
	LibraryRoot     string       `yaml:"library_root"`
	FrameInterval   int64        `yaml:"frame_interval"`
	TimeToSleep     int64        `yaml:"time_to_sleep"`
	StayOn          bool         `yaml:"stay_on"`
	SmallDiv        int          `yaml:"small_div"`
	BlurBorderDim   float64      `yaml:"blur_border_dim"`
	FadeAlphaLimit  int          `yaml:"fade_alpha_limit"`
	PrerenderSteps  int          `yaml:"prerender_steps"`
	RepeatWindowMin int          `yaml:"repeat_window_min"`
	RepeatRetries   int          `yaml:"repeat_retries"`
	HistoryLimit    int          `yaml:"history_limit"`
	MaxPixels       int64        `yaml:"max_pixels"`
	FontsDir        string       `yaml:"fonts_dir"`
	EditorCommand   string       `yaml:"editor_command"`
	DisplayParam    DisplayParam `yaml:"display"`
	PowerParam      PowerParam   `yaml:"power"`
	ApiParam        ApiParam     `yaml:"api"`
}

type DisplayParam struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	InputDevice string `yaml:"input_device"`
}

type PowerParam struct {
	// Driver is one of "dpms", "gpio" or "none".
	Driver       string `yaml:"driver"`
	BacklightPin string `yaml:"backlight_pin"`
	HideMouse    bool   `yaml:"hide_mouse"`
}

type ApiParam struct {
	Enabled bool   `yaml:"enabled"`
	SslPort int64  `yaml:"ssl_port"`
	ApiKey  string `yaml:"api_key"`
}
