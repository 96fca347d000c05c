package apimodel

// Status describes the current slideshow state for the HTTP API.
type Status struct {
	CurrentPhoto  string `json:"current_photo"`
	FadeState     string `json:"fade_state"`
	HistoryLength int    `json:"history_length"`
	HistoryCursor int    `json:"history_cursor"`
	MonitorOn     bool   `json:"monitor_on"`
	EditMode      bool   `json:"edit_mode"`
}

type PhotoList struct {
	Photos []string `json:"photos"`
}
