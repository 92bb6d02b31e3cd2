package request

// MonitorRequest represents the JSON body for session monitor control.
type MonitorRequest struct {
	// Action controls the monitor. Allowed values:
	// - "start": start probing the session
	// - "stop":  stop probing the session
	Action string `json:"action"`
}

// StartSessionRequest is sent to the gateway to open a session.
type StartSessionRequest struct {
	Headless       bool   `json:"headless"`
	DisableWelcome bool   `json:"disableWelcome"`
	SessionDir     string `json:"sessionDir,omitempty"`
}

type SendTextRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type SendImageRequest struct {
	Phone    string `json:"phone"`
	Base64   string `json:"base64"`
	Filename string `json:"filename"`
	Caption  string `json:"caption"`
}
