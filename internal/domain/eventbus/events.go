package eventbus

const (
	// Session lifecycle events.
	EventSessionState    = "session:state"
	EventSessionNotify   = "session:notify"
	EventCaptionResult   = "caption:result"
	EventCaptionFallback = "caption:fallback"

	// Relay events.
	EventRelayRequest = "relay:request"

	// System events.
	EventSystemError = "system:error"
	EventSystemInfo  = "system:info"
)

// Notification levels understood by observers.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelError   = "error"
)

type StateEventData struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
	FileName string `json:"file_name,omitempty"`
}

type NotifyEventData struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type CaptionEventData struct {
	Caption  string `json:"caption"`
	Demo     bool   `json:"demo"`
	Words    int    `json:"words"`
	FileName string `json:"file_name,omitempty"`
}

type RelayEventData struct {
	RequestID string `json:"request_id"`
	Provider  string `json:"provider"`
	Status    int    `json:"status"`
	Duration  string `json:"duration"`
}

type SystemEventData struct {
	Level   string      `json:"level"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
