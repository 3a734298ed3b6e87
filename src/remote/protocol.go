package remote

import "screen-region/src/selection"

// Path is the WebSocket endpoint served by Server.
const Path = "/ws"

// Request types.
const (
	TypeCursor        = "cursor"
	TypeMouseDown     = "mousedown"
	TypeMouseUp       = "mouseup"
	TypeKeyEnter      = "key-enter"
	TypeKeyEscape     = "key-escape"
	TypeSetWindowSize = "set-window-size"
	TypeGetState      = "get-state"
	TypeDoCapture     = "do-capture"
	TypeReady         = "ready"
)

// Reply and push types.
const (
	TypeState    = "state"
	TypeCaptured = "captured"
	TypeError    = "error"
	TypeUpdate   = "update"
)

// Message is the single JSON frame used in both directions.
type Message struct {
	Type   string            `json:"type"`
	X      float64           `json:"x,omitempty"`
	Y      float64           `json:"y,omitempty"`
	Width  uint32            `json:"width,omitempty"`
	Height uint32            `json:"height,omitempty"`
	Phase  string            `json:"phase,omitempty"`
	Bounds *selection.Bounds `json:"bounds,omitempty"`
	Path   string            `json:"path,omitempty"`
	Error  string            `json:"error,omitempty"`
}
