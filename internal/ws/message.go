package ws

import (
	"github.com/scorchos/site/internal/drag"
)

// Client message types.
const (
	TypeSubmit          = "submit"
	TypeHistory         = "history"
	TypeClick           = "click"
	TypePointer         = "pointer"
	TypeHover           = "hover"
	TypeModal           = "modal"
	TypeFullscreenError = "fullscreen_error"
	TypePing            = "ping"
)

// Server frame types that are not shell effects.
const (
	FrameLayout = "layout"
	FramePong   = "pong"
	FrameError  = "error"
)

// Pointer phases.
const (
	PhaseDown = "down"
	PhaseMove = "move"
	PhaseUp   = "up"
)

// Draggable windows on the error page.
const (
	WindowTerminal = "terminal"
	WindowModal    = "modal"
)

// Modal actions.
const (
	ModalOpen       = "open"
	ModalClose      = "close"
	ModalFullscreen = "fullscreen"
	ModalReset      = "reset"
	ModalResize     = "resize"
	ModalViewport   = "viewport"
)

// Message is one client event. Only the fields relevant to Type are set.
type Message struct {
	Type      string `json:"type"`
	Line      string `json:"line,omitempty"`
	Direction string `json:"direction,omitempty"`
	Selection bool   `json:"selection,omitempty"`

	Phase    string      `json:"phase,omitempty"`
	Window   string      `json:"window,omitempty"`
	Target   drag.Target `json:"target"`
	X        float64     `json:"x,omitempty"`
	Y        float64     `json:"y,omitempty"`
	Size     drag.Size   `json:"size"`
	Viewport drag.Size   `json:"viewport"`

	Key  string `json:"key,omitempty"`
	Text string `json:"text,omitempty"`

	Action string `json:"action,omitempty"`
	Edges  string `json:"edges,omitempty"`

	Message string `json:"message,omitempty"`
}

// Point returns the pointer position carried by the message.
func (m Message) Point() drag.Point {
	return drag.Point{X: m.X, Y: m.Y}
}

// Frame is a server message that is not a shell effect.
type Frame struct {
	Type    string       `json:"type"`
	Message string       `json:"message,omitempty"`
	Layout  *drag.Layout `json:"layout,omitempty"`
}
