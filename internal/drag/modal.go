package drag

import (
	"fmt"
	"strings"
	"sync"
)

// ModalConfig sizes a modal window.
type ModalConfig struct {
	InitialWidth    float64
	InitialHeight   float64
	MinWidthMobile  float64
	MinWidthDesktop float64
	MinHeight       float64
	// Breakpoint is the viewport width below which the window is laid out for mobile.
	Breakpoint float64
	// MobileMargin is subtracted from the viewport when sizing for mobile.
	MobileMargin float64
}

// DefaultModalConfig returns the sizes used by the site's modal windows.
func DefaultModalConfig() ModalConfig {
	return ModalConfig{
		InitialWidth:    800,
		InitialHeight:   612,
		MinWidthMobile:  290,
		MinWidthDesktop: 400,
		MinHeight:       300,
		Breakpoint:      768,
		MobileMargin:    32,
	}
}

// Edge is a set of window edges grabbed by a resize.
type Edge uint8

const (
	EdgeTop Edge = 1 << iota
	EdgeRight
	EdgeBottom
	EdgeLeft
)

// ParseEdges reads a direction such as "right", "bottom-left" or "top right".
func ParseEdges(s string) (Edge, error) {
	var e Edge
	s = strings.ToLower(s)
	if strings.Contains(s, "top") {
		e |= EdgeTop
	}
	if strings.Contains(s, "right") {
		e |= EdgeRight
	}
	if strings.Contains(s, "bottom") {
		e |= EdgeBottom
	}
	if strings.Contains(s, "left") {
		e |= EdgeLeft
	}
	if e == 0 {
		return 0, fmt.Errorf("unknown resize direction %q", s)
	}
	return e, nil
}

// Layout is the CSS box of the modal.
type Layout struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Positioned bool    `json:"positioned"`
	Width      string  `json:"width"`
	Height     string  `json:"height"`
	MinWidth   string  `json:"min_width"`
	Fullscreen bool    `json:"fullscreen"`
}

// ModalWindow is a draggable, resizable window clamped to the viewport.
// Until the first drag it is centered by the page and has no position.
type ModalWindow struct {
	mu sync.Mutex

	cfg       ModalConfig
	listeners Listeners
	drag      *Draggable
	resizer   *resizer

	viewport   Size
	size       Size
	positioned bool
	fullscreen bool

	resizing    bool
	edges       Edge
	resizeFrom  Point
	resizeStart Size
}

// resizer is the move/release handler attached during a resize.
type resizer struct {
	m *ModalWindow
}

func (r *resizer) Move(at Point) { r.m.resizeTo(at) }
func (r *resizer) Release()      { r.m.stopResize() }

// NewModalWindow creates a modal for the given viewport, sized by SetInitialSize.
func NewModalWindow(l Listeners, cfg ModalConfig, viewport Size) *ModalWindow {
	m := &ModalWindow{
		cfg:       cfg,
		listeners: l,
		viewport:  viewport,
	}
	m.resizer = &resizer{m: m}
	m.drag = New(l, WithBounds(ClampToViewport))
	m.SetInitialSize()
	return m
}

func (m *ModalWindow) mobile() bool {
	return m.viewport.Width < m.cfg.Breakpoint
}

// SetViewport records a window resize.
func (m *ModalWindow) SetViewport(v Size) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewport = v
}

// SetInitialSize restores the initial size; on mobile it is shrunk to fit
// the viewport minus the margin.
func (m *ModalWindow) SetInitialSize() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mobile() {
		m.size = Size{
			Width:  min(m.cfg.InitialWidth, m.viewport.Width-m.cfg.MobileMargin),
			Height: min(m.cfg.InitialHeight, m.viewport.Height-m.cfg.MobileMargin),
		}
		return
	}
	m.size = Size{Width: m.cfg.InitialWidth, Height: m.cfg.InitialHeight}
}

// StartDrag begins moving the modal. A fullscreen modal does not move. The
// first drag anchors the window at its centered position.
func (m *ModalWindow) StartDrag(t Target, at Point) bool {
	m.mu.Lock()
	if m.fullscreen {
		m.mu.Unlock()
		return false
	}
	size, viewport := m.size, m.viewport
	anchor := !m.positioned
	m.mu.Unlock()

	if anchor && t.Handle && !ExcludeButtons(t) {
		m.drag.SetPosition(Point{
			X: viewport.Width/2 - size.Width/2,
			Y: viewport.Height/2 - size.Height/2,
		})
	}
	if !m.drag.Press(t, at, size, viewport) {
		return false
	}

	m.mu.Lock()
	m.positioned = true
	m.mu.Unlock()
	return true
}

// StartResize grabs the given edges. Resizing is disabled on mobile.
func (m *ModalWindow) StartResize(edges Edge, at Point) bool {
	m.mu.Lock()
	if m.mobile() || m.resizing {
		m.mu.Unlock()
		return false
	}
	m.resizing = true
	m.edges = edges
	m.resizeFrom = at
	m.resizeStart = m.size
	m.mu.Unlock()

	m.listeners.Attach(m.resizer)
	return true
}

func (m *ModalWindow) resizeTo(at Point) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.resizing {
		return
	}
	delta := at.Sub(m.resizeFrom)
	w, h := m.resizeStart.Width, m.resizeStart.Height

	if m.edges&EdgeRight != 0 {
		w = max(m.cfg.MinWidthDesktop, m.resizeStart.Width+delta.X)
	}
	if m.edges&EdgeLeft != 0 {
		w = max(m.cfg.MinWidthDesktop, m.resizeStart.Width-delta.X)
	}
	if m.edges&EdgeBottom != 0 {
		h = max(m.cfg.MinHeight, m.resizeStart.Height+delta.Y)
	}
	if m.edges&EdgeTop != 0 {
		h = max(m.cfg.MinHeight, m.resizeStart.Height-delta.Y)
	}

	m.size = Size{
		Width:  min(w, m.viewport.Width),
		Height: min(h, m.viewport.Height),
	}
}

func (m *ModalWindow) stopResize() {
	m.mu.Lock()
	was := m.resizing
	m.resizing = false
	m.edges = 0
	m.mu.Unlock()

	if was {
		m.listeners.Detach(m.resizer)
	}
}

// ToggleFullscreen flips fullscreen mode. Entering it drops the position so
// leaving it re-centers the window.
func (m *ModalWindow) ToggleFullscreen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fullscreen = !m.fullscreen
	if m.fullscreen {
		m.positioned = false
	}
	return m.fullscreen
}

// Reset re-centers the window at its initial size and leaves fullscreen.
func (m *ModalWindow) Reset() {
	m.drag.Release()
	m.stopResize()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.positioned = false
	m.fullscreen = false
	m.size = Size{Width: m.cfg.InitialWidth, Height: m.cfg.InitialHeight}
}

// Teardown detaches every listener the modal may still hold.
func (m *ModalWindow) Teardown() {
	m.drag.Teardown()
	m.stopResize()
}

// Dragging reports whether the window is being moved.
func (m *ModalWindow) Dragging() bool { return m.drag.Dragging() }

// Resizing reports whether an edge is grabbed.
func (m *ModalWindow) Resizing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resizing
}

// Size returns the current pixel size.
func (m *ModalWindow) Size() Size {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// Layout computes the CSS box for the current state.
func (m *ModalWindow) Layout() Layout {
	pos := m.drag.Position()

	m.mu.Lock()
	defer m.mu.Unlock()

	l := Layout{Fullscreen: m.fullscreen}
	if m.positioned && !m.fullscreen {
		l.X, l.Y, l.Positioned = pos.X, pos.Y, true
	}

	mobile := m.mobile()
	switch {
	case m.fullscreen && mobile:
		l.Width, l.Height = "100dvw", "100dvh"
	case m.fullscreen:
		l.Width, l.Height = "100vw", "100vh"
	case mobile:
		l.Width, l.Height = "calc(100vw - 2rem)", px(m.size.Height)
	default:
		l.Width, l.Height = px(m.size.Width), px(m.size.Height)
	}

	if mobile {
		l.MinWidth = px(m.cfg.MinWidthMobile)
	} else {
		l.MinWidth = px(m.cfg.MinWidthDesktop)
	}
	return l
}

func px(v float64) string {
	return fmt.Sprintf("%gpx", v)
}
