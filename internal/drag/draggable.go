package drag

import "sync"

// Draggable moves one element by its handle.
type Draggable struct {
	mu sync.Mutex

	listeners Listeners
	bounds    Bounds
	exclude   func(Target) bool
	onMove    func(Point)

	dragging bool
	offset   Point
	position Point
	size     Size
	viewport Size
}

// Option configures a Draggable.
type Option func(*Draggable)

// WithBounds sets the bounds policy. The default is Unbounded.
func WithBounds(b Bounds) Option {
	return func(d *Draggable) { d.bounds = b }
}

// WithExclude sets the predicate for press targets that never start a
// drag. The default is ExcludeButtons.
func WithExclude(fn func(Target) bool) Option {
	return func(d *Draggable) { d.exclude = fn }
}

// WithOnMove registers a callback for every position change.
func WithOnMove(fn func(Point)) Option {
	return func(d *Draggable) { d.onMove = fn }
}

// New creates an idle Draggable at the origin.
func New(l Listeners, opts ...Option) *Draggable {
	d := &Draggable{
		listeners: l,
		bounds:    Unbounded,
		exclude:   ExcludeButtons,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Press starts a drag when t is inside the handle and not excluded. size is
// the element's rendered size and viewport the window size, both used by
// the bounds policy. It reports whether a drag started.
func (d *Draggable) Press(t Target, at Point, size, viewport Size) bool {
	if !t.Handle || (d.exclude != nil && d.exclude(t)) {
		return false
	}

	d.mu.Lock()
	d.offset = at.Sub(d.position)
	d.size = size
	d.viewport = viewport
	already := d.dragging
	d.dragging = true
	d.mu.Unlock()

	if !already {
		d.listeners.Attach(d)
	}
	return true
}

// Move follows the pointer while dragging.
func (d *Draggable) Move(at Point) {
	d.mu.Lock()
	if !d.dragging {
		d.mu.Unlock()
		return
	}
	d.position = d.bounds(at.Sub(d.offset), d.size, d.viewport)
	pos := d.position
	onMove := d.onMove
	d.mu.Unlock()

	if onMove != nil {
		onMove(pos)
	}
}

// Release freezes the current position and detaches the listeners.
func (d *Draggable) Release() {
	d.mu.Lock()
	was := d.dragging
	d.dragging = false
	d.mu.Unlock()

	if was {
		d.listeners.Detach(d)
	}
}

// Teardown abandons an in-flight drag.
func (d *Draggable) Teardown() {
	d.Release()
}

// Dragging reports whether a drag is active.
func (d *Draggable) Dragging() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dragging
}

// Position returns the current position.
func (d *Draggable) Position() Point {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position
}

// SetPosition moves the element without a drag.
func (d *Draggable) SetPosition(p Point) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.position = p
}
