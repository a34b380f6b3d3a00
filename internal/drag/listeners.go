package drag

import "sync"

// Handler receives pointer events while attached.
type Handler interface {
	Move(at Point)
	Release()
}

// Listeners attaches and detaches move/release handlers.
type Listeners interface {
	Attach(h Handler)
	Detach(h Handler)
}

// Bus fans pointer move and release events out to attached handlers. One
// bus serves one page: the terminal window and the modal share it.
type Bus struct {
	mu       sync.Mutex
	handlers []Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Attach adds h. Attaching a handler twice has no effect.
func (b *Bus) Attach(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.handlers {
		if existing == h {
			return
		}
	}
	b.handlers = append(b.handlers, h)
}

// Detach removes h if attached.
func (b *Bus) Detach(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, existing := range b.handlers {
		if existing == h {
			b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
			return
		}
	}
}

// Attached returns the number of attached handlers.
func (b *Bus) Attached() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

// Move forwards a pointer move to every attached handler.
func (b *Bus) Move(at Point) {
	for _, h := range b.snapshot() {
		h.Move(at)
	}
}

// Release forwards a pointer release. Handlers usually detach themselves.
func (b *Bus) Release() {
	for _, h := range b.snapshot() {
		h.Release()
	}
}

// handlers are called outside the lock so they may detach.
func (b *Bus) snapshot() []Handler {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Handler(nil), b.handlers...)
}
