package drag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	handle   = Target{Handle: true, Tag: "div"}
	viewport = Size{Width: 1280, Height: 800}
	window   = Size{Width: 600, Height: 400}
)

func TestDraggableFollowsPointer(t *testing.T) {
	bus := NewBus()
	var moves []Point
	d := New(bus, WithOnMove(func(p Point) { moves = append(moves, p) }))

	require.True(t, d.Press(handle, Point{X: 100, Y: 50}, window, viewport))
	assert.True(t, d.Dragging())
	assert.Equal(t, 1, bus.Attached())

	bus.Move(Point{X: 130, Y: 70})
	bus.Move(Point{X: 90, Y: 10})
	assert.Equal(t, Point{X: -10, Y: -40}, d.Position(), "the terminal window is unbounded")

	bus.Release()
	assert.False(t, d.Dragging())
	assert.Zero(t, bus.Attached())

	bus.Move(Point{X: 500, Y: 500})
	assert.Equal(t, Point{X: -10, Y: -40}, d.Position(), "position is frozen after release")
	assert.Equal(t, []Point{{X: 30, Y: 20}, {X: -10, Y: -40}}, moves)
}

func TestDraggableOffsetIsRelativeToCurrentPosition(t *testing.T) {
	bus := NewBus()
	d := New(bus)

	d.Press(handle, Point{X: 10, Y: 10}, window, viewport)
	bus.Move(Point{X: 60, Y: 30})
	bus.Release()
	require.Equal(t, Point{X: 50, Y: 20}, d.Position())

	// the second drag continues from where the first left off
	d.Press(handle, Point{X: 200, Y: 200}, window, viewport)
	bus.Move(Point{X: 210, Y: 205})
	bus.Release()
	assert.Equal(t, Point{X: 60, Y: 25}, d.Position())
}

func TestDraggableIgnoresPressOutsideHandleOrOnButtons(t *testing.T) {
	tests := []struct {
		name   string
		target Target
	}{
		{"outside handle", Target{Handle: false, Tag: "div"}},
		{"button", Target{Handle: true, Tag: "BUTTON"}},
		{"inside button", Target{Handle: true, Tag: "svg", ParentTag: "button"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := NewBus()
			d := New(bus)

			assert.False(t, d.Press(tt.target, Point{}, window, viewport))
			assert.False(t, d.Dragging())
			assert.Zero(t, bus.Attached())
		})
	}
}

func TestDraggableCustomExclude(t *testing.T) {
	d := New(NewBus(), WithExclude(func(t Target) bool { return t.Tag == "input" }))

	assert.False(t, d.Press(Target{Handle: true, Tag: "input"}, Point{}, window, viewport))
	assert.True(t, d.Press(Target{Handle: true, Tag: "button"}, Point{}, window, viewport))
}

func TestRepeatedDragsDoNotLeakListeners(t *testing.T) {
	bus := NewBus()
	d := New(bus)

	for i := 0; i < 50; i++ {
		d.Press(handle, Point{X: float64(i)}, window, viewport)
		d.Press(handle, Point{X: float64(i)}, window, viewport)
		bus.Move(Point{X: float64(i + 1)})
		assert.Equal(t, 1, bus.Attached())
		bus.Release()
		assert.Zero(t, bus.Attached())
	}
}

func TestTeardownDetachesInFlightDrag(t *testing.T) {
	bus := NewBus()
	d := New(bus)

	d.Press(handle, Point{}, window, viewport)
	require.Equal(t, 1, bus.Attached())

	d.Teardown()
	assert.Zero(t, bus.Attached())
	assert.False(t, d.Dragging())

	assert.NotPanics(t, d.Teardown)
}

func TestClampToViewport(t *testing.T) {
	tests := []struct {
		name string
		pos  Point
		size Size
		want Point
	}{
		{"inside", Point{X: 100, Y: 100}, window, Point{X: 100, Y: 100}},
		{"left and top", Point{X: -50, Y: -20}, window, Point{X: 0, Y: 0}},
		{"right and bottom", Point{X: 1000, Y: 700}, window, Point{X: 680, Y: 400}},
		{"larger than viewport", Point{X: 30, Y: 30}, Size{Width: 2000, Height: 1000}, Point{X: 0, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampToViewport(tt.pos, tt.size, viewport))
		})
	}
}

func TestBusAttachIsIdempotent(t *testing.T) {
	bus := NewBus()
	d := New(bus)

	bus.Attach(d)
	bus.Attach(d)
	assert.Equal(t, 1, bus.Attached())

	bus.Detach(d)
	bus.Detach(d)
	assert.Zero(t, bus.Attached())
}
