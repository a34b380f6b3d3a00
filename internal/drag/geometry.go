package drag

import "strings"

// Point is a position in CSS pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a width and height in CSS pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Target describes the element under the pointer at press time.
type Target struct {
	// Handle is true when the target is the handle region or inside it.
	Handle    bool   `json:"handle"`
	Tag       string `json:"tag"`
	ParentTag string `json:"parent_tag"`
}

// ExcludeButtons rejects presses on a button or a direct child of one.
func ExcludeButtons(t Target) bool {
	return strings.EqualFold(t.Tag, "button") || strings.EqualFold(t.ParentTag, "button")
}

// Bounds confines a proposed position for an element of the given size.
type Bounds func(pos Point, size, viewport Size) Point

// Unbounded leaves the position as is; the terminal window can be dragged
// partly off screen.
func Unbounded(pos Point, _, _ Size) Point {
	return pos
}

// ClampToViewport keeps the whole element inside the viewport. An element
// larger than the viewport is pinned to the top-left corner.
func ClampToViewport(pos Point, size, viewport Size) Point {
	return Point{
		X: max(0, min(pos.X, viewport.Width-size.Width)),
		Y: max(0, min(pos.Y, viewport.Height-size.Height)),
	}
}
