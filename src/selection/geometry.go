package selection

import "math"

// Point is a screen-space position in physical pixels.
type Point struct {
	X float64
	Y float64
}

// Bounds is the integer rectangle derived from the two selection corners.
type Bounds struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Right returns the x coordinate of the right edge.
func (b Bounds) Right() int { return b.X + b.W }

// Bottom returns the y coordinate of the bottom edge.
func (b Bounds) Bottom() int { return b.Y + b.H }

// Contains reports whether (x, y) lies inside b. Edges count as inside.
func (b Bounds) Contains(x, y float64) bool {
	return x >= float64(b.X) && y >= float64(b.Y) &&
		x <= float64(b.Right()) && y <= float64(b.Bottom())
}

// Empty reports whether b has no area.
func (b Bounds) Empty() bool { return b.W <= 0 || b.H <= 0 }

// clampPoint maps negative and NaN coordinates to zero.
func clampPoint(x, y float64) Point {
	return Point{X: nonNegative(x), Y: nonNegative(y)}
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func boundsFrom(a, b Point) Bounds {
	return Bounds{
		X: int(math.Min(a.X, b.X)),
		Y: int(math.Min(a.Y, b.Y)),
		W: int(math.Abs(a.X - b.X)),
		H: int(math.Abs(a.Y - b.Y)),
	}
}

// clampAxis keeps a span of the given size inside [0, limit].
func clampAxis(pos, size, limit float64) float64 {
	if pos < 0 {
		pos = 0
	}
	if pos+size > limit {
		pos = math.Max(limit-size, 0)
	}
	return pos
}
