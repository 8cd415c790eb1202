package geometry

// Point is a position in logical coordinates.
type Point struct {
	X int
	Y int
}

// Add returns p shifted by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p shifted by the negation of q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// PointF is a position in logical coordinates with sub-pixel precision, as
// reported by pointer hardware.
type PointF struct {
	X float64
	Y float64
}

// Round converts to the nearest integer position.
func (p PointF) Round() Point {
	return Point{X: roundHalfAway(p.X), Y: roundHalfAway(p.Y)}
}

// Int converts by truncating toward zero.
func (p PointF) Int() Point {
	return Point{X: int(p.X), Y: int(p.Y)}
}

func roundHalfAway(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

// Rect is an axis-aligned rectangle in logical coordinates. Width and Height
// are zero or positive for every rect produced by this package.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Loc returns the top-left corner.
func (r Rect) Loc() Point {
	return Point{X: r.X, Y: r.Y}
}

// Center returns the midpoint, truncating toward the top-left.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// IsEmpty reports whether the rect covers no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p falls inside r. Edges are half-open: the left
// and top edges are inside, the right and bottom edges are not.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Intersects reports whether r and o overlap in a region with area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Intersection returns the overlapping region, or the zero Rect when r and o
// do not overlap.
func (r Rect) Intersection(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Union returns the smallest rect covering both r and o.
func (r Rect) Union(o Rect) Rect {
	x1 := min(r.X, o.X)
	y1 := min(r.Y, o.Y)
	x2 := max(r.X+r.Width, o.X+o.Width)
	y2 := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// CenteredIn returns r resized nowhere but moved so its center coincides
// with the center of outer.
func (r Rect) CenteredIn(outer Rect) Rect {
	r.X = outer.X + (outer.Width-r.Width)/2
	r.Y = outer.Y + (outer.Height-r.Height)/2
	return r
}

// Gaps are the outer and inner paddings applied while tiling a workspace.
type Gaps struct {
	Inner int
	Outer int
}

// Shrink returns r inset by the outer gap on every side, clamped so the
// result never has negative size.
func (g Gaps) Shrink(r Rect) Rect {
	r.X += g.Outer
	r.Y += g.Outer
	r.Width -= g.Outer * 2
	r.Height -= g.Outer * 2
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	return r
}
