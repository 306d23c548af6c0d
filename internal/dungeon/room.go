package dungeon

import "fmt"

// Room is an axis-aligned rectangle of floor tiles. X, Y is the top-left cell.
type Room struct {
	X, Y          int
	Width, Height int
}

// NewRoom creates a room at the given position
func NewRoom(x, y, width, height int) Room {
	return Room{X: x, Y: y, Width: width, Height: height}
}

// CenterX returns the column of the room's center cell
func (r Room) CenterX() int {
	return r.X + r.Width/2
}

// CenterY returns the row of the room's center cell
func (r Room) CenterY() int {
	return r.Y + r.Height/2
}

// Center returns the room's center cell
func (r Room) Center() Point {
	return Point{X: r.CenterX(), Y: r.CenterY()}
}

// Right returns the first column past the room's right edge
func (r Room) Right() int {
	return r.X + r.Width
}

// Bottom returns the first row past the room's bottom edge
func (r Room) Bottom() int {
	return r.Y + r.Height
}

// Contains reports whether the cell lies inside the room
func (r Room) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Overlaps reports whether the two rooms intersect once each is expanded by
// gap tiles on every side.
func (r Room) Overlaps(other Room, gap int) bool {
	return r.X-gap < other.Right()+gap &&
		other.X-gap < r.Right()+gap &&
		r.Y-gap < other.Bottom()+gap &&
		other.Y-gap < r.Bottom()+gap
}

// Distance returns the Manhattan distance between the two room centers
func (r Room) Distance(other Room) int {
	return abs(r.CenterX()-other.CenterX()) + abs(r.CenterY()-other.CenterY())
}

// AspectOK reports whether the longer side is at most maxAspect times the shorter
func (r Room) AspectOK(maxAspect float64) bool {
	if r.Width <= 0 || r.Height <= 0 {
		return false
	}
	long, short := max(r.Width, r.Height), min(r.Width, r.Height)
	return float64(long)/float64(short) <= maxAspect
}

func (r Room) String() string {
	return fmt.Sprintf("room(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Point is a grid coordinate
type Point struct {
	X, Y int
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
