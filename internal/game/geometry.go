package game

import "math"

// Vec2 is a point or displacement in world space.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Wall is an axis-aligned obstacle. Walls are fixed at startup and never
// mutated, so the slice holding them can be shared freely.
type Wall struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultWalls returns the standard arena: a 30 unit border plus seven
// interior obstacles.
func DefaultWalls() []Wall {
	return []Wall{
		{0, 0, MapWidth, BorderThickness},
		{0, MapHeight - BorderThickness, MapWidth, BorderThickness},
		{0, 0, BorderThickness, MapHeight},
		{MapWidth - BorderThickness, 0, BorderThickness, MapHeight},

		{300, 200, 300, 30},
		{800, 400, 30, 300},
		{600, 600, 400, 30},
		{1000, 200, 30, 400},
		{1500, 700, 30, 300},
		{1300, 1000, 400, 30},
		{400, 800, 200, 30},
	}
}

// ContainsPoint reports whether (x, y) lies strictly inside the wall.
func (w Wall) ContainsPoint(x, y float64) bool {
	return x > w.X && x < w.X+w.Width && y > w.Y && y < w.Y+w.Height
}

// OverlapsBox reports whether the square of half-size r centred on (x, y)
// overlaps the wall. Touching edges do not count.
func (w Wall) OverlapsBox(x, y, r float64) bool {
	return x+r > w.X && x-r < w.X+w.Width && y+r > w.Y && y-r < w.Y+w.Height
}

// BlockedByWalls reports whether a player centred at (x, y) would overlap
// any wall. The circle is approximated by its bounding box.
func BlockedByWalls(walls []Wall, x, y float64) bool {
	for i := range walls {
		if walls[i].OverlapsBox(x, y, PlayerRadius) {
			return true
		}
	}
	return false
}

// PointInWalls reports whether (x, y) is strictly inside any wall.
func PointInWalls(walls []Wall, x, y float64) bool {
	for i := range walls {
		if walls[i].ContainsPoint(x, y) {
			return true
		}
	}
	return false
}

func distance(ax, ay, bx, by float64) float64 {
	return math.Hypot(bx-ax, by-ay)
}

func insideMap(x, y float64) bool {
	return x >= 0 && x <= MapWidth && y >= 0 && y <= MapHeight
}
