package dungeon

import "fmt"

// TileID identifies a tile template in the host's tileset. Zero means none.
type TileID int

// Layer 0 holds the structural tiles written by the generator
const BaseLayer = 0

// Anchor positions on the tileset reference row
var (
	WallAnchor   = Point{X: 0, Y: 0}
	FloorAnchor  = Point{X: 1, Y: 0}
	DoorAnchor   = Point{X: 2, Y: 0}
	PlayerAnchor = Point{X: 3, Y: 0} // Reserved for the host's player marker; never read here
)

// TileSet holds the three tile ids a run writes
type TileSet struct {
	Wall  TileID
	Floor TileID
	Door  TileID
}

// Validate checks that every id is set and no two coincide
func (ts TileSet) Validate() error {
	if ts.Wall == 0 || ts.Floor == 0 || ts.Door == 0 {
		return fmt.Errorf("%w: missing id (wall=%d floor=%d door=%d)", ErrInvalidTileset, ts.Wall, ts.Floor, ts.Door)
	}
	if ts.Wall == ts.Floor || ts.Wall == ts.Door || ts.Floor == ts.Door {
		return fmt.Errorf("%w: duplicate id (wall=%d floor=%d door=%d)", ErrInvalidTileset, ts.Wall, ts.Floor, ts.Door)
	}
	return nil
}

// ResolveTileSet reads the wall, floor and door ids from their anchors
func ResolveTileSet(grid TileGrid) (TileSet, error) {
	if grid == nil {
		return TileSet{}, ErrGridNotReady
	}
	ts := TileSet{
		Wall:  grid.TileID(WallAnchor.X, WallAnchor.Y, BaseLayer),
		Floor: grid.TileID(FloorAnchor.X, FloorAnchor.Y, BaseLayer),
		Door:  grid.TileID(DoorAnchor.X, DoorAnchor.Y, BaseLayer),
	}
	return ts, ts.Validate()
}

// TileGrid is the host-owned tile buffer
type TileGrid interface {
	// TileID returns the template id stored at a tileset reference position
	TileID(x, y, layer int) TileID
	// SetTile writes a tile; writes outside the grid are ignored
	SetTile(layer, x, y int, id TileID)
	Width() int
	Height() int
}

// Locator places the player avatar on the grid
type Locator interface {
	Locate(x, y int)
}

// Refresher asks the renderer to redraw the grid
type Refresher interface {
	Refresh()
}

// Rand is the random source used for every draw during a run.
// *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}
