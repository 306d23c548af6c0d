package dungeon

// CarveCorridor joins the centers of a and b with a two-segment path of floor
// tiles. The orientation is drawn from rng: horizontal-first runs along a's
// center row then b's center column, vertical-first along a's center column
// then b's center row.
func CarveCorridor(grid TileGrid, a, b Room, floor TileID, rng Rand) {
	ax, ay := a.CenterX(), a.CenterY()
	bx, by := b.CenterX(), b.CenterY()

	if rng.Intn(2) == 0 {
		carveH(grid, ax, bx, ay, floor)
		carveV(grid, ay, by, bx, floor)
	} else {
		carveV(grid, ay, by, ax, floor)
		carveH(grid, ax, bx, by, floor)
	}
}

func carveH(grid TileGrid, x1, x2, y int, id TileID) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		grid.SetTile(BaseLayer, x, y, id)
	}
}

func carveV(grid TileGrid, y1, y2, x int, id TileID) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		grid.SetTile(BaseLayer, x, y, id)
	}
}

// CarveRoom fills the room rectangle with the floor tile
func CarveRoom(grid TileGrid, r Room, floor TileID) {
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			grid.SetTile(BaseLayer, x, y, floor)
		}
	}
}

// Link is a corridor between two rooms, by index
type Link struct {
	From, To int
}

// Connections returns the corridors to carve after room i is carved.
// Hub links every room to the last one, the last to itself included.
func (t Topology) Connections(i, count int) []Link {
	switch t {
	case TopologyChain:
		if i == 0 {
			return nil
		}
		return []Link{{From: i - 1, To: i}}
	default:
		return []Link{{From: i, To: count - 1}}
	}
}
