package dungeon

// fakeGrid is a map-backed TileGrid for tests
type fakeGrid struct {
	w, h    int
	tiles   map[[3]int]TileID
	anchors map[[3]int]TileID
	writes  int
}

func newFakeGrid(w, h int, ts TileSet) *fakeGrid {
	g := &fakeGrid{
		w:       w,
		h:       h,
		tiles:   make(map[[3]int]TileID),
		anchors: make(map[[3]int]TileID),
	}
	g.anchors[[3]int{0, WallAnchor.X, WallAnchor.Y}] = ts.Wall
	g.anchors[[3]int{0, FloorAnchor.X, FloorAnchor.Y}] = ts.Floor
	g.anchors[[3]int{0, DoorAnchor.X, DoorAnchor.Y}] = ts.Door
	return g
}

func (g *fakeGrid) TileID(x, y, layer int) TileID {
	return g.anchors[[3]int{layer, x, y}]
}

func (g *fakeGrid) SetTile(layer, x, y int, id TileID) {
	if x < 0 || x >= g.w || y < 0 || y >= g.h {
		return
	}
	g.writes++
	g.tiles[[3]int{layer, x, y}] = id
}

func (g *fakeGrid) Width() int  { return g.w }
func (g *fakeGrid) Height() int { return g.h }

func (g *fakeGrid) at(x, y int) TileID {
	return g.tiles[[3]int{0, x, y}]
}

func (g *fakeGrid) count(id TileID) int {
	n := 0
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			if g.at(x, y) == id {
				n++
			}
		}
	}
	return n
}

type fakePlayer struct {
	x, y  int
	calls int
}

func (p *fakePlayer) Locate(x, y int) {
	p.x, p.y = x, y
	p.calls++
}

type fakeScene struct {
	refreshes int
}

func (s *fakeScene) Refresh() {
	s.refreshes++
}

// scriptedRand returns its values in order, then zeros
type scriptedRand struct {
	values []int
	calls  int
}

func (r *scriptedRand) Intn(n int) int {
	r.calls++
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[0]
	r.values = r.values[1:]
	if v >= n {
		return n - 1
	}
	return v
}

var testTiles = TileSet{Wall: 1, Floor: 2, Door: 3}
