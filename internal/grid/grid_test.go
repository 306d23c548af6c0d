package grid

import (
	"math/rand"
	"testing"

	"github.com/lawnchairsociety/procgen/internal/dungeon"
)

var tiles = dungeon.TileSet{Wall: 10, Floor: 11, Door: 12}

func TestNewWithTileSetResolves(t *testing.T) {
	g := NewWithTileSet(20, 15, tiles)

	got, err := dungeon.ResolveTileSet(g)
	if err != nil {
		t.Fatalf("ResolveTileSet() error = %v", err)
	}
	if got != tiles {
		t.Errorf("ResolveTileSet() = %+v, want %+v", got, tiles)
	}
}

func TestNegativeSize(t *testing.T) {
	g := New(-4, -2)
	if g.Width() != 0 || g.Height() != 0 {
		t.Errorf("size = %dx%d, want 0x0", g.Width(), g.Height())
	}
}

func TestSetTileBounds(t *testing.T) {
	g := New(5, 4)

	g.SetTile(0, -1, 0, 7)
	g.SetTile(0, 5, 0, 7)
	g.SetTile(0, 0, 4, 7)
	g.SetTile(Layers, 1, 1, 7)

	if n := len(g.Dirty()); n != 0 {
		t.Errorf("out-of-range writes marked %d cells dirty", n)
	}
	if g.Tile(0, 5, 0) != 0 || g.Tile(-1, 0, 0) != 0 {
		t.Error("out-of-range reads should return 0")
	}

	g.SetTile(2, 4, 3, 7)
	if g.Tile(2, 4, 3) != 7 {
		t.Errorf("Tile(2, 4, 3) = %d, want 7", g.Tile(2, 4, 3))
	}
}

func TestFillKeepsAnchors(t *testing.T) {
	g := NewWithTileSet(10, 10, tiles)
	g.Fill(dungeon.BaseLayer, tiles.Wall)

	if g.Count(dungeon.BaseLayer, tiles.Wall) != 100 {
		t.Errorf("Count(wall) = %d, want 100", g.Count(dungeon.BaseLayer, tiles.Wall))
	}
	if g.TileID(dungeon.FloorAnchor.X, dungeon.FloorAnchor.Y, dungeon.BaseLayer) != tiles.Floor {
		t.Error("filling the map overwrote the floor anchor")
	}
	if g.TileID(1, 1, dungeon.BaseLayer) != 0 {
		t.Error("TileID outside the reference row should be 0")
	}
}

func TestDirtyTracking(t *testing.T) {
	g := New(6, 6)

	g.SetTile(0, 3, 2, 1)
	g.SetTile(0, 1, 2, 1)
	g.SetTile(1, 0, 0, 1)
	g.SetTile(0, 5, 0, 1)
	g.SetTile(0, 5, 0, 1) // Unchanged value

	want := []Cell{{0, 5, 0}, {0, 1, 2}, {0, 3, 2}, {1, 0, 0}}
	got := g.Dirty()
	if len(got) != len(want) {
		t.Fatalf("Dirty() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Dirty()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if !g.IsDirty(0, 3, 2) || g.IsDirty(0, 4, 4) {
		t.Error("IsDirty disagrees with Dirty")
	}

	g.ClearDirty()
	if len(g.Dirty()) != 0 {
		t.Error("ClearDirty left cells behind")
	}

	g.SetTile(0, 3, 2, 1)
	if g.IsDirty(0, 3, 2) {
		t.Error("rewriting the same value marked the cell dirty")
	}
}

func TestSnapshot(t *testing.T) {
	g := New(3, 2)
	g.SetTile(0, 2, 1, 9)

	snap := g.Snapshot(0)
	if len(snap) != 2 || len(snap[0]) != 3 {
		t.Fatalf("Snapshot size = %dx%d, want 3x2", len(snap[0]), len(snap))
	}
	if snap[1][2] != 9 {
		t.Errorf("snap[1][2] = %d, want 9", snap[1][2])
	}

	snap[1][2] = 4
	if g.Tile(0, 2, 1) != 9 {
		t.Error("Snapshot shares storage with the grid")
	}
}

func TestAnchorsCopy(t *testing.T) {
	g := NewWithTileSet(4, 4, tiles)
	a := g.Anchors(dungeon.BaseLayer)
	if len(a) != 3 || a[dungeon.DoorAnchor.X] != tiles.Door {
		t.Fatalf("Anchors() = %v", a)
	}
	a[0] = 99
	if g.TileID(0, 0, dungeon.BaseLayer) != tiles.Wall {
		t.Error("Anchors() shares storage with the grid")
	}
}

func TestGeneratorOnMemory(t *testing.T) {
	g := NewWithTileSet(48, 32, tiles)

	res, err := dungeon.NewGenerator(dungeon.DefaultParams()).Generate(dungeon.Request{
		Grid: g,
		Rand: rand.New(rand.NewSource(8)),
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if g.Count(dungeon.BaseLayer, tiles.Door) != 1 {
		t.Errorf("door count = %d, want 1", g.Count(dungeon.BaseLayer, tiles.Door))
	}
	if g.Tile(dungeon.BaseLayer, res.Exit.X, res.Exit.Y) != tiles.Door {
		t.Error("exit is not a door")
	}
	if g.Count(dungeon.BaseLayer, 0) != 0 {
		t.Error("generator left unset cells")
	}
}
