// Package grid provides an in-memory, three-layer tile buffer that satisfies
// dungeon.TileGrid. It backs the command-line tool, the tests, and the
// websocket bridge's mirror of a remote renderer's map.
package grid

import (
	"sort"
	"sync"

	"github.com/zyedidia/generic/mapset"

	"github.com/lawnchairsociety/procgen/internal/dungeon"
)

// Layers is the number of tile layers a grid holds
const Layers = 3

// Cell identifies one tile position on one layer
type Cell struct {
	Layer, X, Y int
}

// Memory is a dense tile buffer with a separate tileset reference row per
// layer. TileID reads the reference row, not the map, so filling the map
// never clobbers the anchors.
type Memory struct {
	width, height int
	tiles         [Layers][]dungeon.TileID
	anchors       [Layers]map[int]dungeon.TileID
	dirty         mapset.Set[Cell]
	mu            sync.RWMutex
}

// New creates an empty grid of the given size
func New(width, height int) *Memory {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m := &Memory{
		width:  width,
		height: height,
		dirty:  mapset.New[Cell](),
	}
	for l := 0; l < Layers; l++ {
		m.tiles[l] = make([]dungeon.TileID, width*height)
		m.anchors[l] = make(map[int]dungeon.TileID)
	}
	return m
}

// NewWithTileSet creates a grid whose reference row holds the given tiles at
// the wall, floor and door anchors
func NewWithTileSet(width, height int, ts dungeon.TileSet) *Memory {
	m := New(width, height)
	m.SetAnchor(dungeon.WallAnchor.X, dungeon.BaseLayer, ts.Wall)
	m.SetAnchor(dungeon.FloorAnchor.X, dungeon.BaseLayer, ts.Floor)
	m.SetAnchor(dungeon.DoorAnchor.X, dungeon.BaseLayer, ts.Door)
	return m
}

// Width returns the grid width in tiles
func (m *Memory) Width() int {
	return m.width
}

// Height returns the grid height in tiles
func (m *Memory) Height() int {
	return m.height
}

// SetAnchor stores a template id on a layer's reference row
func (m *Memory) SetAnchor(x, layer int, id dungeon.TileID) {
	if layer < 0 || layer >= Layers {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anchors[layer][x] = id
}

// TileID returns the template id at a reference position. Only row 0 exists.
func (m *Memory) TileID(x, y, layer int) dungeon.TileID {
	if layer < 0 || layer >= Layers || y != 0 {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.anchors[layer][x]
}

// Anchors returns a copy of the reference row for a layer
func (m *Memory) Anchors(layer int) map[int]dungeon.TileID {
	out := make(map[int]dungeon.TileID)
	if layer < 0 || layer >= Layers {
		return out
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for x, id := range m.anchors[layer] {
		out[x] = id
	}
	return out
}

// InBounds reports whether (x, y) lies on the map
func (m *Memory) InBounds(x, y int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < m.height
}

// SetTile writes a tile. Out-of-range layers and positions are ignored.
func (m *Memory) SetTile(layer, x, y int, id dungeon.TileID) {
	if layer < 0 || layer >= Layers || !m.InBounds(x, y) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := y*m.width + x
	if m.tiles[layer][idx] == id {
		return
	}
	m.tiles[layer][idx] = id
	m.dirty.Put(Cell{Layer: layer, X: x, Y: y})
}

// Tile returns the tile at a map position, or 0 outside the grid
func (m *Memory) Tile(layer, x, y int) dungeon.TileID {
	if layer < 0 || layer >= Layers || !m.InBounds(x, y) {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tiles[layer][y*m.width+x]
}

// Fill writes id to every cell of a layer
func (m *Memory) Fill(layer int, id dungeon.TileID) {
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			m.SetTile(layer, x, y, id)
		}
	}
}

// Count returns how many cells of a layer hold id
func (m *Memory) Count(layer int, id dungeon.TileID) int {
	if layer < 0 || layer >= Layers {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, t := range m.tiles[layer] {
		if t == id {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of a layer as rows
func (m *Memory) Snapshot(layer int) [][]dungeon.TileID {
	rows := make([][]dungeon.TileID, m.height)
	if layer < 0 || layer >= Layers {
		for y := range rows {
			rows[y] = make([]dungeon.TileID, m.width)
		}
		return rows
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for y := 0; y < m.height; y++ {
		rows[y] = make([]dungeon.TileID, m.width)
		copy(rows[y], m.tiles[layer][y*m.width:(y+1)*m.width])
	}
	return rows
}

// Dirty returns the cells changed since the last ClearDirty, sorted by
// layer, row, then column
func (m *Memory) Dirty() []Cell {
	m.mu.RLock()
	cells := make([]Cell, 0, m.dirty.Size())
	m.dirty.Each(func(c Cell) {
		cells = append(cells, c)
	})
	m.mu.RUnlock()

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Layer != cells[j].Layer {
			return cells[i].Layer < cells[j].Layer
		}
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	return cells
}

// IsDirty reports whether a cell changed since the last ClearDirty
func (m *Memory) IsDirty(layer, x, y int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirty.Has(Cell{Layer: layer, X: x, Y: y})
}

// ClearDirty forgets all pending changes
func (m *Memory) ClearDirty() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty = mapset.New[Cell]()
}
