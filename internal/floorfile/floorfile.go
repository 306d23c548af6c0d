// Package floorfile exports generated floors to YAML and loads them back.
package floorfile

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/procgen/internal/dungeon"
)

// Map glyphs
const (
	GlyphWall    = '#'
	GlyphFloor   = '.'
	GlyphDoor    = '+'
	GlyphUnknown = '?'
)

// Floor is a generated floor in file form
type Floor struct {
	Floor    int         `yaml:"floor"`
	Seed     int64       `yaml:"seed"`
	Width    int         `yaml:"width"`
	Height   int         `yaml:"height"`
	Topology string      `yaml:"topology"`
	Tileset  TilesetYAML `yaml:"tileset"`
	Spawn    PointYAML   `yaml:"spawn"`
	Exit     PointYAML   `yaml:"exit"`
	ExitRoom int         `yaml:"exit_room"`
	Rooms    []RoomYAML  `yaml:"rooms"`
	Map      []string    `yaml:"map"`
}

// TilesetYAML holds the tile ids the floor was generated with
type TilesetYAML struct {
	Wall  int `yaml:"wall"`
	Floor int `yaml:"floor"`
	Door  int `yaml:"door"`
}

// PointYAML is a tile position
type PointYAML struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// RoomYAML is a room rectangle
type RoomYAML struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// TileReader reads placed tiles; satisfied by *grid.Memory
type TileReader interface {
	Tile(layer, x, y int) dungeon.TileID
}

// FromResult builds a Floor from a successful pass and the grid it wrote
func FromResult(res *dungeon.Result, tiles TileReader, topology dungeon.Topology) *Floor {
	f := &Floor{
		Floor:    res.Floor,
		Seed:     res.Seed,
		Width:    res.Width,
		Height:   res.Height,
		Topology: topology.String(),
		Tileset: TilesetYAML{
			Wall:  int(res.TileSet.Wall),
			Floor: int(res.TileSet.Floor),
			Door:  int(res.TileSet.Door),
		},
		Spawn:    PointYAML{X: res.Spawn.X, Y: res.Spawn.Y},
		Exit:     PointYAML{X: res.Exit.X, Y: res.Exit.Y},
		ExitRoom: res.ExitRoom,
	}

	for _, r := range res.Rooms {
		f.Rooms = append(f.Rooms, RoomYAML{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height})
	}

	f.Map = make([]string, res.Height)
	row := make([]byte, res.Width)
	for y := 0; y < res.Height; y++ {
		for x := 0; x < res.Width; x++ {
			row[x] = f.glyph(tiles.Tile(dungeon.BaseLayer, x, y))
		}
		f.Map[y] = string(row)
	}

	return f
}

// TileSet returns the floor's tile ids
func (f *Floor) TileSet() dungeon.TileSet {
	return dungeon.TileSet{
		Wall:  dungeon.TileID(f.Tileset.Wall),
		Floor: dungeon.TileID(f.Tileset.Floor),
		Door:  dungeon.TileID(f.Tileset.Door),
	}
}

// RoomList returns the rooms as dungeon rooms
func (f *Floor) RoomList() []dungeon.Room {
	rooms := make([]dungeon.Room, len(f.Rooms))
	for i, r := range f.Rooms {
		rooms[i] = dungeon.NewRoom(r.X, r.Y, r.Width, r.Height)
	}
	return rooms
}

// Apply writes the map onto layer 0 of a grid. Unknown glyphs are skipped.
func (f *Floor) Apply(g dungeon.TileGrid) {
	ts := f.TileSet()
	for y, row := range f.Map {
		for x := 0; x < len(row); x++ {
			var id dungeon.TileID
			switch row[x] {
			case GlyphWall:
				id = ts.Wall
			case GlyphFloor:
				id = ts.Floor
			case GlyphDoor:
				id = ts.Door
			default:
				continue
			}
			g.SetTile(dungeon.BaseLayer, x, y, id)
		}
	}
}

func (f *Floor) glyph(id dungeon.TileID) byte {
	switch int(id) {
	case f.Tileset.Wall:
		return GlyphWall
	case f.Tileset.Floor:
		return GlyphFloor
	case f.Tileset.Door:
		return GlyphDoor
	default:
		return GlyphUnknown
	}
}

// Validate checks that the map matches the declared size
func (f *Floor) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", f.Width, f.Height)
	}
	if len(f.Map) != f.Height {
		return fmt.Errorf("map has %d rows, want %d", len(f.Map), f.Height)
	}
	for y, row := range f.Map {
		if len(row) != f.Width {
			return fmt.Errorf("map row %d has %d columns, want %d", y, len(row), f.Width)
		}
	}
	if err := f.TileSet().Validate(); err != nil {
		return err
	}
	return nil
}

// Write writes a floor to a YAML file
func Write(path string, f *Floor) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# Floor %d - %dx%d\n", f.Floor, f.Width, f.Height)
	fmt.Fprintf(file, "# Generated with seed: %d\n", f.Seed)
	fmt.Fprintf(file, "# Room count: %d\n\n", len(f.Rooms))

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)

	if err := encoder.Encode(floorNode(f)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to flush YAML: %w", err)
	}

	return nil
}

// Load reads a floor written by Write
func Load(path string) (*Floor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read floor file: %w", err)
	}

	var f Floor
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse floor file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid floor file %s: %w", path, err)
	}

	return &f, nil
}

// floorNode lays the floor out with rooms and points in flow style and map
// rows quoted, so the map reads as a picture
func floorNode(f *Floor) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}

	addIntField(node, "floor", int64(f.Floor))
	addIntField(node, "seed", f.Seed)
	addIntField(node, "width", int64(f.Width))
	addIntField(node, "height", int64(f.Height))
	addStringField(node, "topology", f.Topology)

	tileset := flowMapping()
	addIntField(tileset, "wall", int64(f.Tileset.Wall))
	addIntField(tileset, "floor", int64(f.Tileset.Floor))
	addIntField(tileset, "door", int64(f.Tileset.Door))
	addNodeField(node, "tileset", tileset)

	addNodeField(node, "spawn", pointNode(f.Spawn))
	addNodeField(node, "exit", pointNode(f.Exit))
	addIntField(node, "exit_room", int64(f.ExitRoom))

	rooms := &yaml.Node{Kind: yaml.SequenceNode}
	for _, r := range f.Rooms {
		room := flowMapping()
		addIntField(room, "x", int64(r.X))
		addIntField(room, "y", int64(r.Y))
		addIntField(room, "width", int64(r.Width))
		addIntField(room, "height", int64(r.Height))
		rooms.Content = append(rooms.Content, room)
	}
	addNodeField(node, "rooms", rooms)

	rows := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range f.Map {
		rows.Content = append(rows.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Style: yaml.DoubleQuotedStyle,
			Value: row,
		})
	}
	addNodeField(node, "map", rows)

	return node
}

func flowMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
}

func pointNode(p PointYAML) *yaml.Node {
	n := flowMapping()
	addIntField(n, "x", int64(p.X))
	addIntField(n, "y", int64(p.Y))
	return n
}

func addStringField(node *yaml.Node, key, value string) {
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	)
}

func addIntField(node *yaml.Node, key string, value int64) {
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(value, 10)},
	)
}

func addNodeField(node *yaml.Node, key string, value *yaml.Node) {
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		value,
	)
}
