package dungeon

import (
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/procgen/internal/logger"
)

// State is a step of a generation run
type State int

const (
	StateIdle State = iota
	StateValidatingTiles
	StateFilling
	StateSamplingRooms
	StateCarving
	StatePlacingSpawnAndExit
	StateRefreshing
	StateDone
	StateAborted
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidatingTiles:
		return "validating_tiles"
	case StateFilling:
		return "filling"
	case StateSamplingRooms:
		return "sampling_rooms"
	case StateCarving:
		return "carving"
	case StatePlacingSpawnAndExit:
		return "placing_spawn_and_exit"
	case StateRefreshing:
		return "refreshing"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Request carries the ports and seed for one generation run.
// Player and Scene are optional.
type Request struct {
	Grid   TileGrid
	Player Locator
	Scene  Refresher
	Seed   int64
	Floor  int
	Rand   Rand // Overrides the seeded source when set
}

// Result describes what a run produced. It is returned for failed runs too,
// holding whatever had been decided before the abort.
type Result struct {
	Seed          int64
	Floor         int
	Width, Height int
	Target        int
	TileSet       TileSet
	Rooms         []Room
	Links         []Link
	Spawn         Point
	Exit          Point
	ExitRoom      int
	Success       bool
	State         State
	AbortedAt     State   // Set only when State is StateAborted
	Warnings      []error // Non-fatal conditions reported during the run
	Err           error
	Trace         []State
}

// Generator runs the fill, sample, carve, place, refresh pipeline
type Generator struct {
	params Params
}

// NewGenerator creates a generator with the given parameters
func NewGenerator(params Params) *Generator {
	return &Generator{params: params}
}

// Params returns the generator's parameters
func (g *Generator) Params() Params {
	return g.params
}

// Generate runs one pass to completion. The returned Result is never nil.
// A non-nil error is one of ErrGridNotReady, ErrInvalidTileset or
// ErrNoRoomsPlaced, possibly wrapped; the grid keeps whatever was written
// before the abort.
func (g *Generator) Generate(req Request) (*Result, error) {
	res := &Result{
		Seed:     req.Seed,
		Floor:    req.Floor,
		ExitRoom: -1,
		State:    StateIdle,
		Trace:    []State{StateIdle},
	}

	rng := req.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(req.Seed))
	}

	// Validate tiles
	g.enter(res, StateValidatingTiles)
	grid := req.Grid
	if grid == nil {
		return g.abort(res, ErrGridNotReady)
	}
	res.Width, res.Height = grid.Width(), grid.Height()

	tiles, err := ResolveTileSet(grid)
	if err != nil {
		return g.abort(res, err)
	}
	res.TileSet = tiles

	if !g.params.Fits(res.Width, res.Height) {
		g.warn(res, fmt.Errorf("%w: %dx%d, rooms need at least %dx%d",
			ErrMapTooSmall, res.Width, res.Height, g.params.MinRoomSize+2, g.params.MinRoomSize+2))
	}

	// Fill
	g.enter(res, StateFilling)
	for y := 0; y < res.Height; y++ {
		for x := 0; x < res.Width; x++ {
			grid.SetTile(BaseLayer, x, y, tiles.Wall)
		}
	}

	// Sample rooms
	g.enter(res, StateSamplingRooms)
	res.Target = g.params.TargetRoomCount(res.Width, res.Height)
	res.Rooms = SampleRooms(res.Width, res.Height, res.Target, g.params, rng)
	if len(res.Rooms) == 0 {
		return g.abort(res, fmt.Errorf("%w after %d attempts on %dx%d map",
			ErrNoRoomsPlaced, g.params.MaxAttempts, res.Width, res.Height))
	}
	if len(res.Rooms) < res.Target {
		logger.Warning("Room sampling fell short of target",
			"placed", len(res.Rooms), "target", res.Target, "attempts", g.params.MaxAttempts)
	}

	// Carve rooms and corridors
	g.enter(res, StateCarving)
	for i, room := range res.Rooms {
		CarveRoom(grid, room, tiles.Floor)
		for _, link := range g.params.Topology.Connections(i, len(res.Rooms)) {
			CarveCorridor(grid, res.Rooms[link.From], res.Rooms[link.To], tiles.Floor, rng)
			res.Links = append(res.Links, link)
		}
	}

	// Spawn and exit
	g.enter(res, StatePlacingSpawnAndExit)
	res.Spawn = res.Rooms[0].Center()
	if req.Player != nil {
		req.Player.Locate(res.Spawn.X, res.Spawn.Y)
	}
	if exit, ok := SelectExit(res.Rooms, 0); ok {
		res.ExitRoom = exit
		res.Exit = res.Rooms[exit].Center()
		if tiles.Door != 0 {
			grid.SetTile(BaseLayer, res.Exit.X, res.Exit.Y, tiles.Door)
		}
	}

	// Refresh
	g.enter(res, StateRefreshing)
	if req.Scene != nil {
		req.Scene.Refresh()
	}

	g.enter(res, StateDone)
	res.Success = true

	logger.Info("Dungeon generated",
		"floor", res.Floor,
		"seed", res.Seed,
		"width", res.Width,
		"height", res.Height,
		"rooms", len(res.Rooms),
		"target", res.Target,
		"spawn_x", res.Spawn.X,
		"spawn_y", res.Spawn.Y,
		"exit_x", res.Exit.X,
		"exit_y", res.Exit.Y)

	return res, nil
}

func (g *Generator) enter(res *Result, s State) {
	res.State = s
	res.Trace = append(res.Trace, s)
	logger.Debug("Generation state", "state", s.String(), "floor", res.Floor)
}

func (g *Generator) warn(res *Result, err error) {
	res.Warnings = append(res.Warnings, err)
	logger.Warning("Generation condition", "error", err, "state", res.State.String())
}

func (g *Generator) abort(res *Result, err error) (*Result, error) {
	res.AbortedAt = res.State
	res.Err = err
	logger.Warning("Generation aborted", "error", err, "state", res.State.String(), "floor", res.Floor)
	res.State = StateAborted
	res.Trace = append(res.Trace, StateAborted)
	return res, err
}
