// Package host connects the dungeon generator to a running host: it owns the
// level state, guards against reentrant passes, and turns the map-loaded
// lifecycle event and floor transfers into generation runs.
package host

import (
	"time"

	"github.com/lawnchairsociety/procgen/internal/dungeon"
	"github.com/lawnchairsociety/procgen/internal/logger"
)

// Player is the host's player avatar
type Player interface {
	dungeon.Locator
	Position() (x, y int)
	Facing() Direction
}

// Reloader reloads the current map in place, which fires the map-loaded event
type Reloader interface {
	ReloadMap(x, y int, facing Direction)
}

// Recorder keeps a history of generation passes
type Recorder interface {
	RecordResult(res *dungeon.Result) (int64, error)
}

// Ports are the host collaborators a pass talks to. Any of them may be nil;
// a nil Grid makes every pass fail with dungeon.ErrGridNotReady.
type Ports struct {
	Grid     dungeon.TileGrid
	Player   Player
	Scene    dungeon.Refresher
	Reloader Reloader
}

// Trigger names what started a generation pass
type Trigger string

const (
	TriggerCommand   Trigger = "command"
	TriggerMapLoaded Trigger = "map_loaded"
)

// seedStride separates the seeds of repeated passes on one floor
const seedStride = 1000

// Adapter runs generation passes against a host
type Adapter struct {
	gen      *dungeon.Generator
	level    *Level
	ports    Ports
	baseSeed int64
	recorder Recorder
}

// NewAdapter creates an adapter. A base seed of 0 is replaced by the
// current time.
func NewAdapter(gen *dungeon.Generator, level *Level, ports Ports, baseSeed int64) *Adapter {
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}
	return &Adapter{
		gen:      gen,
		level:    level,
		ports:    ports,
		baseSeed: baseSeed,
	}
}

// SetRecorder sets where pass results are recorded
func (a *Adapter) SetRecorder(r Recorder) {
	a.recorder = r
}

// Level returns the level state
func (a *Adapter) Level() *Level {
	return a.level
}

// BaseSeed returns the seed floor seeds are derived from
func (a *Adapter) BaseSeed() int64 {
	return a.baseSeed
}

// SeedFor returns the seed of a pass on a floor. The first pass on a floor
// uses base+floor, later passes step by 1000.
func SeedFor(base int64, floor, pass int) int64 {
	return base + int64(floor) + int64(pass)*seedStride
}

// Generate runs one pass now. It returns nil when another pass is already
// running on this level. Failures are logged and reported in the result,
// never returned.
func (a *Adapter) Generate() *dungeon.Result {
	return a.run(TriggerCommand, false)
}

// OnMapLoaded is the map-loaded lifecycle hook. If a next-floor transition is
// pending it generates the floor and clears the flag.
func (a *Adapter) OnMapLoaded() *dungeon.Result {
	return a.run(TriggerMapLoaded, true)
}

// TransferToNextFloor marks the next floor pending and asks the host to
// reload the map at the player's position and facing. The reload fires
// OnMapLoaded, which generates the floor.
func (a *Adapter) TransferToNextFloor() {
	floor := a.level.markNextFloor()

	x, y, facing := 0, 0, North
	if a.ports.Player != nil {
		x, y = a.ports.Player.Position()
		facing = a.ports.Player.Facing()
	}

	logger.Info("Transferring to next floor", "floor", floor, "x", x, "y", y, "facing", facing.String())

	if a.ports.Reloader == nil {
		logger.Warning("No map reloader, generating next floor directly", "floor", floor)
		a.OnMapLoaded()
		return
	}
	a.ports.Reloader.ReloadMap(x, y, facing)
}

func (a *Adapter) run(trigger Trigger, pendingOnly bool) *dungeon.Result {
	floor, pass, ok := a.level.begin(pendingOnly)
	if !ok {
		logger.Debug("Generation skipped", "trigger", string(trigger),
			"generating", a.level.Generating(), "pending", a.level.NextFloorPending())
		return nil
	}

	req := dungeon.Request{
		Grid:  a.ports.Grid,
		Scene: a.ports.Scene,
		Seed:  SeedFor(a.baseSeed, floor, pass),
		Floor: floor,
	}
	if a.ports.Player != nil {
		req.Player = a.ports.Player
	}

	res, err := a.gen.Generate(req)
	if err != nil {
		logger.Warning("Generation pass failed", "trigger", string(trigger), "floor", floor, "seed", req.Seed, "error", err)
	}
	a.level.finish(res, pendingOnly)

	logger.Always("Generation pass", "trigger", string(trigger), "floor", floor, "seed", req.Seed,
		"success", res.Success, "rooms", len(res.Rooms))

	if a.recorder != nil {
		if id, err := a.recorder.RecordResult(res); err != nil {
			logger.Error("Failed to record generation run", "floor", floor, "seed", req.Seed, "error", err)
		} else {
			logger.Debug("Recorded generation run", "id", id, "floor", floor)
		}
	}

	return res
}
