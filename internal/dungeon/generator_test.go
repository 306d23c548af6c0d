package dungeon

import (
	"errors"
	"math/rand"
	"testing"
)

func TestGenerateSuccess(t *testing.T) {
	grid := newFakeGrid(40, 30, testTiles)
	player := &fakePlayer{}
	scene := &fakeScene{}

	res, err := NewGenerator(DefaultParams()).Generate(Request{
		Grid:   grid,
		Player: player,
		Scene:  scene,
		Seed:   42,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !res.Success || res.State != StateDone {
		t.Fatalf("Success = %v, State = %s", res.Success, res.State)
	}

	wantTrace := []State{
		StateIdle, StateValidatingTiles, StateFilling, StateSamplingRooms,
		StateCarving, StatePlacingSpawnAndExit, StateRefreshing, StateDone,
	}
	if len(res.Trace) != len(wantTrace) {
		t.Fatalf("Trace = %v, want %v", res.Trace, wantTrace)
	}
	for i := range wantTrace {
		if res.Trace[i] != wantTrace[i] {
			t.Errorf("Trace[%d] = %s, want %s", i, res.Trace[i], wantTrace[i])
		}
	}

	if len(res.Rooms) == 0 || len(res.Rooms) > res.Target {
		t.Errorf("placed %d rooms for target %d", len(res.Rooms), res.Target)
	}
	checkRoomInvariants(t, res.Rooms, 40, 30, DefaultParams())

	if res.Spawn != res.Rooms[0].Center() {
		t.Errorf("Spawn = %v, want first room center %v", res.Spawn, res.Rooms[0].Center())
	}
	if player.calls != 1 || player.x != res.Spawn.X || player.y != res.Spawn.Y {
		t.Errorf("player located %d times at (%d,%d), want once at %v", player.calls, player.x, player.y, res.Spawn)
	}
	if scene.refreshes != 1 {
		t.Errorf("scene refreshed %d times, want 1", scene.refreshes)
	}

	if got := grid.count(testTiles.Door); got != 1 {
		t.Errorf("door tiles = %d, want 1", got)
	}
	if grid.at(res.Exit.X, res.Exit.Y) != testTiles.Door {
		t.Errorf("exit %v is not a door", res.Exit)
	}
	if res.Exit != res.Rooms[res.ExitRoom].Center() {
		t.Errorf("Exit = %v, want center of room %d", res.Exit, res.ExitRoom)
	}
	if grid.at(res.Spawn.X, res.Spawn.Y) != testTiles.Floor && res.Spawn != res.Exit {
		t.Errorf("spawn %v is not floor", res.Spawn)
	}

	for x := 0; x < 40; x++ {
		if grid.at(x, 0) != testTiles.Wall || grid.at(x, 29) != testTiles.Wall {
			t.Fatalf("border column %d is not wall", x)
		}
	}
	for y := 0; y < 30; y++ {
		if grid.at(0, y) != testTiles.Wall || grid.at(39, y) != testTiles.Wall {
			t.Fatalf("border row %d is not wall", y)
		}
	}

	// Every cell is one of the three tiles
	total := grid.count(testTiles.Wall) + grid.count(testTiles.Floor) + grid.count(testTiles.Door)
	if total != 40*30 {
		t.Errorf("%d of %d cells hold a known tile", total, 40*30)
	}
}

func TestGenerateReplaysFromSeed(t *testing.T) {
	const seed = 1234
	p := DefaultParams()

	grid := newFakeGrid(50, 35, testTiles)
	res, err := NewGenerator(p).Generate(Request{Grid: grid, Seed: seed})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Rebuild the floor by hand from the same stream of draws
	want := newFakeGrid(50, 35, testTiles)
	rng := rand.New(rand.NewSource(seed))
	for y := 0; y < 35; y++ {
		for x := 0; x < 50; x++ {
			want.SetTile(BaseLayer, x, y, testTiles.Wall)
		}
	}
	rooms := SampleRooms(50, 35, p.TargetRoomCount(50, 35), p, rng)
	for i, r := range rooms {
		CarveRoom(want, r, testTiles.Floor)
		for _, l := range p.Topology.Connections(i, len(rooms)) {
			CarveCorridor(want, rooms[l.From], rooms[l.To], testTiles.Floor, rng)
		}
	}
	exit, _ := SelectExit(rooms, 0)
	c := rooms[exit].Center()
	want.SetTile(BaseLayer, c.X, c.Y, testTiles.Door)

	if len(rooms) != len(res.Rooms) {
		t.Fatalf("replayed %d rooms, generator placed %d", len(rooms), len(res.Rooms))
	}
	for y := 0; y < 35; y++ {
		for x := 0; x < 50; x++ {
			if grid.at(x, y) != want.at(x, y) {
				t.Fatalf("cell (%d,%d) = %d, replay has %d", x, y, grid.at(x, y), want.at(x, y))
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	gen := NewGenerator(DefaultParams())
	a := newFakeGrid(60, 40, testTiles)
	b := newFakeGrid(60, 40, testTiles)

	ra, _ := gen.Generate(Request{Grid: a, Seed: 99})
	rb, _ := gen.Generate(Request{Grid: b, Seed: 99})

	if ra.Spawn != rb.Spawn || ra.Exit != rb.Exit || len(ra.Rooms) != len(rb.Rooms) {
		t.Fatalf("runs differ: spawn %v/%v exit %v/%v", ra.Spawn, rb.Spawn, ra.Exit, rb.Exit)
	}
	for y := 0; y < 40; y++ {
		for x := 0; x < 60; x++ {
			if a.at(x, y) != b.at(x, y) {
				t.Fatalf("cell (%d,%d) differs", x, y)
			}
		}
	}
}

func TestGenerateMapTooSmall(t *testing.T) {
	grid := newFakeGrid(3, 3, testTiles)
	player := &fakePlayer{}
	scene := &fakeScene{}

	res, err := NewGenerator(DefaultParams()).Generate(Request{Grid: grid, Player: player, Scene: scene, Seed: 1})
	if !errors.Is(err, ErrNoRoomsPlaced) {
		t.Fatalf("error = %v, want ErrNoRoomsPlaced", err)
	}
	if res.Success || res.State != StateAborted || res.AbortedAt != StateSamplingRooms {
		t.Errorf("Success = %v, State = %s, AbortedAt = %s", res.Success, res.State, res.AbortedAt)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], ErrMapTooSmall) {
		t.Errorf("Warnings = %v, want one ErrMapTooSmall", res.Warnings)
	}
	if got := grid.count(testTiles.Wall); got != 9 {
		t.Errorf("%d of 9 cells are wall, want all", got)
	}
	if player.calls != 0 || scene.refreshes != 0 {
		t.Errorf("player located %d times, scene refreshed %d times after abort", player.calls, scene.refreshes)
	}
}

func TestGenerateInvalidTileSet(t *testing.T) {
	tests := []struct {
		name  string
		tiles TileSet
	}{
		{"wall equals floor", TileSet{Wall: 1, Floor: 1, Door: 3}},
		{"floor equals door", TileSet{Wall: 1, Floor: 2, Door: 2}},
		{"missing door", TileSet{Wall: 1, Floor: 2}},
		{"missing wall", TileSet{Floor: 2, Door: 3}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			grid := newFakeGrid(20, 20, tc.tiles)
			player := &fakePlayer{}

			res, err := NewGenerator(DefaultParams()).Generate(Request{Grid: grid, Player: player, Seed: 1})
			if !errors.Is(err, ErrInvalidTileset) {
				t.Fatalf("error = %v, want ErrInvalidTileset", err)
			}
			if res.AbortedAt != StateValidatingTiles {
				t.Errorf("AbortedAt = %s, want validating_tiles", res.AbortedAt)
			}
			if grid.writes != 0 {
				t.Errorf("grid received %d writes, want none", grid.writes)
			}
			if player.calls != 0 {
				t.Error("player located after abort")
			}
		})
	}
}

func TestGenerateNilGrid(t *testing.T) {
	res, err := NewGenerator(DefaultParams()).Generate(Request{Seed: 1})
	if !errors.Is(err, ErrGridNotReady) {
		t.Fatalf("error = %v, want ErrGridNotReady", err)
	}
	if res == nil || res.State != StateAborted {
		t.Fatalf("result = %+v, want an aborted result", res)
	}
}

func TestGenerateSingleRoom(t *testing.T) {
	// A 10x10 map has room for exactly one room
	for seed := int64(1); seed <= 20; seed++ {
		grid := newFakeGrid(10, 10, testTiles)
		res, err := NewGenerator(DefaultParams()).Generate(Request{Grid: grid, Seed: seed})
		if err != nil {
			t.Fatalf("seed %d: Generate() error = %v", seed, err)
		}
		if len(res.Rooms) != 1 {
			t.Fatalf("seed %d: placed %d rooms on 10x10, want 1", seed, len(res.Rooms))
		}
		if res.ExitRoom != 0 || res.Exit != res.Spawn {
			t.Errorf("seed %d: single room exit = room %d at %v, spawn %v", seed, res.ExitRoom, res.Exit, res.Spawn)
		}
		if grid.at(res.Spawn.X, res.Spawn.Y) != testTiles.Door {
			t.Errorf("seed %d: door not placed at the single room's center", seed)
		}
	}
}

func TestGenerateTwoRooms(t *testing.T) {
	twoRooms := 0
	for seed := int64(1); seed <= 50; seed++ {
		grid := newFakeGrid(20, 10, testTiles)
		res, err := NewGenerator(DefaultParams()).Generate(Request{Grid: grid, Seed: seed})
		if err != nil {
			t.Fatalf("seed %d: Generate() error = %v", seed, err)
		}
		if len(res.Rooms) > 2 {
			t.Fatalf("seed %d: placed %d rooms on 20x10, target is 2", seed, len(res.Rooms))
		}
		if len(res.Rooms) == 2 {
			twoRooms++
			if res.ExitRoom != 1 {
				t.Errorf("seed %d: exit room = %d, want 1", seed, res.ExitRoom)
			}
			if res.Spawn != res.Rooms[0].Center() {
				t.Errorf("seed %d: spawn %v not in first room", seed, res.Spawn)
			}
		}
	}
	if twoRooms == 0 {
		t.Error("no seed in 1..50 placed two rooms on 20x10")
	}
}

func TestGenerateFewAttempts(t *testing.T) {
	p := DefaultParams()
	p.MaxAttempts = 2

	res, err := NewGenerator(p).Generate(Request{Grid: newFakeGrid(40, 30, testTiles), Seed: 5})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(res.Rooms) < 1 || len(res.Rooms) > 2 {
		t.Errorf("placed %d rooms with 2 attempts", len(res.Rooms))
	}
	if !res.Success {
		t.Error("run with fewer rooms than target should still succeed")
	}
}

func TestGenerateLinks(t *testing.T) {
	hub, err := NewGenerator(DefaultParams()).Generate(Request{Grid: newFakeGrid(60, 40, testTiles), Seed: 3})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(hub.Links) != len(hub.Rooms) {
		t.Errorf("hub carved %d corridors for %d rooms", len(hub.Links), len(hub.Rooms))
	}
	for _, l := range hub.Links {
		if l.To != len(hub.Rooms)-1 {
			t.Errorf("hub link %v does not end at the last room", l)
		}
	}

	p := DefaultParams()
	p.Topology = TopologyChain
	chain, err := NewGenerator(p).Generate(Request{Grid: newFakeGrid(60, 40, testTiles), Seed: 3})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(chain.Links) != len(chain.Rooms)-1 {
		t.Errorf("chain carved %d corridors for %d rooms", len(chain.Links), len(chain.Rooms))
	}
}

func TestGenerateInjectedRand(t *testing.T) {
	grid := newFakeGrid(40, 30, testTiles)
	res, err := NewGenerator(DefaultParams()).Generate(Request{Grid: grid, Rand: &scriptedRand{}})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(res.Rooms) != 1 || res.Rooms[0] != NewRoom(1, 1, 5, 5) {
		t.Fatalf("Rooms = %v, want the single room(1,1 5x5)", res.Rooms)
	}
	if res.Spawn != (Point{X: 3, Y: 3}) {
		t.Errorf("Spawn = %v, want (3,3)", res.Spawn)
	}
}

func TestStateString(t *testing.T) {
	if StatePlacingSpawnAndExit.String() != "placing_spawn_and_exit" {
		t.Errorf("String() = %q", StatePlacingSpawnAndExit.String())
	}
	if State(99).String() != "unknown" {
		t.Errorf("String() = %q, want unknown", State(99).String())
	}
}
