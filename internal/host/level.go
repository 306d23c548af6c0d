package host

import (
	"sync"

	"github.com/lawnchairsociety/procgen/internal/dungeon"
)

// Level is the host-side state of the current map. Only the Adapter writes
// the generation fields.
type Level struct {
	floor            int
	generating       bool
	nextFloorPending bool
	refreshRequested bool
	spawn            dungeon.Point
	exit             dungeon.Point
	passes           int // Generation passes run on the current floor
	last             *dungeon.Result
	mu               sync.Mutex
}

// NewLevel creates level state starting on the given floor
func NewLevel(floor int) *Level {
	if floor < 1 {
		floor = 1
	}
	return &Level{floor: floor}
}

// Floor returns the current floor number
func (l *Level) Floor() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.floor
}

// Generating reports whether a generation pass is running
func (l *Level) Generating() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generating
}

// NextFloorPending reports whether the next map load should generate a new floor
func (l *Level) NextFloorPending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextFloorPending
}

// Spawn returns where the player was placed by the last successful pass
func (l *Level) Spawn() dungeon.Point {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.spawn
}

// Exit returns the door position of the last successful pass
func (l *Level) Exit() dungeon.Point {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exit
}

// LastResult returns the result of the most recent pass, or nil
func (l *Level) LastResult() *dungeon.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// RequestRefresh flags the level for redraw
func (l *Level) RequestRefresh() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshRequested = true
}

// TakeRefresh reports and clears the refresh flag
func (l *Level) TakeRefresh() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := l.refreshRequested
	l.refreshRequested = false
	return r
}

// markNextFloor sets the pending flag and advances the floor number
func (l *Level) markNextFloor() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextFloorPending = true
	l.floor++
	l.passes = 0
	return l.floor
}

// begin claims the level for a generation pass. When pendingOnly is set the
// claim succeeds only if a next-floor transition is pending. It returns the
// floor and the pass number on that floor.
func (l *Level) begin(pendingOnly bool) (floor, pass int, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.generating || (pendingOnly && !l.nextFloorPending) {
		return 0, 0, false
	}
	l.generating = true
	pass = l.passes
	l.passes++
	return l.floor, pass, true
}

// finish releases the guard, clears a consumed transition, and stores the
// outcome of the pass
func (l *Level) finish(res *dungeon.Result, clearPending bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = res
	if res != nil && res.Success {
		l.spawn = res.Spawn
		l.exit = res.Exit
		l.refreshRequested = true
	}
	if clearPending {
		l.nextFloorPending = false
	}
	l.generating = false
}
