package bridge

import (
	"github.com/lawnchairsociety/procgen/internal/dungeon"
)

// Message types sent by the renderer
const (
	TypeHello     = "hello"
	TypeCommand   = "command"
	TypeMapLoaded = "map_loaded"
	TypePlayer    = "player"
	TypeNextFloor = "next_floor"
)

// Message types sent to the renderer
const (
	TypeReady   = "ready"
	TypeTiles   = "tiles"
	TypeLocate  = "locate"
	TypeRefresh = "refresh"
	TypeReload  = "reload"
	TypeResult  = "result"
	TypeError   = "error"
)

// Message is one JSON frame in either direction. Only the fields of its
// type are set.
type Message struct {
	Type    string       `json:"type"`
	Token   string       `json:"token,omitempty"`
	Width   int          `json:"width,omitempty"`
	Height  int          `json:"height,omitempty"`
	Floor   int          `json:"floor,omitempty"`
	Anchors []Anchor     `json:"anchors,omitempty"`
	Player  *PlayerState `json:"player,omitempty"`
	Line    string       `json:"line,omitempty"`
	Layer   int          `json:"layer,omitempty"`
	Cells   []TileUpdate `json:"cells,omitempty"`
	Reply   string       `json:"reply,omitempty"`
	Result  *RunSummary  `json:"result,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Anchor is a tileset reference entry on row 0 of a layer
type Anchor struct {
	Layer int `json:"layer"`
	X     int `json:"x"`
	ID    int `json:"id"`
}

// PlayerState is the avatar position and facing
type PlayerState struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Facing string `json:"facing,omitempty"`
}

// TileUpdate is one changed cell
type TileUpdate struct {
	X  int `json:"x"`
	Y  int `json:"y"`
	ID int `json:"id"`
}

// RunSummary reports the outcome of a generation pass
type RunSummary struct {
	Floor    int      `json:"floor"`
	Seed     int64    `json:"seed"`
	Success  bool     `json:"success"`
	Rooms    int      `json:"rooms"`
	Spawn    [2]int   `json:"spawn"`
	Exit     [2]int   `json:"exit"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func summarize(res *dungeon.Result) *RunSummary {
	if res == nil {
		return nil
	}
	s := &RunSummary{
		Floor:   res.Floor,
		Seed:    res.Seed,
		Success: res.Success,
		Rooms:   len(res.Rooms),
		Spawn:   [2]int{res.Spawn.X, res.Spawn.Y},
		Exit:    [2]int{res.Exit.X, res.Exit.Y},
	}
	if res.Err != nil {
		s.Error = res.Err.Error()
	}
	for _, w := range res.Warnings {
		s.Warnings = append(s.Warnings, w.Error())
	}
	return s
}
