package dungeon

import "fmt"

// Topology selects how carved rooms are joined by corridors
type Topology int

const (
	TopologyHub   Topology = iota // Every room connects to the last sampled room
	TopologyChain                 // Each room connects to the one sampled before it
)

// String returns the string representation of a Topology
func (t Topology) String() string {
	switch t {
	case TopologyHub:
		return "hub"
	case TopologyChain:
		return "chain"
	default:
		return "unknown"
	}
}

// ParseTopology converts a topology name to a Topology
func ParseTopology(s string) (Topology, error) {
	switch s {
	case "", "hub":
		return TopologyHub, nil
	case "chain":
		return TopologyChain, nil
	default:
		return TopologyHub, fmt.Errorf("unknown topology %q", s)
	}
}

// Params contains the tunables for room sampling and corridor layout
type Params struct {
	MinRoomSize int      // Smallest room width/height
	MaxRoomSize int      // Largest room width/height
	MaxAttempts int      // Sampling iterations per run
	RoomGap     int      // Tiles each room is grown by for overlap tests
	MaxAspect   float64  // Upper bound of width/height and height/width
	MinRooms    int      // Lower clamp of the target room count
	MaxRooms    int      // Upper clamp of the target room count
	AreaPerRoom int      // Map area that earns one room
	Topology    Topology // Corridor connection layout
}

// DefaultParams returns the standard generation parameters
func DefaultParams() Params {
	return Params{
		MinRoomSize: 5,
		MaxRoomSize: 9,
		MaxAttempts: 45,
		RoomGap:     1,
		MaxAspect:   1.8,
		MinRooms:    2,
		MaxRooms:    6,
		AreaPerRoom: 100,
		Topology:    TopologyHub,
	}
}

// TargetRoomCount scales the desired room count with map area,
// clamped to [MinRooms, MaxRooms].
func (p Params) TargetRoomCount(width, height int) int {
	per := p.AreaPerRoom
	if per <= 0 {
		per = 100
	}
	target := (width * height) / per
	if target < p.MinRooms {
		target = p.MinRooms
	}
	if target > p.MaxRooms {
		target = p.MaxRooms
	}
	return target
}

// usableMax returns the largest room dimension that fits on an axis of the
// given length with a one-tile margin on both sides
func (p Params) usableMax(length int) int {
	return min(p.MaxRoomSize, length-2)
}

// Fits reports whether a minimum-size room fits on a map of this size
func (p Params) Fits(width, height int) bool {
	return p.usableMax(width) >= p.MinRoomSize && p.usableMax(height) >= p.MinRoomSize
}
