package dungeon

import "errors"

var (
	ErrGridNotReady   = errors.New("dungeon: grid not ready")
	ErrInvalidTileset = errors.New("dungeon: invalid tileset")
	ErrMapTooSmall    = errors.New("dungeon: map too small for rooms")
	ErrNoRoomsPlaced  = errors.New("dungeon: no rooms placed")
)
