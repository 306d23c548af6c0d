package dungeon

// SelectExit returns the index of the room farthest, by Manhattan distance
// between centers, from rooms[start]. Ties go to the earliest room. A single
// room is its own exit. ok is false when rooms is empty.
func SelectExit(rooms []Room, start int) (exit int, ok bool) {
	if len(rooms) == 0 {
		return -1, false
	}
	if start < 0 || start >= len(rooms) {
		start = 0
	}

	exit = len(rooms) - 1
	if len(rooms) > 1 {
		best := -1
		for i, r := range rooms {
			if d := r.Distance(rooms[start]); d > best {
				best = d
				exit = i
			}
		}
	}
	return exit, true
}
