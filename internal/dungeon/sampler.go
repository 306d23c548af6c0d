package dungeon

// SampleRooms places up to target rooms on a width x height map by rejection
// sampling. Every iteration consumes one of p.MaxAttempts whether or not it
// produced a room. Fewer rooms than target, including none, is a valid result.
func SampleRooms(width, height, target int, p Params, rng Rand) []Room {
	rooms := make([]Room, 0, max(target, 0))

	for attempt := 0; attempt < p.MaxAttempts && len(rooms) < target; attempt++ {
		maxW := p.usableMax(width)
		maxH := p.usableMax(height)
		if maxW < p.MinRoomSize || maxH < p.MinRoomSize {
			break
		}

		w := randRange(rng, p.MinRoomSize, maxW)
		h := randRange(rng, p.MinRoomSize, maxH)

		candidate := Room{Width: w, Height: h}
		if !candidate.AspectOK(p.MaxAspect) {
			continue
		}

		candidate.X = randRange(rng, 1, width-w-1)
		candidate.Y = randRange(rng, 1, height-h-1)

		if overlapsAny(candidate, rooms, p.RoomGap) {
			continue
		}
		rooms = append(rooms, candidate)
	}

	return rooms
}

func overlapsAny(candidate Room, rooms []Room, gap int) bool {
	for _, r := range rooms {
		if candidate.Overlaps(r, gap) {
			return true
		}
	}
	return false
}

// randRange returns a uniform integer in [lo, hi]
func randRange(rng Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}
