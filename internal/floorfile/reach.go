package floorfile

// Unreachable returns the indexes of rooms whose center cannot be walked to
// from the spawn over floor and door cells
func (f *Floor) Unreachable() []int {
	visited := make([][]bool, len(f.Map))
	for y, row := range f.Map {
		visited[y] = make([]bool, len(row))
	}

	walkable := func(x, y int) bool {
		if y < 0 || y >= len(f.Map) || x < 0 || x >= len(f.Map[y]) {
			return false
		}
		g := f.Map[y][x]
		return g == GlyphFloor || g == GlyphDoor
	}

	// BFS from the spawn
	if walkable(f.Spawn.X, f.Spawn.Y) {
		queue := []PointYAML{f.Spawn}
		visited[f.Spawn.Y][f.Spawn.X] = true
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			for _, d := range [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}} {
				nx, ny := p.X+d[0], p.Y+d[1]
				if walkable(nx, ny) && !visited[ny][nx] {
					visited[ny][nx] = true
					queue = append(queue, PointYAML{X: nx, Y: ny})
				}
			}
		}
	}

	var out []int
	for i, r := range f.Rooms {
		cx, cy := r.X+r.Width/2, r.Y+r.Height/2
		if cy < 0 || cy >= len(visited) || cx < 0 || cx >= len(visited[cy]) || !visited[cy][cx] {
			out = append(out, i)
		}
	}
	return out
}
