package preview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gookit/color"

	"github.com/lawnchairsociety/procgen/internal/floorfile"
)

func testFloor() *floorfile.Floor {
	return &floorfile.Floor{
		Floor:   3,
		Seed:    77,
		Width:   7,
		Height:  5,
		Tileset: floorfile.TilesetYAML{Wall: 1, Floor: 2, Door: 3},
		Spawn:   floorfile.PointYAML{X: 2, Y: 2},
		Exit:    floorfile.PointYAML{X: 4, Y: 2},
		Rooms:   []floorfile.RoomYAML{{X: 1, Y: 1, Width: 5, Height: 3}},
		Map: []string{
			"#######",
			"#.....#",
			"#...+.#",
			"#.....#",
			"#######",
		},
	}
}

func TestRenderPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, testFloor(), Options{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "#######\n#.....#\n#.@.+.#\n#.....#\n#######\n"
	if buf.String() != want {
		t.Errorf("Render() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestRenderClipsRows(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, testFloor(), Options{MaxWidth: 3}); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	for i, line := range lines {
		if len(line) != 3 {
			t.Errorf("line %d = %q, want 3 columns", i, line)
		}
	}
}

func TestRenderLegend(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, testFloor(), Options{Legend: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "Floor 3 (seed 77): 1 rooms, 7x5\n") {
		t.Errorf("summary line missing, got %q", strings.SplitN(out, "\n", 2)[0])
	}
	for _, label := range []string{"# wall", ". floor", "+ exit", "@ spawn"} {
		if !strings.Contains(out, label) {
			t.Errorf("legend missing %q", label)
		}
	}
}

func TestRenderColorMatchesPlain(t *testing.T) {
	var plain, colored bytes.Buffer
	if err := Render(&plain, testFloor(), Options{Legend: true}); err != nil {
		t.Fatal(err)
	}
	if err := Render(&colored, testFloor(), Options{Color: true, Legend: true}); err != nil {
		t.Fatal(err)
	}

	if got := color.ClearCode(colored.String()); got != plain.String() {
		t.Errorf("colored output without codes =\n%s\nwant\n%s", got, plain.String())
	}
}

func TestTerminalWidthFallback(t *testing.T) {
	if w := TerminalWidth(); w <= 0 {
		t.Errorf("TerminalWidth() = %d, want positive", w)
	}
}
