// Package preview draws a generated floor in the terminal
package preview

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/leonelquinteros/gotext"
	"golang.org/x/term"

	"github.com/lawnchairsociety/procgen/internal/floorfile"
)

const (
	DefaultWidth = 80

	GlyphSpawn = '@'
)

var (
	colorWall    = color.Style{color.FgGray}
	colorFloor   = color.Style{color.FgBlue}
	colorDoor    = color.Style{color.FgMagenta, color.OpBold}
	colorSpawn   = color.Style{color.FgGreen, color.BgBlack, color.OpBold}
	colorUnknown = color.Style{color.FgRed, color.OpBold}
	colorSubtle  = color.Style{color.FgGray, color.OpBold}
)

// Options controls how a floor is drawn
type Options struct {
	Color    bool // Emit ANSI colors
	MaxWidth int  // Clip rows to this many columns; 0 draws full rows
	Legend   bool // Print the summary line and glyph legend
}

// StdoutOptions returns options suited to the current stdout: colors and
// clipping only when it is a terminal
func StdoutOptions() Options {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return Options{Legend: true}
	}
	return Options{Color: true, MaxWidth: TerminalWidth(), Legend: true}
}

// TerminalWidth returns the stdout width, or DefaultWidth when it cannot be
// determined
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// Render draws the floor's map with the spawn marked
func Render(w io.Writer, f *floorfile.Floor, opts Options) error {
	var b strings.Builder

	if opts.Legend {
		summary := gotext.Get("Floor %d (seed %d): %d rooms, %dx%d", f.Floor, f.Seed, len(f.Rooms), f.Width, f.Height)
		b.WriteString(paint(opts, colorSubtle, summary))
		b.WriteByte('\n')
	}

	for y, row := range f.Map {
		cols := len(row)
		if opts.MaxWidth > 0 && cols > opts.MaxWidth {
			cols = opts.MaxWidth
		}
		for x := 0; x < cols; x++ {
			glyph := row[x]
			if x == f.Spawn.X && y == f.Spawn.Y {
				glyph = GlyphSpawn
			}
			b.WriteString(paint(opts, styleFor(glyph), string(glyph)))
		}
		b.WriteByte('\n')
	}

	if opts.Legend {
		b.WriteString(legend(opts))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func legend(opts Options) string {
	entries := []struct {
		glyph byte
		label string
	}{
		{floorfile.GlyphWall, gotext.Get("wall")},
		{floorfile.GlyphFloor, gotext.Get("floor")},
		{floorfile.GlyphDoor, gotext.Get("exit")},
		{GlyphSpawn, gotext.Get("spawn")},
	}

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s %s", paint(opts, styleFor(e.glyph), string(e.glyph)), e.label)
	}
	return strings.Join(parts, "  ")
}

func styleFor(glyph byte) color.Style {
	switch glyph {
	case floorfile.GlyphWall:
		return colorWall
	case floorfile.GlyphFloor:
		return colorFloor
	case floorfile.GlyphDoor:
		return colorDoor
	case GlyphSpawn:
		return colorSpawn
	default:
		return colorUnknown
	}
}

func paint(opts Options, style color.Style, s string) string {
	if !opts.Color {
		return s
	}
	return style.Sprint(s)
}
