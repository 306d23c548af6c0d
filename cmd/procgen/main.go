package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lawnchairsociety/procgen/internal/command"
	"github.com/lawnchairsociety/procgen/internal/config"
	"github.com/lawnchairsociety/procgen/internal/database"
	"github.com/lawnchairsociety/procgen/internal/dungeon"
	"github.com/lawnchairsociety/procgen/internal/floorfile"
	"github.com/lawnchairsociety/procgen/internal/grid"
	"github.com/lawnchairsociety/procgen/internal/host"
	"github.com/lawnchairsociety/procgen/internal/logger"
	"github.com/lawnchairsociety/procgen/internal/preview"
)

func main() {
	configFile := flag.String("config", "data/procgen.yaml", "Path to generator config YAML file")
	width := flag.Int("width", 0, "Map width in tiles (0 uses config)")
	height := flag.Int("height", 0, "Map height in tiles (0 uses config)")
	seed := flag.Int64("seed", 0, "Base seed (0 uses config, then current time)")
	startFloor := flag.Int("floor", 1, "First floor number")
	floors := flag.Int("floors", 1, "Number of consecutive floors to generate")
	outDir := flag.String("out", "", "Directory to write floor_N.yaml files (empty to skip)")
	record := flag.Bool("record", false, "Record runs to the configured database")
	showPreview := flag.Bool("preview", true, "Draw each floor on stdout")
	loadFile := flag.String("load", "", "Draw a previously written floor file and exit")
	history := flag.Int("history", 0, "Print the N most recent recorded runs and exit")
	logLevel := flag.String("log-level", "warning", "Log level written to stderr")
	flag.Parse()

	logger.SetOutput(os.Stderr, *logLevel)

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Failed to load config, using defaults", "path", *configFile, "error", err)
	}

	if *loadFile != "" {
		f, err := floorfile.Load(*loadFile)
		if err != nil {
			fatalf("Error loading floor: %v", err)
		}
		if err := preview.Render(os.Stdout, f, preview.StdoutOptions()); err != nil {
			fatalf("Error drawing floor: %v", err)
		}
		return
	}

	if *history > 0 {
		printHistory(cfg, *history)
		return
	}

	if *width > 0 {
		cfg.Map.Width = *width
	}
	if *height > 0 {
		cfg.Map.Height = *height
	}
	if *seed != 0 {
		cfg.Generation.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		fatalf("Invalid config:\n%v", err)
	}
	if *floors < 1 {
		fatalf("-floors must be at least 1")
	}

	params := cfg.Generation.Params()
	tiles := grid.NewWithTileSet(cfg.Map.Width, cfg.Map.Height, cfg.Tileset.TileSet())
	gen := dungeon.NewGenerator(params)
	adapter := host.NewAdapter(gen, host.NewLevel(*startFloor), host.Ports{Grid: tiles}, cfg.Generation.Seed)

	if *record {
		db, err := database.OpenWithConfig(cfg.Storage.Database())
		if err != nil {
			fatalf("Error opening database: %v", err)
		}
		defer db.Close()
		adapter.SetRecorder(db)
	}

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			fatalf("Error creating output directory: %v", err)
		}
	}

	logger.Info("Generating floors", "base_seed", adapter.BaseSeed(), "floors", *floors,
		"width", cfg.Map.Width, "height", cfg.Map.Height)

	failed := false
	for i := 0; i < *floors; i++ {
		if i == 0 {
			reply := command.ParseCommand("ProcGen GenerateMap").Execute(adapter)
			fmt.Fprintln(os.Stderr, reply)
		} else {
			adapter.TransferToNextFloor()
		}

		res := adapter.Level().LastResult()
		if res == nil || !res.Success {
			failed = true
			if res != nil && i > 0 {
				fmt.Fprintf(os.Stderr, "Floor %d failed: %v\n", res.Floor, res.Err)
			}
			break
		}

		f := floorfile.FromResult(res, tiles, params.Topology)
		if bad := f.Unreachable(); len(bad) > 0 {
			logger.Warning("Floor has rooms unreachable from spawn", "floor", res.Floor, "rooms", bad)
		}

		if *outDir != "" {
			path := filepath.Join(*outDir, fmt.Sprintf("floor_%d.yaml", res.Floor))
			if err := floorfile.Write(path, f); err != nil {
				fatalf("Error writing floor: %v", err)
			}
			fmt.Fprintf(os.Stderr, "Floor %d written to %s\n", res.Floor, path)
		}

		if *showPreview {
			if err := preview.Render(os.Stdout, f, preview.StdoutOptions()); err != nil {
				fatalf("Error drawing floor: %v", err)
			}
			fmt.Println()
		}
	}

	if failed {
		os.Exit(1)
	}
}

// printHistory lists recent runs from the configured database
func printHistory(cfg *config.Config, limit int) {
	if !cfg.Storage.StorageEnabled() {
		fatalf("Storage is disabled in config")
	}

	db, err := database.OpenWithConfig(cfg.Storage.Database())
	if err != nil {
		fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	runs, err := db.RecentRuns(limit)
	if err != nil {
		fatalf("Error reading runs: %v", err)
	}
	total, succeeded, err := db.CountRuns()
	if err != nil {
		fatalf("Error counting runs: %v", err)
	}

	fmt.Printf("%d runs recorded, %d succeeded\n\n", total, succeeded)
	fmt.Printf("%-6s %-6s %-20s %-8s %-6s %-10s %s\n", "ID", "FLOOR", "SEED", "SIZE", "ROOMS", "STATE", "CREATED")
	for _, r := range runs {
		state := r.State
		if !r.Success {
			state = "failed:" + r.State
		}
		fmt.Printf("%-6d %-6d %-20d %-8s %-6d %-10s %s\n",
			r.ID, r.Floor, r.Seed, fmt.Sprintf("%dx%d", r.Width, r.Height), r.RoomCount, state,
			r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
