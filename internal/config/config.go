package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/procgen/internal/database"
	"github.com/lawnchairsociety/procgen/internal/dungeon"
)

// Config holds the settings shared by the procgen tool and daemon.
type Config struct {
	Generation GenerationConfig `yaml:"generation"`
	Map        MapConfig        `yaml:"map"`
	Tileset    TilesetConfig    `yaml:"tileset"`
	Bridge     BridgeConfig     `yaml:"bridge"`
	Storage    StorageConfig    `yaml:"storage"`
}

// GenerationConfig holds the room sampling and corridor parameters.
type GenerationConfig struct {
	MinRoomSize int     `yaml:"min_room_size"`
	MaxRoomSize int     `yaml:"max_room_size"`
	MaxAttempts int     `yaml:"max_attempts"`
	RoomGap     int     `yaml:"room_gap"`
	MaxAspect   float64 `yaml:"max_aspect"`
	MinRooms    int     `yaml:"min_rooms"`
	MaxRooms    int     `yaml:"max_rooms"`
	AreaPerRoom int     `yaml:"area_per_room"`

	// Topology is "hub" (every room joins the last) or "chain".
	Topology string `yaml:"topology"`

	// Seed is the base seed for floor 1. 0 means time based.
	Seed int64 `yaml:"seed"`
}

// MapConfig holds the size of maps generated outside a host.
type MapConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// TilesetConfig holds the template ids written to the anchor row.
type TilesetConfig struct {
	Wall   int `yaml:"wall"`
	Floor  int `yaml:"floor"`
	Door   int `yaml:"door"`
	Player int `yaml:"player"`
}

// BridgeConfig holds the websocket bridge settings.
type BridgeConfig struct {
	Address string `yaml:"address"`

	// AllowedOrigins is a list of origins allowed to connect.
	// Empty list enforces same-origin policy. "*" allows all origins.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum inbound message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`

	// AuthTokenHash is a bcrypt hash of the token clients send in hello.
	// Empty disables the check.
	AuthTokenHash string `yaml:"auth_token_hash"`

	// MaxPerIP is the maximum concurrent connections from one IP. 0 means unlimited.
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxConnections is the maximum total concurrent connections. 0 means unlimited.
	MaxConnections int `yaml:"max_connections"`

	// AuthRateLimit locks out IPs that send bad tokens.
	AuthRateLimit RateLimitConfig `yaml:"auth_rate_limit"`
}

// RateLimitConfig holds lockout settings for failed token checks.
type RateLimitConfig struct {
	MaxAttempts       int `yaml:"max_attempts"`        // Failures before lockout
	LockoutSeconds    int `yaml:"lockout_seconds"`     // First lockout
	MaxLockoutSeconds int `yaml:"max_lockout_seconds"` // Ceiling for doubled lockouts
}

// StorageConfig selects where run history is recorded.
type StorageConfig struct {
	Driver     string         `yaml:"driver"` // sqlite, postgres or none
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// DefaultConfig returns a Config holding the standard generation parameters.
func DefaultConfig() *Config {
	p := dungeon.DefaultParams()
	return &Config{
		Generation: GenerationConfig{
			MinRoomSize: p.MinRoomSize,
			MaxRoomSize: p.MaxRoomSize,
			MaxAttempts: p.MaxAttempts,
			RoomGap:     p.RoomGap,
			MaxAspect:   p.MaxAspect,
			MinRooms:    p.MinRooms,
			MaxRooms:    p.MaxRooms,
			AreaPerRoom: p.AreaPerRoom,
			Topology:    p.Topology.String(),
		},
		Map: MapConfig{
			Width:  40,
			Height: 30,
		},
		Tileset: TilesetConfig{
			Wall:   1,
			Floor:  2,
			Door:   3,
			Player: 4,
		},
		Bridge: BridgeConfig{
			Address:        ":4450",
			AllowedOrigins: []string{}, // Same-origin only by default
			MaxMessageSize: 65536,
			MaxPerIP:       4,
			MaxConnections: 32,
			AuthRateLimit: RateLimitConfig{
				MaxAttempts:       5,
				LockoutSeconds:    30,
				MaxLockoutSeconds: 300,
			},
		},
		Storage: StorageConfig{
			Driver:     "sqlite",
			SQLitePath: "data/procgen.db",
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "procgen",
				Database: "procgen",
				SSLMode:  "disable",
			},
		},
	}
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, returns default config. If it can't be parsed,
// returns default config and the error.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Use defaults if file doesn't exist
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}

	return config, nil
}

// Validate checks that the settings describe a usable generator.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	g := c.Generation

	if g.MinRoomSize < 1 {
		errs = append(errs, fmt.Errorf("generation.min_room_size must be at least 1, got %d", g.MinRoomSize))
	}
	if g.MaxRoomSize < g.MinRoomSize {
		errs = append(errs, fmt.Errorf("generation.max_room_size %d is below min_room_size %d", g.MaxRoomSize, g.MinRoomSize))
	}
	if g.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("generation.max_attempts must be positive, got %d", g.MaxAttempts))
	}
	if g.RoomGap < 0 {
		errs = append(errs, fmt.Errorf("generation.room_gap must not be negative, got %d", g.RoomGap))
	}
	if g.MaxAspect < 1 {
		errs = append(errs, fmt.Errorf("generation.max_aspect must be at least 1, got %g", g.MaxAspect))
	}
	if g.MinRooms < 1 || g.MaxRooms < g.MinRooms {
		errs = append(errs, fmt.Errorf("generation room count range [%d, %d] is invalid", g.MinRooms, g.MaxRooms))
	}
	if g.AreaPerRoom <= 0 {
		errs = append(errs, fmt.Errorf("generation.area_per_room must be positive, got %d", g.AreaPerRoom))
	}
	if _, err := dungeon.ParseTopology(g.Topology); err != nil {
		errs = append(errs, fmt.Errorf("generation.topology: %w", err))
	}

	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		errs = append(errs, fmt.Errorf("map size %dx%d is invalid", c.Map.Width, c.Map.Height))
	}

	if err := c.Tileset.TileSet().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tileset: %w", err))
	}

	switch c.Storage.Driver {
	case "", "none", "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of sqlite, postgres, none", c.Storage.Driver))
	}

	return errors.Join(errs...)
}

// Params converts the generation settings to dungeon parameters.
// An unknown topology falls back to hub.
func (g GenerationConfig) Params() dungeon.Params {
	topo, _ := dungeon.ParseTopology(g.Topology)
	return dungeon.Params{
		MinRoomSize: g.MinRoomSize,
		MaxRoomSize: g.MaxRoomSize,
		MaxAttempts: g.MaxAttempts,
		RoomGap:     g.RoomGap,
		MaxAspect:   g.MaxAspect,
		MinRooms:    g.MinRooms,
		MaxRooms:    g.MaxRooms,
		AreaPerRoom: g.AreaPerRoom,
		Topology:    topo,
	}
}

// TileSet returns the wall, floor and door ids
func (t TilesetConfig) TileSet() dungeon.TileSet {
	return dungeon.TileSet{
		Wall:  dungeon.TileID(t.Wall),
		Floor: dungeon.TileID(t.Floor),
		Door:  dungeon.TileID(t.Door),
	}
}

// StorageEnabled reports whether runs should be recorded
func (s StorageConfig) StorageEnabled() bool {
	return s.Driver != "" && s.Driver != "none"
}

// Database converts the storage settings to a database config, keeping the
// default pool settings for postgres
func (s StorageConfig) Database() database.Config {
	pg := database.DefaultPostgresConfig()
	pg.Host = s.Postgres.Host
	pg.Port = s.Postgres.Port
	pg.User = s.Postgres.User
	pg.Password = s.Postgres.Password
	pg.Database = s.Postgres.Database
	if s.Postgres.SSLMode != "" {
		pg.SSLMode = s.Postgres.SSLMode
	}

	return database.Config{
		Driver:     s.Driver,
		SQLitePath: s.SQLitePath,
		Postgres:   pg,
	}
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *BridgeConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host.
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // Non-browser clients send no Origin header
	}

	// "http://localhost:3000" -> "localhost:3000"
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
