package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/lawnchairsociety/procgen/internal/command"
	"github.com/lawnchairsociety/procgen/internal/dungeon"
	"github.com/lawnchairsociety/procgen/internal/grid"
	"github.com/lawnchairsociety/procgen/internal/host"
)

const (
	// maxDimension bounds the map size a renderer may announce
	maxDimension = 1024

	// maxCellsPerFrame splits large tile flushes into several frames
	maxCellsPerFrame = 2048

	helloTimeout = 10 * time.Second
	writeTimeout = 10 * time.Second
)

var (
	errHelloRequired = errors.New("first message must be hello")
	errUnauthorized  = errors.New("invalid token")
	errLockedOut     = errors.New("too many failed attempts, try again later")
)

// session is one renderer connection. It mirrors the renderer's tile grid
// and implements the host ports over the socket. All messages of a session
// are handled on its read loop, so at most one pass runs at a time.
type session struct {
	srv     *Server
	conn    *websocket.Conn
	ip      string
	log     *slog.Logger
	writeMu sync.Mutex

	mirror  *grid.Memory
	adapter *host.Adapter

	mu     sync.Mutex
	x, y   int
	facing host.Direction
}

func newSession(srv *Server, conn *websocket.Conn, ip string, log *slog.Logger) *session {
	return &session{srv: srv, conn: conn, ip: ip, log: log}
}

// run reads messages until the connection closes
func (s *session) run() {
	if err := s.handshake(); err != nil {
		s.log.Warn("Handshake failed", "error", err)
		s.sendError(err.Error())
		return
	}

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("Connection closed unexpectedly", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(fmt.Sprintf("malformed message: %v", err))
			continue
		}
		s.handle(msg)
	}
}

func (s *session) handshake() error {
	s.conn.SetReadDeadline(time.Now().Add(helloTimeout))
	defer s.conn.SetReadDeadline(time.Time{})

	var hello Message
	if err := s.conn.ReadJSON(&hello); err != nil {
		return fmt.Errorf("read hello: %w", err)
	}
	if hello.Type != TypeHello {
		return errHelloRequired
	}

	if hash := s.srv.cfg.AuthTokenHash; hash != "" {
		if locked, _ := s.srv.auth.Locked(s.ip); locked {
			return errLockedOut
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(hello.Token)); err != nil {
			if locked, d := s.srv.auth.Fail(s.ip); locked {
				s.log.Warn("Renderer locked out after failed tokens", "lockout", d)
			}
			return errUnauthorized
		}
		s.srv.auth.Succeed(s.ip)
	}

	if hello.Width <= 0 || hello.Height <= 0 || hello.Width > maxDimension || hello.Height > maxDimension {
		return fmt.Errorf("map size %dx%d out of range", hello.Width, hello.Height)
	}

	s.mirror = grid.New(hello.Width, hello.Height)
	for _, a := range hello.Anchors {
		s.mirror.SetAnchor(a.X, a.Layer, dungeon.TileID(a.ID))
	}
	if hello.Player != nil {
		s.updatePlayer(*hello.Player)
	}

	level := host.NewLevel(hello.Floor)
	s.adapter = host.NewAdapter(s.srv.gen, level, host.Ports{
		Grid:     s.mirror,
		Player:   s,
		Scene:    s,
		Reloader: s,
	}, s.srv.baseSeed)
	if s.srv.recorder != nil {
		s.adapter.SetRecorder(s.srv.recorder)
	}

	s.log = s.log.With("width", hello.Width, "height", hello.Height)
	s.log.Info("Renderer connected", "floor", level.Floor(), "anchors", len(hello.Anchors))

	return s.send(Message{Type: TypeReady, Width: hello.Width, Height: hello.Height, Floor: level.Floor()})
}

func (s *session) handle(msg Message) {
	switch msg.Type {
	case TypeCommand:
		before := s.adapter.Level().LastResult()
		reply := command.ParseCommand(msg.Line).Execute(s.adapter)
		out := Message{Type: TypeResult, Reply: reply}
		if last := s.adapter.Level().LastResult(); last != before {
			out.Result = summarize(last)
		}
		s.afterPass()
		s.send(out)

	case TypeMapLoaded:
		if res := s.adapter.OnMapLoaded(); res != nil {
			s.afterPass()
			s.send(Message{Type: TypeResult, Result: summarize(res)})
		}

	case TypePlayer:
		if msg.Player == nil {
			s.sendError("player message without player state")
			return
		}
		s.updatePlayer(*msg.Player)

	case TypeNextFloor:
		s.adapter.TransferToNextFloor()

	case TypeHello:
		s.sendError("already greeted")

	default:
		s.sendError(fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

// afterPass pushes changes still pending once the level asks for a redraw
func (s *session) afterPass() {
	if s.adapter.Level().TakeRefresh() && len(s.mirror.Dirty()) > 0 {
		s.flush()
	}
}

func (s *session) updatePlayer(p PlayerState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x, s.y = p.X, p.Y
	if p.Facing != "" {
		if d, err := host.ParseDirection(p.Facing); err == nil {
			s.facing = d
		}
	}
}

// Locate implements host.Player
func (s *session) Locate(x, y int) {
	s.mu.Lock()
	s.x, s.y = x, y
	facing := s.facing
	s.mu.Unlock()

	s.send(Message{Type: TypeLocate, Player: &PlayerState{X: x, Y: y, Facing: facing.String()}})
}

// Position implements host.Player
func (s *session) Position() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.x, s.y
}

// Facing implements host.Player
func (s *session) Facing() host.Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facing
}

// Refresh implements dungeon.Refresher: changed cells, then a redraw request
func (s *session) Refresh() {
	s.flush()
	s.send(Message{Type: TypeRefresh})
}

// ReloadMap implements host.Reloader. The renderer answers with map_loaded.
func (s *session) ReloadMap(x, y int, facing host.Direction) {
	s.send(Message{Type: TypeReload, Floor: s.adapter.Level().Floor(), Player: &PlayerState{X: x, Y: y, Facing: facing.String()}})
}

// flush sends every dirty cell, one frame per layer or chunk
func (s *session) flush() {
	cells := s.mirror.Dirty()
	s.mirror.ClearDirty()

	for start := 0; start < len(cells); {
		layer := cells[start].Layer
		end := start
		updates := make([]TileUpdate, 0, min(len(cells)-start, maxCellsPerFrame))
		for end < len(cells) && cells[end].Layer == layer && len(updates) < maxCellsPerFrame {
			c := cells[end]
			updates = append(updates, TileUpdate{X: c.X, Y: c.Y, ID: int(s.mirror.Tile(c.Layer, c.X, c.Y))})
			end++
		}
		s.send(Message{Type: TypeTiles, Layer: layer, Cells: updates})
		start = end
	}
}

func (s *session) send(msg Message) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.log.Debug("Write failed", "type", msg.Type, "error", err)
		return err
	}
	return nil
}

func (s *session) sendError(text string) {
	s.send(Message{Type: TypeError, Error: text})
}
