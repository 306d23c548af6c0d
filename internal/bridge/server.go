// Package bridge serves the generator to remote renderers over websockets.
// A renderer announces its map and tileset anchors, then sends commands and
// lifecycle events; the bridge mirrors the renderer's grid, runs generation
// passes against the mirror, and streams the changed tiles back.
package bridge

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/lawnchairsociety/procgen/internal/config"
	"github.com/lawnchairsociety/procgen/internal/dungeon"
	"github.com/lawnchairsociety/procgen/internal/host"
	"github.com/lawnchairsociety/procgen/internal/logger"
)

// Server accepts renderer connections
type Server struct {
	cfg      config.BridgeConfig
	gen      *dungeon.Generator
	baseSeed int64
	recorder host.Recorder
	limiter  *ConnLimiter
	auth     *AuthLimiter

	httpServer *http.Server
	mu         sync.Mutex
	conns      map[*websocket.Conn]struct{}
	wg         sync.WaitGroup
}

// NewServer creates a bridge server. A base seed of 0 gives each
// connection a time-based seed.
func NewServer(cfg config.BridgeConfig, gen *dungeon.Generator, baseSeed int64) *Server {
	rl := cfg.AuthRateLimit
	auth := NewAuthLimiter(rl.MaxAttempts,
		time.Duration(rl.LockoutSeconds)*time.Second,
		time.Duration(rl.MaxLockoutSeconds)*time.Second)

	return &Server{
		cfg:      cfg,
		gen:      gen,
		baseSeed: baseSeed,
		limiter:  NewConnLimiter(cfg.MaxPerIP, cfg.MaxConnections),
		auth:     auth,
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// SetRecorder sets where every connection's passes are recorded
func (s *Server) SetRecorder(r host.Recorder) {
	s.recorder = r
}

// Handler returns the HTTP handler serving /ws and /healthz
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleUpgrade)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe serves on the configured address until Shutdown
func (s *Server) ListenAndServe() error {
	s.mu.Lock()
	s.httpServer = &http.Server{Addr: s.cfg.Address, Handler: s.Handler()}
	srv := s.httpServer
	s.mu.Unlock()

	logger.Info("Bridge listening", "address", s.cfg.Address)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections, closes open sessions and waits for
// their read loops to end
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	s.auth.Stop()

	s.mu.Lock()
	for conn := range s.conns {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline(ctx))
		conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	clientIP := realIP(r)

	if !s.limiter.TryAcquire(clientIP) {
		logger.Warning("Bridge connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("Bridge connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Bridge upgrade failed", "error", err)
		s.limiter.Release(clientIP)
		return
	}
	if s.cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(s.cfg.MaxMessageSize)
	}

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	s.wg.Add(1)

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.conns, conn)
			s.mu.Unlock()
			conn.Close()
			s.limiter.Release(clientIP)
			s.wg.Done()
			logger.Debug("Renderer disconnected", "client_ip", clientIP)
		}()

		newSession(s, conn, clientIP, logger.With("component", "bridge", "client_ip", clientIP)).run()
	}()
}

// HashToken returns the bcrypt hash to store in bridge.auth_token_hash
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(time.Second)
}
