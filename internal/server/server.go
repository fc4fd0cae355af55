package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/jmylchreest/ledstripd/internal/advertise"
	"github.com/jmylchreest/ledstripd/internal/config"
	"github.com/jmylchreest/ledstripd/internal/events"
	"github.com/jmylchreest/ledstripd/internal/http/handlers"
	"github.com/jmylchreest/ledstripd/internal/http/mw"
	"github.com/jmylchreest/ledstripd/internal/http/routes"
	"github.com/jmylchreest/ledstripd/internal/logging"
	"github.com/jmylchreest/ledstripd/internal/ws"
	"github.com/jmylchreest/ledstripd/pkg/strip"
)

// Server manages the ledstripd daemon: the animation scheduler plus the
// socket, HTTP and mDNS front ends.
type Server struct {
	logger     *slog.Logger
	levels     *levelControl
	cfg        *config.Config
	strip      *strip.Accessory
	scheduler  *strip.Scheduler
	build      handlers.VersionHandler
	socketPath string
	listener   net.Listener
	shutdown   chan struct{}
	wg         sync.WaitGroup
	rootCtx    context.Context
	rootCancel context.CancelFunc
	httpServer *http.Server
	httpAddr   net.Addr
	eventBus   *events.Bus
	advertiser *advertise.Advertiser
}

// New creates a new server instance.
func New(logger *logging.Logger, cfg *config.Config, acc *strip.Accessory, scheduler *strip.Scheduler, build handlers.VersionHandler) *Server {
	eventBus := events.NewBus()

	// Wire the event bus into the strip so it emits state change events.
	acc.SetEventBus(eventBus)
	scheduler.SetEventBus(eventBus)

	rootCtx, rootCancel := context.WithCancel(context.Background())

	return &Server{
		logger:     logger.Logger,
		levels:     &levelControl{logger: logger, bus: eventBus},
		cfg:        cfg,
		strip:      acc,
		scheduler:  scheduler,
		build:      build,
		socketPath: cfg.Server.UnixSocket,
		shutdown:   make(chan struct{}),
		rootCtx:    rootCtx,
		rootCancel: rootCancel,
		eventBus:   eventBus,
	}
}

// EventBus returns the bus strip events are published on.
func (s *Server) EventBus() *events.Bus {
	return s.eventBus
}

// HTTPAddr returns the address the HTTP API is bound to, or nil when it is disabled.
func (s *Server) HTTPAddr() net.Addr {
	return s.httpAddr
}

// Start begins the server operations: the animation scheduler, the socket
// listener, the HTTP API and mDNS advertisement.
func (s *Server) Start() error {
	s.logger.Info("Starting ledstripd server")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in animation scheduler", "recover", r)
			}
		}()
		s.scheduler.Run(s.rootCtx)
	}()

	// Ensure socket directory exists
	sockDir := filepath.Dir(s.socketPath)
	if err := os.MkdirAll(sockDir, 0755); err != nil {
		return fmt.Errorf("failed to create socket directory %s: %w", sockDir, err)
	}

	// Remove existing socket file if it exists
	if _, err := os.Stat(s.socketPath); err == nil {
		if err := os.Remove(s.socketPath); err != nil {
			return fmt.Errorf("failed to remove existing socket file %s: %w", s.socketPath, err)
		}
	}

	var err error
	s.listener, err = net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket %s: %w", s.socketPath, err)
	}
	s.logger.Info("Listening on Unix socket", "path", s.socketPath)

	s.wg.Add(1)
	go s.acceptConnections()

	if s.cfg.API.ListenAddress != "" {
		if err := s.startHTTP(); err != nil {
			return err
		}
	}

	if s.cfg.Advertise.Enabled {
		info := s.strip.Info()
		adv, err := advertise.Start(s.logger, advertise.Info{
			ID:      info.ID,
			Name:    info.Name,
			Version: s.build.Version,
			Port:    s.advertisePort(),
		})
		if err != nil {
			// the strip still works without presence on the network
			s.logger.Warn("mDNS advertisement unavailable", "error", err)
		} else {
			s.advertiser = adv
		}
	}

	return nil
}

func (s *Server) startHTTP() error {
	addr := s.cfg.API.ListenAddress
	s.logger.Info("Starting HTTP API server", "address", addr)

	// Rate limiting runs before auth to protect against brute-force.
	router := chi.NewRouter()
	router.Use(mw.RequestLogging(s.logger))
	router.Use(mw.RateLimitByIP(mw.RateLimitFromConfig(s.cfg.API)))
	router.Use(mw.TokenAuth(s.logger, s.cfg.API.Token, routes.PublicPaths...))

	api := humachi.New(router, routes.NewHumaConfig(s.build.Version, ""))
	routes.Register(api, &routes.Handlers{
		HealthCheck:  handlers.HealthCheck,
		VersionCheck: s.build.VersionCheck,
		Strip:        &handlers.StripHandler{Strip: s.strip},
		Logging:      &handlers.LoggingHandler{Levels: s.levels},
	})

	wsHub := ws.NewHub(s.logger, s.eventBus, func() any {
		return handlers.StripFromState(s.strip.State())
	})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in WebSocket hub", "recover", r)
			}
		}()
		wsHub.Run(s.rootCtx)
	}()
	router.Get("/api/v1/ws", ws.Handler(wsHub, s.logger))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.httpAddr = ln.Addr()

	s.httpServer = &http.Server{
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in HTTP server goroutine", "recover", r)
			}
		}()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", "error", err)
		}
		s.logger.Info("HTTP server stopped")
	}()
	return nil
}

// advertisePort prefers the configured port, then the bound HTTP port.
func (s *Server) advertisePort() int {
	if s.cfg.Advertise.Port > 0 {
		return s.cfg.Advertise.Port
	}
	if tcp, ok := s.httpAddr.(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down ledstripd server")
	s.scheduler.RequestStop()
	s.rootCancel()
	close(s.shutdown)

	s.advertiser.Stop()

	if s.listener != nil {
		s.logger.Info("Closing Unix socket listener")
		s.listener.Close()
	}

	var shutdownErr error
	if s.httpServer != nil {
		s.logger.Info("Shutting down HTTP server")
		if err := s.httpServer.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("HTTP server shutdown failed: %w", err)
		}
	}

	s.logger.Info("Waiting for services to stop...")
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("ledstripd server shut down gracefully")
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for services: %w", ctx.Err())
	}
	return shutdownErr
}

func (s *Server) acceptConnections() {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in acceptConnections", "recover", r)
		}
	}()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				s.logger.Info("Socket listener shutting down")
				return
			default:
				if errors.Is(err, net.ErrClosed) {
					return
				}
				s.logger.Error("Failed to accept connection", "error", err)
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in connection handler", "recover", r)
		}
	}()

	ctx, cancel := context.WithCancel(s.rootCtx)
	defer cancel()

	go func() {
		select {
		case <-s.shutdown:
			if uc, ok := conn.(*net.UnixConn); ok {
				uc.CloseRead() // unblock the reader
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	reader := bufio.NewReader(conn)

	for {
		if ctx.Err() != nil {
			return
		}

		line, err := reader.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				s.logger.Debug("Client disconnected")
			} else {
				s.logger.Error("Failed to read from connection", "error", err)
			}
			return
		}

		var req map[string]any
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Error("Failed to unmarshal request", "error", err, "request", string(line))
			s.sendError(conn, "", fmt.Sprintf("invalid JSON request: %s", err))
			continue
		}

		action, _ := req["action"].(string)
		id, _ := req["id"].(string)             // Optional request ID for client tracking
		data, _ := req["data"].(map[string]any) // Data payload

		s.logger.Debug("Received request", "action", action, "id", id, "data", data)
		s.dispatch(conn, id, action, data)
	}
}

// dispatch runs one socket action and writes its response.
func (s *Server) dispatch(conn net.Conn, id, action string, data map[string]any) {
	switch action {
	case "ping":
		s.sendResponse(conn, id, map[string]any{"message": "pong"})

	case "health":
		s.sendResponse(conn, id, map[string]any{"health": "ok"})

	case "version":
		s.sendResponse(conn, id, map[string]any{
			"version":    s.build.Version,
			"commit":     s.build.Commit,
			"build_date": s.build.BuildDate,
		})

	case "get_state":
		m, err := toMap(handlers.StripFromState(s.strip.State()))
		if err != nil {
			s.logger.Error("Failed to encode strip for socket response", "error", err)
			s.sendError(conn, id, "internal error encoding strip state")
			return
		}
		s.sendResponse(conn, id, map[string]any{"strip": m})

	case "set_state":
		values, err := parseStateRequest(data)
		if err != nil {
			s.sendError(conn, id, fmt.Sprintf("failed to set strip state: %s", err))
			return
		}
		for _, v := range values {
			s.strip.Apply(v)
		}
		s.sendResponse(conn, id, map[string]any{"status": "ok"})

	case "identify":
		s.strip.Identify()
		s.sendResponse(conn, id, map[string]any{"status": "identifying"})

	case "get_level":
		s.sendResponse(conn, id, map[string]any{"level": s.levels.Level()})

	case "set_level":
		level, _ := data["level"].(string)
		if level == "" {
			s.sendError(conn, id, "missing level for set_level")
			return
		}
		if err := s.levels.SetLevel(level); err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		s.logger.Info("Log level changed via socket", "level", s.levels.Level())
		s.sendResponse(conn, id, map[string]any{"level": s.levels.Level()})

	default:
		s.logger.Warn("received unknown action", "action", action)
		s.sendError(conn, id, "unknown action: "+action)
	}
}

func (s *Server) sendResponse(conn net.Conn, id string, data map[string]any) {
	response := map[string]any{"status": "ok"}
	if id != "" {
		response["id"] = id
	}
	maps.Copy(response, data)
	if err := json.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Error("Failed to send response", "error", err)
	}
}

func (s *Server) sendError(conn net.Conn, id string, message string) {
	s.logger.Warn("Sending error response to client", "id", id, "message", message)
	response := map[string]any{"error": message}
	if id != "" {
		response["id"] = id
	}
	if err := json.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Error("Failed to send error response", "error", err)
	}
}

// stateFields is the order multi-property requests are applied in.
var stateFields = []strip.PropertyName{
	strip.PropertyOn,
	strip.PropertyBrightness,
	strip.PropertyHue,
	strip.PropertySaturation,
	strip.PropertyWhite,
}

// parseStateRequest accepts either a single property+value pair or any of
// the property names as keys. Every value is validated before any is
// returned.
func parseStateRequest(data map[string]any) ([]strip.PropertyValue, error) {
	type raw struct {
		name  strip.PropertyName
		value any
	}
	var props []raw

	property, _ := data["property"].(string)
	if value, ok := data["value"]; property != "" && ok {
		props = append(props, raw{strip.PropertyName(property), value})
	} else {
		for _, name := range stateFields {
			if v, ok := data[string(name)]; ok {
				props = append(props, raw{name, v})
			}
		}
	}
	if len(props) == 0 {
		return nil, fmt.Errorf("missing property/value or on/brightness/hue/saturation/white")
	}

	values := make([]strip.PropertyValue, 0, len(props))
	var errs []string
	for _, p := range props {
		v, err := strip.ParseValue(p.name, jsonValue(p.name, p.value))
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		values = append(values, v)
	}
	if len(errs) > 0 {
		return nil, errors.New(strings.Join(errs, "; "))
	}
	return values, nil
}

// jsonValue converts a decoded JSON number to the integer brightness
// expects when it has no fractional part.
func jsonValue(name strip.PropertyName, v any) any {
	if f, ok := v.(float64); ok && name == strip.PropertyBrightness && f == float64(int(f)) {
		return int(f)
	}
	return v
}

// toMap round-trips v through JSON so socket responses use the API field names.
func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// levelControl changes the log level and announces it on the bus.
type levelControl struct {
	logger *logging.Logger
	bus    *events.Bus
}

func (l *levelControl) Level() string {
	return l.logger.Level()
}

func (l *levelControl) SetLevel(level string) error {
	before := l.logger.Level()
	if err := l.logger.SetLevel(level); err != nil {
		return err
	}
	if after := l.logger.Level(); after != before {
		l.bus.Emit(events.LogLevelChanged, map[string]string{"from": before, "to": after})
	}
	return nil
}
