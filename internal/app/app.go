// Package app assembles the triage server from its components.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/metalagman/triage/internal/analysis"
	"github.com/metalagman/triage/internal/api"
	"github.com/metalagman/triage/internal/config"
	"github.com/metalagman/triage/internal/mcpserver"
	"github.com/metalagman/triage/internal/priority"
	"github.com/metalagman/triage/internal/task"
)

// MCPPath is where the MCP endpoint is mounted when enabled.
const MCPPath = "/mcp"

// connectGrace is added to the storage connect timeout to cover migrations.
const connectGrace = 30 * time.Second

// Version identifies the running build.
type Version string

// Module provides every server component and starts the HTTP listener.
func Module(cfg config.Config, version string) fx.Option {
	return fx.Options(
		fx.WithLogger(func() fxevent.Logger { return &eventLogger{} }),
		fx.Supply(cfg, Version(version)),
		fx.Provide(
			provideRepository,
			provideEngine,
			provideService,
			api.NewServer,
			provideMCP,
			provideHandler,
			NewHTTPServer,
		),
		fx.Invoke(func(*HTTPServer) {}),
	)
}

// New builds the server application. extra options are appended last so
// callers can decorate or replace components.
func New(cfg config.Config, version string, extra ...fx.Option) *fx.App {
	return fx.New(append([]fx.Option{Module(cfg, version)}, extra...)...)
}

func provideRepository(lc fx.Lifecycle, cfg config.Config) (task.Repository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Storage.ConnectTimeout+connectGrace)
	defer cancel()
	repo, closeFn, err := OpenRepository(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(closeFn))
	return repo, nil
}

func provideEngine(cfg config.Config) (*priority.Engine, error) {
	loc, err := cfg.Analysis.Location()
	if err != nil {
		return nil, err
	}
	return priority.NewEngine(priority.WithLocation(loc)), nil
}

func provideService(repo task.Repository, engine *priority.Engine, cfg config.Config) *analysis.Service {
	return analysis.NewService(repo, engine, analysis.Defaults{
		Strategy:    cfg.Analysis.Strategy,
		Suggestions: cfg.Analysis.Suggestions,
	})
}

// provideMCP returns nil when the endpoint is disabled.
func provideMCP(cfg config.Config, svc *analysis.Service, version Version) *mcpserver.Server {
	if !cfg.MCP.Enabled {
		return nil
	}
	return mcpserver.New(svc, string(version))
}

func provideHandler(srv *api.Server, mcp *mcpserver.Server) http.Handler {
	if mcp == nil {
		return srv.Routes()
	}
	mux := http.NewServeMux()
	mux.Handle(MCPPath, mcp.Handler())
	mux.Handle("/", srv.Routes())
	return mux
}

// HTTPServer runs the HTTP listener for the lifetime of the application.
type HTTPServer struct {
	srv *http.Server

	mu   sync.Mutex
	addr net.Addr
}

// NewHTTPServer registers the listener with the lifecycle.
func NewHTTPServer(lc fx.Lifecycle, cfg config.Config, handler http.Handler) *HTTPServer {
	hs := &HTTPServer{
		srv: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
	lc.Append(fx.Hook{
		OnStart: hs.start,
		OnStop: func(ctx context.Context) error {
			if cfg.Server.ShutdownTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
				defer cancel()
			}
			return hs.srv.Shutdown(ctx)
		},
	})
	return hs
}

// Addr returns the bound address, nil before start.
func (hs *HTTPServer) Addr() net.Addr {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return hs.addr
}

func (hs *HTTPServer) start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", hs.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", hs.srv.Addr, err)
	}
	hs.mu.Lock()
	hs.addr = ln.Addr()
	hs.mu.Unlock()

	log.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
	go func() {
		if err := hs.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
		}
	}()
	return nil
}
