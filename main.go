package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/nstehr/vimy/vimy-tactics/agent"
	"github.com/nstehr/vimy/vimy-tactics/config"
	"github.com/nstehr/vimy/vimy-tactics/directive"
	"github.com/nstehr/vimy/vimy-tactics/ipc"
	"github.com/nstehr/vimy/vimy-tactics/tactics"
	"github.com/nstehr/vimy/vimy-tactics/telemetry"
)

const banner = `
██╗   ██╗██╗███╗   ███╗██╗   ██╗
██║   ██║██║████╗ ████║╚██╗ ██╔╝
██║   ██║██║██╔████╔██║ ╚████╔╝
╚██╗ ██╔╝██║██║╚██╔╝██║  ╚██╔╝
 ╚████╔╝ ██║██║ ╚═╝ ██║   ██║
  ╚═══╝  ╚═╝╚═╝     ╚═╝   ╚═╝

Group Tactics for RTS Campaign AI`

// server holds what every player session shares.
type server struct {
	cfg      *config.Config
	engine   *directive.Engine
	recorder *telemetry.Recorder
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config overlay")
	socketPath := flag.String("socket", "", "unix socket path (overrides config)")
	wsAddr := flag.String("ws", "", "websocket listen address (overrides config)")
	directivesPath := flag.String("directives", "", "directives YAML file (overrides config)")
	telemetryDir := flag.String("telemetry", "", "decision log directory (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	override(&cfg.Bridge.Socket, *socketPath)
	override(&cfg.Bridge.Websocket, *wsAddr)
	override(&cfg.Directives, *directivesPath)
	override(&cfg.Telemetry.Dir, *telemetryDir)

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	slog.Info("starting vimy tactics")

	srv := &server{cfg: cfg}
	if cfg.Directives != "" {
		ds, err := directive.Load(cfg.Directives)
		if err != nil {
			slog.Error("failed to load directives", "path", cfg.Directives, "error", err)
			os.Exit(1)
		}
		if srv.engine, err = directive.NewEngine(ds); err != nil {
			slog.Error("failed to compile directives", "path", cfg.Directives, "error", err)
			os.Exit(1)
		}
		slog.Info("directives loaded", "path", cfg.Directives, "count", srv.engine.Len())
	}

	srv.recorder, err = telemetry.NewRecorder(cfg.Telemetry.Dir, cfg.Telemetry.FlushEvery)
	if err != nil {
		slog.Error("failed to open decision log", "dir", cfg.Telemetry.Dir, "error", err)
		os.Exit(1)
	}
	if srv.recorder != nil {
		defer srv.recorder.Close()
		if err := cfg.WriteYAML(filepath.Join(cfg.Telemetry.Dir, "config.yaml")); err != nil {
			slog.Warn("failed to save effective config", "error", err)
		}
		slog.Info("recording decisions", "dir", cfg.Telemetry.Dir)
	}

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(cfg.Bridge.Socket); err != nil {
		slog.Error("failed to clean up socket", "path", cfg.Bridge.Socket, "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("unix", cfg.Bridge.Socket)
	if err != nil {
		slog.Error("failed to listen on socket", "path", cfg.Bridge.Socket, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(cfg.Bridge.Socket)

	slog.Info("listening on domain socket", "path", cfg.Bridge.Socket)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			go srv.handleConn(ipc.NewStreamTransport(conn))
		}
	}()

	var httpSrv *http.Server
	if cfg.Bridge.Websocket != "" {
		mux := http.NewServeMux()
		mux.Handle("/tactics", ipc.WebsocketHandler(srv.handleConn))
		httpSrv = &http.Server{Addr: cfg.Bridge.Websocket, Handler: mux}
		go func() {
			slog.Info("listening for websocket bridge", "addr", cfg.Bridge.Websocket, "path", "/tactics")
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("websocket bridge failed", "error", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	slog.Info("shutting down")
	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}
}

func (s *server) handleConn(t ipc.Transport) {
	session := uuid.NewString()
	var engine *directive.Engine
	if s.engine != nil {
		engine = s.engine.Fork()
	}

	c := ipc.NewConnection(t, nil)
	// A nil *Recorder must not reach the manager as a non-nil interface.
	var obs tactics.Observer
	if s.recorder != nil {
		obs = s.recorder.Observer(session)
	}
	a := agent.New(c, s.cfg.Tactics, engine, obs)
	c.RegisterHandler(ipc.TypeHello, a.HandleHello)
	c.RegisterHandler(ipc.TypeWorldState, a.HandleWorldState)
	c.RegisterHandler(ipc.TypeManageGroup, a.HandleManageGroup)
	c.RegisterHandler(ipc.TypeStopManaging, a.HandleStopManaging)

	slog.Info("session started", "session", session)
	c.ReadLoop()
	slog.Info("session ended", "session", session, "player", a.Player)
	if err := s.recorder.Flush(); err != nil {
		slog.Warn("failed to flush decision log", "error", err)
	}
}

func override(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}
