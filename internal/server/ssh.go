// Package server serves the board over SSH using Wish.
package server

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"github.com/bborn/lanes/internal/config"
	"github.com/bborn/lanes/internal/events"
	"github.com/bborn/lanes/internal/ui"
)

// ThemeEnv selects a session's theme, e.g. `ssh -o SetEnv=LANES_THEME=nord`.
const ThemeEnv = "LANES_THEME"

// Server is the SSH server.
type Server struct {
	store   ui.Store
	cfg     *config.Config
	emitter *events.Emitter
	srv     *ssh.Server
	logger  *log.Logger
	addr    string
	hostKey string
}

// Config holds server configuration.
type Config struct {
	Addr        string // e.g. "localhost:2323"
	HostKeyPath string // e.g. "~/.local/share/lanes/ssh/host_ed25519"
	Store       ui.Store
	App         *config.Config
	Emitter     *events.Emitter
	Logger      *log.Logger
}

// New creates a new SSH server.
func New(cfg Config) (*Server, error) {
	s := &Server{
		store:   cfg.Store,
		cfg:     cfg.App,
		emitter: cfg.Emitter,
		addr:    cfg.Addr,
		hostKey: cfg.HostKeyPath,
		logger:  cfg.Logger,
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "ssh"})
	}

	if err := os.MkdirAll(filepath.Dir(s.hostKey), 0700); err != nil {
		return nil, fmt.Errorf("create host key dir: %w", err)
	}

	srv, err := wish.NewServer(
		wish.WithAddress(s.addr),
		wish.WithHostKeyPath(s.hostKey),
		wish.WithMiddleware(
			bubbletea.Middleware(s.teaHandler),
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(s.logger),
		),
		// Any key may connect; bind to localhost unless the network is trusted.
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			return true
		}),
		wish.WithPasswordAuth(func(ctx ssh.Context, password string) bool {
			return false
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}

	s.srv = srv
	return s, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string { return s.addr }

// Start starts the SSH server. It blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("SSH server starting", "addr", s.addr)
	return s.srv.ListenAndServe()
}

// Serve accepts sessions on l.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("SSH server starting", "addr", l.Addr())
	return s.srv.Serve(l)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("SSH server shutting down")
	return s.srv.Shutdown(ctx)
}

// teaHandler returns the Bubble Tea program for each SSH session. Sessions
// share the store; each has its own board state and watches the database for
// the others' writes.
func (s *Server) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	opts := []ui.Option{
		ui.WithLogger(s.logger.With("user", sess.User())),
		ui.WithEmitter(s.emitter),
	}
	if theme := GetEnvValue(sess.Environ(), ThemeEnv); theme != "" {
		opts = append(opts, ui.WithTheme(theme))
	}
	model := ui.NewAppModel(s.store, s.cfg, opts...)

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// GetEnvValue returns the value of key in an environ list, or "".
func GetEnvValue(environ []string, key string) string {
	prefix := key + "="
	for _, kv := range environ {
		if v, ok := strings.CutPrefix(kv, prefix); ok {
			return v
		}
	}
	return ""
}
