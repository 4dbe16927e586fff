// Package remote serves the terminal drill over SSH.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"github.com/verte-zerg/warmup/internal/game"
	"github.com/verte-zerg/warmup/internal/generator"
	"github.com/verte-zerg/warmup/internal/model"
	"github.com/verte-zerg/warmup/internal/tui"
)

const shutdownTimeout = 5 * time.Second

// Config describes where the SSH server listens and how games start.
type Config struct {
	Host        string
	Port        string
	HostKeyPath string
	Settings    game.Settings
}

// Server runs one independent game per SSH session.
type Server struct {
	srv      *ssh.Server
	logger   *log.Logger
	addr     string
	settings game.Settings
}

// New creates the server. The host key is generated at cfg.HostKeyPath
// if it does not exist yet.
func New(cfg Config, logger *log.Logger) (*Server, error) {
	if cfg.HostKeyPath == "" {
		return nil, errors.New("host key path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.HostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create host key dir: %w", err)
	}

	s := &Server{
		logger:   logger,
		addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		settings: cfg.Settings.Clamp(),
	}
	srv, err := wish.NewServer(
		wish.WithAddress(s.addr),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithMiddleware(
			bm.Middleware(s.teaHandler),
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Keystrokes are tiny and latency-sensitive.
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh server: %w", err)
	}
	s.srv = srv
	return s, nil
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting ssh server", "addr", ln.Addr().String())
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("stopping ssh server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = s.srv.Shutdown(shutdownCtx)
	_ = ln.Close()
	if err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func (s *Server) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	s.logger.Info("new session", "user", sess.User(), "remote", sess.RemoteAddr().String())
	return newSessionModel(s.settings, bm.MakeRenderer(sess)), []tea.ProgramOption{tea.WithAltScreen()}
}

// newSessionModel builds a fresh game that is never saved.
func newSessionModel(settings game.Settings, r *lipgloss.Renderer) *tui.Model {
	engine := game.New(settings, generator.New())
	return tui.NewModel(model.Config{NoSave: true}, engine, tui.WithRenderer(r))
}
