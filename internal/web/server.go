// Package web serves the browser edition of the drill.
package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
)

const shutdownTimeout = 5 * time.Second

//go:embed assets
var assets embed.FS

type asset struct {
	name        string
	contentType string
}

var routes = map[string]asset{
	"/":           {name: "index.html", contentType: "text/html;charset=UTF-8"},
	"/index.html": {name: "index.html", contentType: "text/html;charset=UTF-8"},
	"/styles.css": {name: "styles.css", contentType: "text/css;charset=UTF-8"},
	"/script.js":  {name: "script.js", contentType: "application/javascript;charset=UTF-8"},
}

// Server is the HTTP front for the embedded game page.
type Server struct {
	app    *fiber.App
	logger *log.Logger
}

// New builds the fiber app with every route registered.
func New(logger *log.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:               "warmup",
		DisableStartupMessage: true,
	})
	app.Use(RequestLogger(logger))

	for path, a := range routes {
		body, err := fs.ReadFile(assets, "assets/"+a.name)
		if err != nil {
			return nil, fmt.Errorf("failed to read asset %s: %w", a.name, err)
		}
		app.Get(path, serveAsset(body, a.contentType))
	}
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("Not Found")
	})

	return &Server{app: app, logger: logger}, nil
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "addr", "http://"+addr)
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("stopping web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.app.ShutdownWithContext(shutdownCtx)
}

func serveAsset(body []byte, contentType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, contentType)
		return c.Send(body)
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Info("request",
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"latency", time.Since(start),
		)
		return err
	}
}
