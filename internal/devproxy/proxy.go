package devproxy

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// PredictPath is the only route forwarded to the prediction service.
const PredictPath = "/predict"

// Server forwards /predict to the prediction service so a client can use a
// relative URL during development.
type Server struct {
	app    *fiber.App
	target string
	logger *slog.Logger
}

// New builds the proxy app. target is the prediction service base URL, e.g.
// "http://127.0.0.1:3000". bodyLimit caps the upload size in bytes.
func New(target string, bodyLimit int, logger *slog.Logger) *Server {
	s := &Server{
		target: strings.TrimRight(target, "/"),
		logger: logger,
	}

	app := fiber.New(fiber.Config{
		AppName:               "atscan dev proxy",
		ReadTimeout:           30 * time.Second,
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	}))

	app.Get("/healthz", s.handleHealth)
	app.Post(PredictPath, s.handlePredict)

	s.app = app
	return s
}

// App exposes the underlying fiber app (used by tests via app.Test).
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("dev proxy listening", "addr", addr, "target", s.target)
	return s.app.Listen(addr)
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"target": s.target,
	})
}

// handlePredict forwards the request, path and query included, to the target.
// The upstream Host is taken from the target URL.
func (s *Server) handlePredict(c *fiber.Ctx) error {
	upstream := s.target + c.OriginalURL()
	if err := proxy.Do(c, upstream); err != nil {
		s.logger.Warn("upstream request failed", "upstream", upstream, "error", err)
		return fiber.NewError(fiber.StatusBadGateway, fmt.Sprintf("prediction service unreachable: %v", err))
	}
	return nil
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
