// Package web exposes the advisor over HTTP.
package web

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type cryptoService interface {
	Prices(ctx context.Context) ([]domain.PriceRecord, error)
	Recommend(ctx context.Context, symbol string) (domain.Recommendation, error)
	Analyze(ctx context.Context) ([]domain.MarketAnalysis, error)
	History(ctx context.Context, symbol string, days int) ([]domain.HistoryPoint, error)
	RecommendationHistory(ctx context.Context, limit int) ([]domain.Recommendation, error)
	CreateStatusCheck(ctx context.Context, clientName string) (domain.StatusCheck, error)
	StatusChecks(ctx context.Context, limit int) ([]domain.StatusCheck, error)
}

// Server serves the JSON API under /api.
type Server struct {
	Addr string
	svc  cryptoService
	app  *fiber.App
	l    *zap.Logger
}

// NewServer creates a new web server instance. corsOrigins may contain "*".
func NewServer(l *zap.Logger, addr string, svc cryptoService, corsOrigins []string) *Server {
	s := &Server{Addr: addr, svc: svc, l: l}

	s.app = fiber.New(fiber.Config{
		AppName:               "cryptoadvisor",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(s.accessLog)
	s.app.Use(recover.New())
	s.app.Use(cors.New(corsConfig(corsOrigins)))

	s.routes()

	return s
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,OPTIONS",
	}
	if len(origins) == 0 {
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			return cfg
		}
	}

	// credentials are only allowed together with an explicit origin list
	cfg.AllowOrigins = strings.Join(origins, ",")
	cfg.AllowCredentials = true
	return cfg
}

func (s *Server) routes() {
	api := s.app.Group("/api")

	api.Get("/", s.handleRoot)
	api.Post("/status", s.handleCreateStatus)
	api.Get("/status", s.handleListStatus)

	api.Get("/crypto/prices", s.handlePrices)
	api.Get("/crypto/analysis", s.handleAnalysis)
	// must be registered before /crypto/:symbol/history
	api.Get("/crypto/recommendations/history", s.handleRecommendationHistory)
	api.Get("/crypto/:symbol/recommendation", s.handleRecommendation)
	api.Get("/crypto/:symbol/history", s.handleHistory)
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	go func() {
		<-ctx.Done()
		_ = s.app.ShutdownWithTimeout(shutdownTimeout)
	}()

	s.l.Info("HTTP server listening", zap.String("addr", s.Addr))
	return s.app.Listen(s.Addr)
}

// accessLog logs every request; errors are rendered here so the logged status is final.
func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := s.handleError(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	s.l.Info("http request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)))

	return nil
}
