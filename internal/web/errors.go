package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
	"go.uber.org/zap"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

// handleError maps domain errors to status codes: client errors 404, infrastructure errors 500.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status, detail := classify(err)
	if status >= fiber.StatusInternalServerError {
		s.l.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(errorResponse{Detail: detail})
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.Is(err, domain.ErrUnsupportedSymbol):
		return fiber.StatusNotFound, "Cryptocurrency not supported"
	case errors.Is(err, domain.ErrPriceNotFound):
		return fiber.StatusNotFound, "Price data not found"
	case errors.Is(err, domain.ErrPriceSourceUnavailable):
		return fiber.StatusInternalServerError, "Failed to fetch crypto prices"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return fiber.StatusInternalServerError, "Failed to access recommendation store"
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}
