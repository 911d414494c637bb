package web

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/vadiminshakov/cryptoadvisor/internal/services"
)

const maxStatusChecks = 1000

type statusCheckRequest struct {
	ClientName string `json:"client_name"`
}

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Crypto Investment AI API"})
}

func (s *Server) handleCreateStatus(c *fiber.Ctx) error {
	var req statusCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid request body")
	}
	if req.ClientName == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "client_name is required")
	}

	check, err := s.svc.CreateStatusCheck(c.UserContext(), req.ClientName)
	if err != nil {
		return err
	}
	return c.JSON(check)
}

func (s *Server) handleListStatus(c *fiber.Ctx) error {
	checks, err := s.svc.StatusChecks(c.UserContext(), maxStatusChecks)
	if err != nil {
		return err
	}
	return c.JSON(checks)
}

func (s *Server) handlePrices(c *fiber.Ctx) error {
	prices, err := s.svc.Prices(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(prices)
}

func (s *Server) handleAnalysis(c *fiber.Ctx) error {
	analysis, err := s.svc.Analyze(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(analysis)
}

func (s *Server) handleRecommendation(c *fiber.Ctx) error {
	rec, err := s.svc.Recommend(c.UserContext(), c.Params("symbol"))
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	days, err := intQuery(c, "days", services.DefaultHistoryDays, 1, services.MaxHistoryDays)
	if err != nil {
		return err
	}

	points, err := s.svc.History(c.UserContext(), c.Params("symbol"), days)
	if err != nil {
		return err
	}
	return c.JSON(points)
}

func (s *Server) handleRecommendationHistory(c *fiber.Ctx) error {
	limit, err := intQuery(c, "limit", services.DefaultHistoryLimit, 1, services.MaxHistoryLimit)
	if err != nil {
		return err
	}

	recs, err := s.svc.RecommendationHistory(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(recs)
}

// intQuery reads an optional integer query parameter within [lo, hi].
func intQuery(c *fiber.Ctx, key string, def, lo, hi int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, fiber.NewError(fiber.StatusUnprocessableEntity,
			fmt.Sprintf("%s must be an integer between %d and %d", key, lo, hi))
	}
	return v, nil
}
