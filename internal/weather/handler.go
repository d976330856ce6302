package weather

import (
	"github.com/gofiber/fiber/v2"
)

// Handler serves the activity recommendation endpoint.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type recommendationQuery struct {
	Date string  `query:"date"`
	Lat  float64 `query:"lat"`
	Lon  float64 `query:"lon"`
}

// Recommendation handles GET /api/weather/recommendation.
func (h *Handler) Recommendation(c *fiber.Ctx) error {
	var q recommendationQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}
	if q.Date == "" {
		return fiber.NewError(fiber.StatusBadRequest, "date is required")
	}

	result := h.svc.Recommendation(c.Context(), q.Date, q.Lat, q.Lon)
	return c.JSON(result)
}
