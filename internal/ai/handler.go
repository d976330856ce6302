package ai

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
)

// Generator is what the handler needs from the upstream client; tests swap
// it for a stub.
type Generator interface {
	Chat(ctx context.Context, prompt, systemPrompt string) (string, error)
	Highlight(ctx context.Context, prompt, systemPrompt string) (string, error)
}

type Handler struct {
	gen Generator
}

func NewHandler(gen Generator) *Handler {
	return &Handler{gen: gen}
}

type promptRequest struct {
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"systemPrompt"`
}

// POST /api/ai/chat
func (h *Handler) Chat(c *fiber.Ctx) error {
	if h.gen == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "ai is not configured")
	}
	var req promptRequest
	if err := c.BodyParser(&req); err != nil || req.Prompt == "" {
		return fiber.NewError(fiber.StatusBadRequest, "prompt is required")
	}

	text, err := h.gen.Chat(c.Context(), req.Prompt, req.SystemPrompt)
	if err != nil {
		log.Printf("[ai] chat request failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "chat request failed")
	}

	return c.JSON(fiber.Map{"text": text})
}

// POST /api/ai/highlight
func (h *Handler) Highlight(c *fiber.Ctx) error {
	if h.gen == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "ai is not configured")
	}
	var req promptRequest
	if err := c.BodyParser(&req); err != nil || req.Prompt == "" {
		return fiber.NewError(fiber.StatusBadRequest, "prompt is required")
	}

	text, err := h.gen.Highlight(c.Context(), req.Prompt, req.SystemPrompt)
	if err != nil {
		log.Printf("[ai] highlight request failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "highlight request failed")
	}

	return c.JSON(fiber.Map{"text": text})
}
