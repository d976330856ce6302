package memo

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"our-diary/internal/middleware"
	"our-diary/internal/user"
)

// SavedFunc and DeletedFunc are the notification hooks fired after a
// successful mutation. Both are best-effort: the mutation is already
// committed when they run and their failures never reach the caller.
type (
	SavedFunc   func(memoID uint)
	DeletedFunc func(m *Memo, owner *user.User)
)

type Handler struct {
	repo      Repository
	onSaved   SavedFunc
	onDeleted DeletedFunc
}

func NewHandler(repo Repository, onSaved SavedFunc, onDeleted DeletedFunc) *Handler {
	if onSaved == nil {
		onSaved = func(uint) {}
	}
	if onDeleted == nil {
		onDeleted = func(*Memo, *user.User) {}
	}
	return &Handler{repo: repo, onSaved: onSaved, onDeleted: onDeleted}
}

// GET /api/memos/
func (h *Handler) List(c *fiber.Ctx) error {
	u := middleware.CurrentUser(c)

	memos, err := h.repo.ListByUser(u.ID)
	if err != nil {
		log.Printf("[memo] list failed (user %d): %v", u.ID, err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not load memos")
	}

	return c.JSON(Map(memos))
}

// POST /api/memos/
func (h *Handler) Upsert(c *fiber.Ctx) error {
	u := middleware.CurrentUser(c)

	var req struct {
		DateKey    string `json:"dateKey"`
		MemoryData *Input `json:"memoryData"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.MemoryData == nil {
		return fiber.NewError(fiber.StatusBadRequest, "dateKey and memoryData are required")
	}
	if _, err := time.Parse("2006-01-02", req.DateKey); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "dateKey must be formatted YYYY-MM-DD")
	}

	m := &Memo{
		UserID:    u.ID,
		DateKey:   req.DateKey,
		Title:     req.MemoryData.Title,
		Location:  req.MemoryData.Location,
		Story:     req.MemoryData.Story,
		Keywords:  req.MemoryData.Keywords,
		SendEmail: req.MemoryData.SendEmail,
	}
	if err := h.repo.Upsert(m); err != nil {
		log.Printf("[memo] upsert failed (user %d, %s): %v", u.ID, req.DateKey, err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not save memo")
	}

	// Re-fetch for the row id; on a conflict update Create does not
	// report the existing row.
	saved, err := h.repo.FindByUserAndDate(u.ID, req.DateKey)
	if err != nil {
		log.Printf("[memo] post-upsert fetch failed (user %d, %s): %v", u.ID, req.DateKey, err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not save memo")
	}

	go h.onSaved(saved.ID)

	return h.respondWithAll(c, u.ID, fiber.StatusCreated)
}

// DELETE /api/memos/:dateKey
func (h *Handler) Delete(c *fiber.Ctx) error {
	u := middleware.CurrentUser(c)
	dateKey := c.Params("dateKey")

	// Fetch first so the deletion notification has the memo's content.
	existing, err := h.repo.FindByUserAndDate(u.ID, dateKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		log.Printf("[memo] pre-delete fetch failed (user %d, %s): %v", u.ID, dateKey, err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not delete memo")
	}

	if err := h.repo.Delete(u.ID, dateKey); err != nil {
		log.Printf("[memo] delete failed (user %d, %s): %v", u.ID, dateKey, err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not delete memo")
	}

	// Deleting a date with no memo is not an error; the caller just gets
	// their unchanged set back.
	if existing != nil {
		owner := *u
		go h.onDeleted(existing, &owner)
	}

	return h.respondWithAll(c, u.ID, fiber.StatusOK)
}

// Every mutation returns the full refreshed memo map so clients never have
// to merge partial updates.
func (h *Handler) respondWithAll(c *fiber.Ctx, userID uint, status int) error {
	memos, err := h.repo.ListByUser(userID)
	if err != nil {
		log.Printf("[memo] list failed (user %d): %v", userID, err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not load memos")
	}
	return c.Status(status).JSON(Map(memos))
}
