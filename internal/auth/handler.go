package auth

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"our-diary/internal/auth/verification"
	"our-diary/internal/middleware"
	"our-diary/internal/notification"
	"our-diary/internal/user"
)

type Handler struct {
	users  *user.Service
	tokens *TokenIssuer
	codes  verification.Store
	sender notification.Sender
	google GoogleVerifier
	flow   *OAuthFlow

	frontendURI string
}

func NewHandler(users *user.Service, tokens *TokenIssuer, codes verification.Store,
	sender notification.Sender, google GoogleVerifier, flow *OAuthFlow, frontendURI string) *Handler {
	return &Handler{
		users:       users,
		tokens:      tokens,
		codes:       codes,
		sender:      sender,
		google:      google,
		flow:        flow,
		frontendURI: frontendURI,
	}
}

// POST /api/auth/send-verification
func (h *Handler) SendVerification(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil || !strings.Contains(req.Email, "@") {
		return fiber.NewError(fiber.StatusBadRequest, "a valid email address is required")
	}

	code, err := verification.NewCode()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not generate verification code")
	}

	subject, body := notification.VerificationCodeEmail(code)
	if err := h.sender.Send(req.Email, subject, body); err != nil {
		log.Printf("[auth] verification mail failed (to %s): %v", req.Email, err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not send verification email")
	}

	if err := h.codes.Set(req.Email, code); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not store verification code")
	}

	return c.JSON(fiber.Map{"message": "verification code sent"})
}

// POST /api/auth/signup
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req struct {
		Nickname         string `json:"nickname"`
		SignupID         string `json:"signupId"`
		SignupEmail      string `json:"signupEmail"`
		SignupPassword   string `json:"signupPassword"`
		VerificationCode string `json:"verificationCode"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.SignupID == "" || req.Nickname == "" || req.SignupEmail == "" || req.SignupPassword == "" {
		return fiber.NewError(fiber.StatusBadRequest, "all signup fields are required")
	}

	if err := h.checkCode(req.SignupEmail, req.VerificationCode); err != nil {
		return err
	}

	if _, err := h.users.Signup(req.SignupID, req.Nickname, req.SignupEmail, req.SignupPassword); err != nil {
		switch {
		case errors.Is(err, user.ErrUsernameTaken):
			return fiber.NewError(fiber.StatusConflict, "username is already taken")
		case errors.Is(err, user.ErrNicknameTaken):
			return fiber.NewError(fiber.StatusConflict, "nickname is already taken")
		case errors.Is(err, user.ErrEmailTaken):
			return fiber.NewError(fiber.StatusConflict, "email is already registered")
		default:
			log.Printf("[auth] signup failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "signup failed")
		}
	}

	// single-use
	if err := h.codes.Consume(req.SignupEmail); err != nil {
		log.Printf("[auth] could not consume verification code: %v", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "signup complete, please log in"})
}

// POST /api/auth/login
func (h *Handler) Login(c *fiber.Ctx) error {
	var req struct {
		LoginID  string `json:"loginId"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil || req.LoginID == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "loginId and password are required")
	}

	u, err := h.users.Authenticate(req.LoginID, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		log.Printf("[auth] login failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "login failed")
	}

	return h.respondWithToken(c, u)
}

// POST /api/auth/google
func (h *Handler) GoogleToken(c *fiber.Ctx) error {
	var req struct {
		Credential string `json:"credential"`
	}
	if err := c.BodyParser(&req); err != nil || req.Credential == "" {
		return fiber.NewError(fiber.StatusBadRequest, "google access token is required")
	}

	profile, err := h.google.Profile(c.Context(), req.Credential)
	if err != nil {
		log.Printf("[auth] google verification failed: %v", err)
		return fiber.NewError(fiber.StatusUnauthorized, "google authentication failed")
	}

	u, err := h.users.FindOrCreateGoogle(profile.Email, profile.Name)
	if err != nil {
		log.Printf("[auth] google provisioning failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "google login failed")
	}

	return h.respondWithToken(c, u)
}

// GET /api/auth/google/login
func (h *Handler) GoogleRedirect(c *fiber.Ctx) error {
	if h.flow == nil || !h.flow.Configured() {
		return fiber.NewError(fiber.StatusInternalServerError, "google oauth is not configured")
	}
	return c.Redirect(h.flow.AuthCodeURL("state-token"), fiber.StatusTemporaryRedirect)
}

// GET /api/auth/google/callback
func (h *Handler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing code")
	}

	profile, err := h.flow.ExchangeProfile(c.Context(), code)
	if err != nil {
		log.Printf("[auth] google callback failed: %v", err)
		return fiber.NewError(fiber.StatusUnauthorized, "google authentication failed")
	}

	u, err := h.users.FindOrCreateGoogle(profile.Email, profile.Name)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "google login failed")
	}

	token, err := h.tokens.Sign(u)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not issue token")
	}

	return c.Redirect(strings.TrimRight(h.frontendURI, "/")+"/login?token="+token, fiber.StatusSeeOther)
}

// PUT /api/auth/update-nickname
func (h *Handler) UpdateNickname(c *fiber.Ctx) error {
	u := middleware.CurrentUser(c)

	var req struct {
		NewNickname string `json:"newNickname"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.NewNickname) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "nickname cannot be empty")
	}

	if err := h.users.UpdateNickname(u.ID, req.NewNickname); err != nil {
		if errors.Is(err, user.ErrNicknameTaken) {
			return fiber.NewError(fiber.StatusConflict, "nickname is already taken")
		}
		log.Printf("[auth] nickname update failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "nickname update failed")
	}

	return c.JSON(fiber.Map{
		"message":     "nickname updated",
		"newNickname": req.NewNickname,
	})
}

// PUT /api/auth/update-password
func (h *Handler) UpdatePassword(c *fiber.Ctx) error {
	u := middleware.CurrentUser(c)

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.NewPassword) < 6 {
		return fiber.NewError(fiber.StatusBadRequest, "new password must be at least 6 characters")
	}

	if err := h.users.UpdatePassword(u.ID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, "current password does not match")
		}
		log.Printf("[auth] password update failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "password update failed")
	}

	return c.JSON(fiber.Map{"message": "password updated, please log in again"})
}

// POST /api/auth/request-delete-code
func (h *Handler) RequestDeleteCode(c *fiber.Ctx) error {
	u := middleware.CurrentUser(c)

	code, err := verification.NewCode()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not generate verification code")
	}

	subject, body := notification.DeleteCodeEmail(code)
	if err := h.sender.Send(u.Email, subject, body); err != nil {
		log.Printf("[auth] delete-code mail failed (to %s): %v", u.Email, err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not send verification email")
	}

	if err := h.codes.Set(u.Email, code); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not store verification code")
	}

	return c.JSON(fiber.Map{"message": "account deletion code sent"})
}

// POST /api/auth/delete-account
func (h *Handler) DeleteAccount(c *fiber.Ctx) error {
	u := middleware.CurrentUser(c)

	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.checkCode(u.Email, req.Code); err != nil {
		return err
	}

	if err := h.users.Delete(u.ID); err != nil {
		log.Printf("[auth] account deletion failed (user %d): %v", u.ID, err)
		return fiber.NewError(fiber.StatusInternalServerError, "account deletion failed")
	}

	if err := h.codes.Consume(u.Email); err != nil {
		log.Printf("[auth] could not consume verification code: %v", err)
	}

	log.Printf("[auth] account deleted (user %d, %s)", u.ID, u.Email)
	return c.JSON(fiber.Map{"message": "account deleted"})
}

func (h *Handler) checkCode(email, code string) error {
	stored, ok, err := h.codes.Get(email)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "verification lookup failed")
	}
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "no verification code was requested or it has expired")
	}
	if stored != code {
		return fiber.NewError(fiber.StatusBadRequest, "verification code does not match")
	}
	return nil
}

func (h *Handler) respondWithToken(c *fiber.Ctx, u *user.User) error {
	token, err := h.tokens.Sign(u)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not issue token")
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user":  u,
	})
}
