package app

import (
	"log"
	"time"

	"our-diary/internal/ai"
	"our-diary/internal/auth"
	"our-diary/internal/auth/verification"
	"our-diary/internal/config"
	database "our-diary/internal/db"
	"our-diary/internal/memo"
	"our-diary/internal/middleware"
	"our-diary/internal/notification"
	"our-diary/internal/user"
	"our-diary/internal/weather"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func New(cfg *config.Config) *fiber.App {
	/* ------------ DB ------------ */
	db, err := database.Connect(cfg.DSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	if err := database.Migrate(db, cfg.MigrateOnStart,
		&user.User{},
		&memo.Memo{},
		&notification.DelayedJob{},
	); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	/* ------------ Mail ------------ */
	var sender notification.Sender = notification.LogSender{}
	if cfg.SMTPHost != "" && cfg.SMTPFrom != "" {
		smtpCfg, err := notification.ConfigFromEnv(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
		if err != nil {
			log.Printf("invalid SMTP configuration: %v", err)
		} else if mailer, err := notification.NewMailer(smtpCfg); err != nil {
			log.Printf("mailer init failed: %v", err)
		} else {
			sender = mailer
		}
	} else {
		log.Println("SMTP configuration incomplete; emails will be logged instead of sent")
	}

	/* ------------ Verification codes ------------ */
	var codes verification.Store = verification.NewMemoryStore()
	if cfg.RedisAddr != "" {
		store, err := verification.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("redis unavailable, falling back to in-memory codes: %v", err)
		} else {
			codes = store
		}
	}

	/* ------------ Services ------------ */
	userSvc := user.NewService(user.NewGormRepo(db))
	tokens := auth.NewTokenIssuer(cfg.JWTSecret)
	memoRepo := memo.NewGormRepo(db)
	notifRepo := notification.NewRepository(db)

	notifier := notification.NewNotifier(notifRepo, sender)
	if err := notifier.Restore(); err != nil {
		log.Printf("restore pending reminders: %v", err)
	}

	scheduler := notification.NewScheduler(notifRepo, sender, cfg.NotifyHour)
	scheduler.Start()

	var generator ai.Generator
	if cfg.GeminiAPIKey != "" {
		client, err := ai.NewClient(cfg.GeminiAPIKey, "", nil)
		if err != nil {
			log.Printf("ai client init failed: %v", err)
		} else {
			generator = client
		}
	} else {
		log.Println("GEMINI_API_KEY missing; AI endpoints disabled")
	}

	weatherSvc := weather.NewService(nil, cfg.KMAServiceKey, "", "")

	googleVerifier := auth.NewGoogleClient(nil, "")
	oauthFlow := auth.NewOAuthFlow(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL)

	/* ------------ Handlers ------------ */
	authHdl := auth.NewHandler(userSvc, tokens, codes, sender, googleVerifier, oauthFlow, cfg.FrontendURI)
	memoHdl := memo.NewHandler(memoRepo, notifier.MemoSaved, notifier.MemoDeleted)
	aiHdl := ai.NewHandler(generator)
	weatherHdl := weather.NewHandler(weatherSvc)

	/* ------------ Fiber ------------ */
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	srv := app.Server()
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURI,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Accept, Authorization, Content-Type",
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	/* ------------ Public routes ------------ */
	authGroup := app.Group("/api/auth")
	authGroup.Post("/send-verification", authHdl.SendVerification)
	authGroup.Post("/signup", authHdl.Signup)
	authGroup.Post("/login", authHdl.Login)
	authGroup.Post("/google", authHdl.GoogleToken)
	authGroup.Get("/google/login", authHdl.GoogleRedirect)
	authGroup.Get("/google/callback", authHdl.GoogleCallback)

	/* ------------ Protected routes ------------ */
	protect := middleware.Protect(tokens, userSvc)

	app.Get("/api/weather/recommendation", protect, weatherHdl.Recommendation)

	authGroup.Put("/update-nickname", protect, authHdl.UpdateNickname)
	authGroup.Put("/update-password", protect, authHdl.UpdatePassword)
	authGroup.Post("/request-delete-code", protect, authHdl.RequestDeleteCode)
	authGroup.Post("/delete-account", protect, authHdl.DeleteAccount)

	memos := app.Group("/api/memos", protect)
	memos.Get("/", memoHdl.List)
	memos.Post("/", memoHdl.Upsert)
	memos.Delete("/:dateKey", memoHdl.Delete)

	aiGroup := app.Group("/api/ai", protect)
	aiGroup.Post("/chat", aiHdl.Chat)
	aiGroup.Post("/highlight", aiHdl.Highlight)

	return app
}
