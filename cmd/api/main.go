package main

import (
	"log"

	"our-diary/internal/app"
	"our-diary/internal/config"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	srv := app.New(cfg)
	log.Printf("Server running on :%s", cfg.AppPort)

	if err := srv.Listen(":" + cfg.AppPort); err != nil {
		log.Fatal(err)
	}
}
