package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"coachconnect/internal/auth"
	"coachconnect/internal/backend"
	"coachconnect/internal/chat"
	"coachconnect/internal/config"
	"coachconnect/internal/httpserver"
	"coachconnect/internal/logger"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	lg := logger.New(cfg.Env)
	defer lg.Sync()

	codec := auth.NewCodec(cfg.SessionSecret, cfg.SessionTTL)
	sessions := auth.NewCookieStore(codec, cfg.Production(), lg)
	be := backend.New(cfg.BackendURL, cfg.BackendTimeout, lg)
	nutrition := backend.New(cfg.NutritionURL, cfg.BackendTimeout, lg)
	hub := chat.NewHub(lg)

	router := httpserver.NewRouter(cfg, sessions, be, nutrition, hub, lg)
	lg.Infow("listening", "port", cfg.HTTPPort, "backend", cfg.BackendURL, "nutrition", cfg.NutritionURL)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		log.Fatal(err)
	}
}
