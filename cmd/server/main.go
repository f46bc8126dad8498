package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/potluckapp/potluck/internal/api"
	"github.com/potluckapp/potluck/internal/auth"
	"github.com/potluckapp/potluck/internal/config"
	"github.com/potluckapp/potluck/internal/service"
	"github.com/potluckapp/potluck/internal/storage/sqlite"
	"github.com/potluckapp/potluck/internal/uploads"
	"github.com/potluckapp/potluck/pkg/logging"
)

func main() {
	logging.Setup()

	cfg := config.Load()

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	// Image uploads
	images, err := uploads.NewImageStore(cfg.UploadDir, cfg.UploadMaxSize)
	if err != nil {
		slog.Error("Failed to initialize image store", "error", err)
		os.Exit(1)
	}
	slog.Info("Image store initialized", "directory", cfg.UploadDir)

	// Auth components: secret and token lifetime come from config, not
	// package globals, so everything stays testable in isolation.
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	// Services
	authSvc := service.NewAuthService(authenticator, jwtManager, store, slog.Default())
	groupSvc := service.NewGroupService(store)
	recipeSvc := service.NewRecipeService(store)

	router := api.New(authSvc, groupSvc, recipeSvc, jwtManager, images, cfg.AllowedOrigin).Router()

	// Wrap with h2c for HTTP/2 without TLS
	h2cHandler := h2c.NewHandler(router, &http2.Server{})

	addr := fmt.Sprintf(":%s", cfg.Port)
	slog.Info("Potluck server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
