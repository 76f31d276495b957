package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chiragjethva03/sarvam-backend/internal/auth"
	"github.com/chiragjethva03/sarvam-backend/internal/config"
	"github.com/chiragjethva03/sarvam-backend/internal/handler"
	"github.com/chiragjethva03/sarvam-backend/internal/mail"
	"github.com/chiragjethva03/sarvam-backend/internal/metrics"
	"github.com/chiragjethva03/sarvam-backend/internal/middleware"
	"github.com/chiragjethva03/sarvam-backend/internal/service"
	"github.com/chiragjethva03/sarvam-backend/internal/storage/sqlite"
	"github.com/chiragjethva03/sarvam-backend/internal/upload"
	"github.com/chiragjethva03/sarvam-backend/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env", "error", err)
	}

	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.NewWithTimeout(cfg.DBPath, cfg.StoreTimeout)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	var uploader upload.Uploader
	uploadDir := ""
	if cfg.S3Bucket != "" {
		uploader = upload.NewS3Uploader(cfg.S3Endpoint, cfg.S3Region, cfg.S3Bucket, cfg.S3AccessKey, cfg.S3SecretKey)
		slog.Info("Using S3 object storage", "bucket", cfg.S3Bucket)
	} else {
		local, err := upload.NewLocalUploader(cfg.UploadDir)
		if err != nil {
			slog.Error("Failed to initialize upload dir", "error", err)
			os.Exit(1)
		}
		uploader = local
		uploadDir = local.Dir()
		slog.Info("Using local upload storage", "dir", uploadDir)
	}

	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	} else {
		mailer = mail.LogMailer{}
		slog.Warn("SMTP unconfigured, reset codes will be logged instead of mailed")
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)

	authLimiter := middleware.NewRateLimiter(cfg.RateLimitAuth)
	defer authLimiter.Stop()
	generalLimiter := middleware.NewRateLimiter(cfg.RateLimitGeneral)
	defer generalLimiter.Stop()

	router := handler.NewRouter(handler.Deps{
		Auth:              service.NewAuthService(store, jwtManager, mailer, collector),
		Users:             service.NewUserService(store, uploader),
		Posts:             service.NewPostService(store, uploader, collector),
		Groups:            service.NewGroupService(store, collector),
		JWT:               jwtManager,
		Registry:          registry,
		Metrics:           collector,
		AuthLimiter:       authLimiter,
		GeneralLimiter:    generalLimiter,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		UploadDir:         uploadDir,
	})

	addr := ":" + cfg.Port
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
