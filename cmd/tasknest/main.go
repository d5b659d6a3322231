package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/olopez/tasknest/internal/api/http/handler"
	"github.com/olopez/tasknest/internal/api/http/middleware"
	"github.com/olopez/tasknest/internal/api/http/router"
	"github.com/olopez/tasknest/internal/config"
	"github.com/olopez/tasknest/internal/logger"
	"github.com/olopez/tasknest/internal/mail"
	"github.com/olopez/tasknest/internal/repository/postgres"
	"github.com/olopez/tasknest/internal/security"
	"github.com/olopez/tasknest/internal/service"
	storage "github.com/olopez/tasknest/internal/storage/minio"
	"github.com/olopez/tasknest/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)
	hasher := security.NewBcryptHasher()
	dispatcher := mail.NewSMTPDispatcher(cfg.SMTP, cfg.FrontendURL, logger)

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	authService := service.NewAuth(userRepo, tokenManager, hasher, dispatcher, logger)
	profileService := service.NewProfile(userRepo, storageClient, logger)
	taskService := service.NewTask(taskRepo, storageClient, logger)

	app := fiber.New()
	app.Use(middleware.RequestLogger(logger))

	gate := middleware.NewGate(tokenManager, logger)
	router.Register(app,
		handler.NewAuth(authService, logger),
		handler.NewProfile(profileService, logger),
		handler.NewTask(taskService, logger),
		gate,
	)

	addr := fmt.Sprintf(":%s", cfg.HTTP.Port)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting server on", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", addr)
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
