package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/webiot/signage-admin-core/internal/mailer"
	"github.com/webiot/signage-admin-core/internal/otp"
	"github.com/webiot/signage-admin-core/internal/router"
	"github.com/webiot/signage-admin-core/internal/upload"
	"github.com/webiot/signage-admin-core/pkg/database"
	"github.com/webiot/signage-admin-core/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.InitLogger(utilities.LogConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting signage-admin-core")

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		sugar.Fatal("JWT_SECRET is required")
	}

	// init db
	cfg := database.ConfigFromEnv()
	sqlDB, err := database.Connect(cfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	// wrap with sqlx for convenience in repos/services
	sqlxDB := sqlx.NewDb(sqlDB, "postgres")
	defer sqlxDB.Close()

	// create tables if this is a fresh database
	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
	if err := router.EnsureSchema(schemaCtx, sqlxDB); err != nil {
		cancelSchema()
		sugar.Fatalf("ensure schema: %v", err)
	}
	cancelSchema()

	storage, err := upload.NewStorage(os.Getenv("UPLOAD_DIR"))
	if err != nil {
		sugar.Fatalf("init upload storage: %v", err)
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sugar.Info("service is running; press Ctrl+C to stop")

	// mount http server
	handler := router.RegisterRoutes(router.Deps{
		DB:        sqlxDB,
		Logger:    sugar,
		JWTSecret: []byte(secret),
		Storage:   storage,
		Mail:      mailer.NewSMTPSender(mailer.SMTPConfigFromEnv()),
		OTPStore:  otp.NewMemoryStore(),
	})

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:5000"
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// ping db once more
	if err := sqlDB.PingContext(doneCtx); err != nil {
		sugar.Warnf("db ping on shutdown failed: %v", err)
	}

	// shutdown http server
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
