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

	"github.com/uvbuddy/uvbuddy-api/internal/auth"
	"github.com/uvbuddy/uvbuddy-api/internal/notify"
	"github.com/uvbuddy/uvbuddy-api/internal/router"
	"github.com/uvbuddy/uvbuddy-api/internal/sensor"
	"github.com/uvbuddy/uvbuddy-api/internal/user"
	userrepo "github.com/uvbuddy/uvbuddy-api/internal/user/repo"
	"github.com/uvbuddy/uvbuddy-api/pkg/database"
	"github.com/uvbuddy/uvbuddy-api/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	logCfg := utilities.LogConfigFromEnv()
	lg, err := utilities.InitLogger(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting uvbuddy-api")

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

	users := userrepo.NewUserRepo(sqlxDB)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := users.EnsureTable(ctx); err != nil {
			sugar.Fatalf("ensure users table: %v", err)
		}
	}

	// credential and token services
	tokenCfg := auth.TokenConfigFromEnv()
	if err := tokenCfg.Validate(); err != nil {
		sugar.Fatalw("refusing to start with unusable token config", "err", err)
	}
	tokens := auth.NewTokenService(tokenCfg)
	hasher := auth.DefaultHasher()
	mailer := notify.NewSMTPSender(notify.SMTPConfigFromEnv())

	frontendBase := os.Getenv("FRONTEND_BASE_URL")
	if frontendBase == "" {
		frontendBase = "http://localhost:3000"
	}
	userSvc, err := user.NewService(users, hasher, tokens, mailer, utilities.NewUserID, frontendBase)
	if err != nil {
		sugar.Fatalf("user service: %v", err)
	}
	userHandler := user.NewHandler(userSvc, sugar)

	// upstream sensor feed
	feedClient, err := sensor.NewClient(nil, sensor.ClientConfigFromEnv())
	if err != nil {
		sugar.Fatalf("sensor client: %v", err)
	}
	sensorHandler := sensor.NewHandler(feedClient, sensor.HandlerConfigFromEnv(), sugar)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:3333"
	}

	handler := router.New(sugar, tokens, userHandler, sensorHandler, logCfg.Dev)
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

	sugar.Infow("service is running", "addr", addr)

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	if err := sqlDB.PingContext(doneCtx); err != nil {
		sugar.Warnf("db ping on shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
