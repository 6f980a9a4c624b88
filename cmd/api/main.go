package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/courierlabs/robocourier-backend/api/controllers"
	"github.com/courierlabs/robocourier-backend/api/responses"
	"github.com/courierlabs/robocourier-backend/api/routes"
	"github.com/courierlabs/robocourier-backend/internal/auth"
	"github.com/courierlabs/robocourier-backend/internal/deliveries"
	"github.com/courierlabs/robocourier-backend/internal/dispatch"
	"github.com/courierlabs/robocourier-backend/internal/robots"
	"github.com/courierlabs/robocourier-backend/internal/state"
	"github.com/courierlabs/robocourier-backend/internal/targets"
	"github.com/courierlabs/robocourier-backend/internal/users"
	"github.com/courierlabs/robocourier-backend/pkg/config"
	"github.com/courierlabs/robocourier-backend/pkg/db"
	"github.com/courierlabs/robocourier-backend/pkg/logger"
	"github.com/courierlabs/robocourier-backend/pkg/metrics"
	"github.com/courierlabs/robocourier-backend/pkg/migrate"
	"github.com/courierlabs/robocourier-backend/pkg/redis"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "robocourier-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "connecting to database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if cfg.DB.AutoMigrate {
		if err := migrate.Run(ctx, dbClient, logg); err != nil {
			logg.Error(ctx, "migrating schema", err)
			os.Exit(1)
		}
	}

	var sessions auth.SessionStore
	var readiness []controllers.Pinger
	readiness = append(readiness, dbClient)

	if strings.EqualFold(cfg.Auth.SessionBackend, "redis") {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "connecting to redis", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		sessions = auth.NewRedisSessions(redisClient)
		readiness = append(readiness, redisClient)
	} else {
		sessions = auth.NewMemorySessions()
	}

	m := metrics.New()
	store := state.NewStore()

	userRepo := users.NewRepo(dbClient)
	userService := users.NewService(userRepo, logg, cfg.Password)

	targetRepo := targets.NewRepo(dbClient)
	targetService := targets.NewService(targetRepo, logg)

	authService := auth.NewService(userService, sessions, logg, cfg.Auth)

	deliveryService := deliveries.NewService(store, userService, targetService, logg, m)
	dispatchService := dispatch.NewService(store, authService, logg, m, cfg.Dispatch)
	robotService := robots.NewService(store, logg)

	writer := responses.NewWriter(logg, !cfg.App.IsProd())

	router := routes.New(routes.Deps{
		Logger:           logg,
		Writer:           writer,
		Metrics:          m,
		Resolver:         authService,
		Accounts:         userService,
		Sessions:         authService,
		Users:            userService,
		Targets:          targetService,
		Deliveries:       deliveryService,
		Dispatcher:       dispatchService,
		Robots:           robotService,
		Verifier:         dispatchService,
		ReadinessPingers: readiness,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "server stopped", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "shutting down", err)
	}
	logg.Info(shutdownCtx, "server stopped")
}
