package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avelarde/campushub-be/internal/account"
	"github.com/avelarde/campushub-be/internal/api"
	"github.com/avelarde/campushub-be/internal/config"
	"github.com/avelarde/campushub-be/internal/database"
	"github.com/avelarde/campushub-be/internal/directory"
	"github.com/avelarde/campushub-be/internal/logger"
	"github.com/avelarde/campushub-be/internal/password"
	"github.com/avelarde/campushub-be/internal/services"
	"github.com/avelarde/campushub-be/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the session store
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	err = rdb.Ping(pingCtx).Err()
	cancelPing()
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Wire the account subsystem
	userDirectory := directory.NewSQLite(db)
	sessionManager := session.NewManager(rdb, "session", cfg.SessionTTL)
	hasher := password.NewBcryptHasher(cfg.BcryptCost)
	workflow := account.NewWorkflow(userDirectory, sessionManager, hasher)
	contactService := services.NewContactService(db)

	// Set up router
	router := api.NewRouter(workflow, userDirectory, sessionManager, contactService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
