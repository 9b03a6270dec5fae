// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/auctionhive/auction-backend/internal/bidding"
	"github.com/auctionhive/auction-backend/internal/broadcast"
	"github.com/auctionhive/auction-backend/internal/clock"
	"github.com/auctionhive/auction-backend/internal/config"
	"github.com/auctionhive/auction-backend/internal/database"
	"github.com/auctionhive/auction-backend/internal/favorites"
	"github.com/auctionhive/auction-backend/internal/identity"
	"github.com/auctionhive/auction-backend/internal/items"
	"github.com/auctionhive/auction-backend/internal/notify"
	"github.com/auctionhive/auction-backend/internal/outbox"
	"github.com/auctionhive/auction-backend/internal/router"
	"github.com/auctionhive/auction-backend/internal/scheduler"
	"github.com/auctionhive/auction-backend/internal/settlement"
	"github.com/auctionhive/auction-backend/internal/store/gormstore"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}
	if err := database.SeedInitialData(db); err != nil {
		log.WithError(err).Fatal("Failed to seed initial data")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	stores := gormstore.New(db, cfg.Auction.StoreCallDeadline)
	clk := newClock(cfg.Auction.ClockSource, log)
	notifier := notify.NewLogNotifier(log)
	resolver := identity.NewJWTResolver(cfg.JWT.SecretKey, stores.Users())

	bus := broadcast.New(log)
	engine := bidding.NewEngine(stores, clk, notifier, bidding.Config{
		SelfBidAllowed:   cfg.Auction.SelfBidAllowed,
		LockIdleEviction: cfg.Auction.LockIdleEviction,
	}, log)
	settler := settlement.NewService(stores, clk, notifier, log)
	itemService := items.NewService(stores, clk, settler, log)
	favoriteService := favorites.NewService(stores, log)
	sched := scheduler.New(stores.Items(), settler, clk, cfg.Auction.SchedulerTickInterval, log)
	publisher := outbox.NewPublisher(stores, bus, cfg.Events.OutboxBatch, cfg.Events.OutboxPollInterval, log)

	// Background workers stop when the shutdown context is cancelled.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go bus.Run(workerCtx)
	go publisher.Run(workerCtx)
	go sched.Run(workerCtx)

	// Initialize router
	r := router.Initialize(cfg, router.Deps{
		Engine:     engine,
		Items:      itemService,
		Settlement: settler,
		Scheduler:  sched,
		Bus:        bus,
		Favorites:  favoriteService,
		Resolver:   resolver,
		Log:        log,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}
	stopWorkers()

	log.Info("Server exited")
}

// newClock maps the configured clock source onto a time source. The
// frozen source pins time at process start, for demo and load runs
// where auctions must not expire mid-session.
func newClock(source string, log *logrus.Logger) clock.Clock {
	if source == "frozen" {
		now := time.Now().UTC()
		log.WithField("frozen_at", now).Warn("Using frozen clock source")
		return clock.NewFake(now)
	}
	return clock.System()
}
