package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trogers1052/bond-curve-service/internal/api"
	"github.com/trogers1052/bond-curve-service/internal/builder"
	"github.com/trogers1052/bond-curve-service/internal/cache"
	"github.com/trogers1052/bond-curve-service/internal/config"
	"github.com/trogers1052/bond-curve-service/internal/database"
	"github.com/trogers1052/bond-curve-service/internal/fred"
	"github.com/trogers1052/bond-curve-service/internal/kafka"
	"github.com/trogers1052/bond-curve-service/internal/models"
	"github.com/trogers1052/bond-curve-service/internal/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate("db/migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	curveCache := cache.New(cfg.Redis.Addr, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
	defer curveCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ProducerTopic)
	defer producer.Close()

	treasury := builder.New(db, builder.Config{
		CurveType:           models.DataTypeTreasury,
		Series:              config.TreasurySeries(),
		Maturities:          config.TreasuryMaturities(),
		InterpolationMethod: cfg.Curves.InterpolationMethod,
		MinDataPoints:       cfg.Curves.MinDataPoints,
		Events:              producer,
	})
	corporate := builder.NewCorporate(db, builder.Config{
		Series:              config.CorporateSeries(),
		Maturities:          config.CorporateCurveMaturities(),
		InterpolationMethod: cfg.Curves.InterpolationMethod,
		MinDataPoints:       cfg.Curves.MinDataPoints,
		Events:              producer,
	})

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.ConsumerTopic, cfg.Kafka.GroupID, map[string]kafka.ObservationSink{
		models.DataTypeTreasury:  treasury,
		models.DataTypeCorporate: corporate,
	})
	defer consumer.Close()
	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Kafka consumer stopped: %v", err)
		}
	}()

	fredClient := fred.NewClient(cfg.FRED.APIKey, cfg.FRED.BaseURL)
	sched := scheduler.New(fredClient, treasury, corporate, db, producer, curveCache, cfg.Curves)
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	if raw := cfg.Curves.InitialLoadStartDate; raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			log.Fatalf("Invalid INITIAL_LOAD_START_DATE %q: %v", raw, err)
		}
		go func() {
			log.Printf("Starting initial history load from %s", raw)
			if err := sched.RunInitialLoad(start); err != nil {
				log.Printf("Initial load failed: %v", err)
			}
		}()
	}

	handler := api.NewHandler(treasury, corporate, curveCache, sched, cfg.Curves.DefaultMaxPoints)
	server := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: api.SetupRoutes(handler),
	}

	go func() {
		log.Printf("Bond curve service listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
		os.Exit(1)
	}
}
