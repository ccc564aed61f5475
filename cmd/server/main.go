package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-service/config"
	"catalog-service/internal/api"
	"catalog-service/internal/broker"
	"catalog-service/internal/catalog"
	"catalog-service/internal/session"
	"catalog-service/internal/source"
	"catalog-service/internal/util"
	"catalog-service/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting catalog service")

	tp, err := util.InitTracer("catalog-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	src, closeSource, err := buildSource(cfg)
	if err != nil {
		log.Fatalf("Failed to build catalog source: %v", err)
	}
	defer closeSource()

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicActivity)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	publisher := broker.NewActivityPublisher(producer)

	catalogCfg, err := buildCatalogConfig(cfg)
	if err != nil {
		log.Fatalf("Invalid catalog defaults: %v", err)
	}
	sessions := session.NewManager(src, catalogCfg)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	activityConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicActivity, cfg.Kafka.ConsumerGroup)
	activityWorker := worker.NewActivityWorker(activityConsumer)
	go func() {
		if err := activityWorker.Start(workerCtx); err != nil {
			log.Printf("Activity worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(sessions, publisher)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	activityWorker.Stop()

	log.Println("Server exited")
}

// buildSource assembles the configured upstream source, wrapped in the
// Redis cache when one is reachable.
func buildSource(cfg *config.Config) (source.Source, func(), error) {
	var base source.Source
	closeFns := make([]func(), 0, 2)

	switch cfg.StoreAPI.Source {
	case "postgres":
		pg, err := source.NewPostgresSource(cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		closeFns = append(closeFns, func() { _ = pg.Close() })
		base = pg
		log.Println("Using Postgres catalog source")
	default:
		base = source.NewHTTPSource(cfg.StoreAPI.BaseURL, cfg.StoreAPI.Timeout)
		log.Printf("Using store API source: %s", cfg.StoreAPI.BaseURL)
	}

	cached, err := source.NewCachedSource(base, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CacheTTL)
	if err != nil {
		// Cache is an optimization; run uncached when Redis is down.
		log.Printf("Redis unavailable, running without catalog cache: %v", err)
		return base, combine(closeFns), nil
	}
	closeFns = append(closeFns, func() { _ = cached.Close() })
	log.Println("Catalog cache enabled")

	return cached, combine(closeFns), nil
}

func buildCatalogConfig(cfg *config.Config) (catalog.Config, error) {
	minPrice, err := decimal.NewFromString(cfg.Catalog.DefaultMinPrice)
	if err != nil {
		return catalog.Config{}, fmt.Errorf("invalid CATALOG_MIN_PRICE: %w", err)
	}
	maxPrice, err := decimal.NewFromString(cfg.Catalog.DefaultMaxPrice)
	if err != nil {
		return catalog.Config{}, fmt.Errorf("invalid CATALOG_MAX_PRICE: %w", err)
	}
	return catalog.Config{
		PageSize:        cfg.Catalog.PageSize,
		DefaultMinPrice: minPrice,
		DefaultMaxPrice: maxPrice,
	}, nil
}

func combine(fns []func()) func() {
	return func() {
		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
	}
}
