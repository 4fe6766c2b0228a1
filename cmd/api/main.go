package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saboru/saboru-backend/internal/config"
	"github.com/saboru/saboru-backend/internal/database"
	"github.com/saboru/saboru-backend/internal/events"
	"github.com/saboru/saboru-backend/internal/httpx"
	kafkax "github.com/saboru/saboru-backend/internal/kafka"
	"github.com/saboru/saboru-backend/internal/redisx"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.Redis.Addr)
	defer rdb.Close()

	orderProducer := kafkax.NewProducer(cfg.Kafka.Brokers, events.TopicOrderCreated, 1024)
	orderProducer.Start(ctx)
	routeProducer := kafkax.NewProducer(cfg.Kafka.Brokers, events.TopicRouteAssigned, 1024)
	routeProducer.Start(ctx)

	router := httpx.NewRouter()
	(&httpx.OrdersHandler{DB: db, Redis: rdb, OrderProducer: orderProducer, Service: cfg.Service}).Register(router)
	(&httpx.CatalogHandler{DB: db}).Register(router)
	(&httpx.DeliveryHandler{DB: db, RouteProducer: routeProducer, Service: cfg.Service}).Register(router)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpx.WithCORS(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	orderProducer.Close()
	routeProducer.Close()
	orderProducer.WaitClosed()
	routeProducer.WaitClosed()
}
