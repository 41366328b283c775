package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/OsvaldoArellano/kasports/internal/cache"
	"github.com/OsvaldoArellano/kasports/internal/cart"
	"github.com/OsvaldoArellano/kasports/internal/checkout"
	"github.com/OsvaldoArellano/kasports/internal/delivery"
	h "github.com/OsvaldoArellano/kasports/internal/http"
	"github.com/OsvaldoArellano/kasports/internal/orders"
	"github.com/OsvaldoArellano/kasports/internal/publisher"
	"github.com/OsvaldoArellano/kasports/internal/repository"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("kasports server starting...")
	var wg sync.WaitGroup

	// Configuration
	httpPort := getEnv("HTTP_PORT", "8080")
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	kafkaBrokers := getEnv("KAFKA_BROKERS", "localhost:9092")

	// Database setup
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "kasports")
	migrationsPath := getEnv("MIGRATIONS_PATH", "./internal/repository/migrations")

	port, err := strconv.Atoi(dbPort)
	if err != nil {
		log.Fatalf("Invalid DB_PORT: %v", err)
	}

	creds := &repository.Credentials{
		Host:              dbHost,
		Port:              port,
		User:              dbUser,
		Password:          dbPass,
		DBName:            dbName,
		MigrationsDirPath: migrationsPath,
	}

	repo, err := repository.NewRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Cart cache: Redis behind a circuit breaker so a dead cache degrades to
	// the database instead of stalling requests.
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer redisClient.Close()
	cartCache := cache.NewBreakerCache(cache.NewRedisCache(redisClient))

	// Core services
	cartService := cart.NewService(repo, repo, cartCache)
	checkoutService := checkout.NewService(repo, repo, repo, cartCache)
	deliveryService := delivery.NewService(repo, repo, repo, repo)
	orderService := orders.NewService(repo, repo)

	// Outbox poller publishes committed order/delivery events to Kafka.
	poller := publisher.NewOutboxPoller(repo, strings.Split(kafkaBrokers, ",")...)
	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Run(pollerCtx)
	}()

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(h.IdentityMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cartHandler := h.NewCartHandler(cartService)
	checkoutHandler := h.NewCheckoutHandler(checkoutService)
	ordersHandler := h.NewOrdersHandler(orderService, deliveryService)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", cartHandler.GetCart)
		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{line_id}", cartHandler.UpdateQuantity)
		r.Delete("/items/{line_id}", cartHandler.RemoveItem)
	})

	r.Post("/checkout", checkoutHandler.Checkout)

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", ordersHandler.ListOrders)
		r.Get("/{order_id}", ordersHandler.GetOrder)
		r.Post("/{order_id}/confirm-receipt", ordersHandler.ConfirmReceipt)
		r.Post("/{order_id}/report-not-received", ordersHandler.ReportNotReceived)
		r.Post("/{order_id}/evidence", ordersHandler.AttachEvidence)
		r.Post("/{order_id}/cancel", ordersHandler.CancelOrder)
	})

	r.Route("/admin/orders", func(r chi.Router) {
		r.Use(h.RequireAdmin)
		r.Get("/", ordersHandler.SearchOrders)
		r.Post("/{order_id}/ship", ordersHandler.MarkShipped)
	})

	server := &http.Server{
		Addr:    ":" + httpPort,
		Handler: r,
	}

	go func() {
		log.Printf("kasports server listening on :%s", httpPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down kasports server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	pollerCancel()
	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		log.Println("Poller stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("Poller didn't stop in time")
	}

	log.Println("kasports server stopped")
}
