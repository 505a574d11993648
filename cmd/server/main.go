package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"printstock/internal/export"
	"printstock/internal/router"
	"printstock/pkg/database"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Println("database ready")

	redisClient := newRedisClient()
	if redisClient == nil {
		log.Println("redis unavailable, rate limiting disabled")
	}

	store, err := export.NewObjectStoreFromEnv(context.Background())
	if err != nil {
		log.Fatalf("failed to configure export storage: %v", err)
	}
	if store == nil {
		log.Println("S3_BUCKET not set, inventory export disabled")
	}

	rateLimit, _ := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "120"))

	engine := router.New(router.Config{
		DB:          db,
		Redis:       redisClient,
		ObjectStore: store,
		JWTSecret:   jwtSecret,
		RateLimit:   rateLimit,
	})

	server := &http.Server{
		Addr:    ":" + getEnv("PORT", "8080"),
		Handler: engine,
	}

	go func() {
		log.Printf("HTTP server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server shutdown: %v", err)
	}
	log.Println("server stopped")
}

// newRedisClient connects to redis from REDIS_ADDR; returns nil when
// redis is unreachable so the service degrades to unlimited requests.
func newRedisClient() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
