package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ishan739/sanskriti-bazaar/internal/cache"
	"github.com/ishan739/sanskriti-bazaar/internal/domain"
	"github.com/ishan739/sanskriti-bazaar/internal/events"
	h "github.com/ishan739/sanskriti-bazaar/internal/http"
	"github.com/ishan739/sanskriti-bazaar/internal/inventory"
	"github.com/ishan739/sanskriti-bazaar/internal/orders"
	"github.com/ishan739/sanskriti-bazaar/internal/repository"
	"github.com/ishan739/sanskriti-bazaar/internal/service"
)

type Config struct {
	HTTPPort         string
	Mongo            repository.MongoConfig
	RedisAddr        string
	RedisPassword    string
	Postgres         orders.Credentials
	InventoryBackend string
	KafkaBrokers     []string
	AuthTokens       map[string]string
	RequestTimeout   time.Duration
	ShutdownTimeout  time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		Mongo: repository.MongoConfig{
			URI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:    getEnv("MONGO_DB_NAME", "bazaardb"),
			MaxPoolSize: uint64(getEnvInt("MONGO_MAX_POOL_SIZE", 0)),
			MinPoolSize: uint64(getEnvInt("MONGO_MIN_POOL_SIZE", 0)),
		},
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		Postgres: orders.Credentials{
			Host:              getEnv("POSTGRES_HOST", "localhost"),
			Port:              getEnvInt("POSTGRES_PORT", 5432),
			User:              getEnv("POSTGRES_USER", "bazaar"),
			Password:          getEnv("POSTGRES_PASSWORD", "bazaar"),
			DBName:            getEnv("POSTGRES_DB", "bazaardb"),
			MigrationsDirPath: getEnv("MIGRATIONS_DIR", "migrations"),
		},
		InventoryBackend: getEnv("INVENTORY_BACKEND", "memory"),
		KafkaBrokers:     splitNonEmpty(getEnv("KAFKA_BROKERS", "")),
		AuthTokens:       parseTokens(getEnv("AUTH_TOKENS", "dev-token:user-1")),
		RequestTimeout:   30 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Cart storage
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	cartRepo := repository.NewMongoRepository(mongoDB)
	if err := cartRepo.CreateIndexes(ctx); err != nil {
		log.Fatalf("Failed to create cart indexes: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", cfg.Mongo.URI)

	// Order storage
	orderRepo, err := orders.NewPostgresRepository(&cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer orderRepo.Close()
	if err := orderRepo.RunMigrations(&cfg.Postgres); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Printf("Connected to Postgres at %s:%d", cfg.Postgres.Host, cfg.Postgres.Port)

	// Cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")
	cartCache := cache.NewBreakerCache(cache.NewRedisCache(redisClient))

	// Inventory
	var inv inventory.Store
	switch cfg.InventoryBackend {
	case "redis":
		inv = inventory.NewRedisStore(redisClient)
	default:
		memStore := inventory.NewMemoryStore()
		seedInventory(ctx, memStore)
		inv = memStore
	}
	log.Printf("Inventory backend: %s", cfg.InventoryBackend)

	// Order events
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers...)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Printf("Publishing order events to %v", cfg.KafkaBrokers)
	}

	locks := service.NewUserLocks()
	cartService := service.NewCartService(cartRepo, inv, cartCache, locks)
	orderService := service.NewOrderService(cartRepo, orderRepo, inv, cartCache, publisher, locks)

	router := h.NewRouter(
		h.NewCartHandler(cartService, cfg.RequestTimeout),
		h.NewOrderHandler(orderService, cfg.RequestTimeout),
		h.NewItemHandler(inv, cfg.RequestTimeout),
		h.StaticResolver(cfg.AuthTokens),
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "sanskriti-bazaar"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Bazaar service starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		log.Printf("mongo disconnect error: %v", err)
	}

	log.Println("server exited")
}

// seedInventory loads a starter set of bazaar items so a fresh memory
// backend is usable out of the box.
func seedInventory(ctx context.Context, store inventory.Store) {
	items := []domain.Item{
		{ID: "madhubani-painting", Name: "Madhubani Painting", Category: "art", Origin: "Bihar", Price: decimal.NewFromInt(1200), Stock: 10},
		{ID: "pattachitra-scroll", Name: "Pattachitra Scroll", Category: "art", Origin: "Odisha", Price: decimal.NewFromInt(950), Stock: 8},
		{ID: "banarasi-saree", Name: "Banarasi Silk Saree", Category: "textile", Origin: "Varanasi", Price: decimal.NewFromInt(4500), Stock: 5},
		{ID: "channapatna-toys", Name: "Channapatna Wooden Toys", Category: "craft", Origin: "Karnataka", Price: decimal.NewFromInt(350), Stock: 25},
		{ID: "dhokra-figurine", Name: "Dhokra Brass Figurine", Category: "craft", Origin: "Chhattisgarh", Price: decimal.NewFromInt(800), Stock: 12},
	}
	for _, item := range items {
		if err := store.PutItem(ctx, item); err != nil {
			log.Fatalf("Failed to seed item %s: %v", item.ID, err)
		}
	}
	log.Printf("Seeded %d bazaar items", len(items))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitNonEmpty(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// parseTokens reads "token:user,token2:user2" pairs.
func parseTokens(value string) map[string]string {
	tokens := make(map[string]string)
	for _, pair := range splitNonEmpty(value) {
		token, userID, ok := strings.Cut(pair, ":")
		if ok && token != "" && userID != "" {
			tokens[token] = userID
		}
	}
	return tokens
}
