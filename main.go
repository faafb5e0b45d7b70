package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ticket-selling/internal/api"
	"ticket-selling/internal/clock"
	"ticket-selling/internal/config"
	"ticket-selling/internal/db"
	"ticket-selling/internal/inventory"
	"ticket-selling/internal/kafka"
	"ticket-selling/internal/lifecycle"
	"ticket-selling/internal/logger"
	"ticket-selling/internal/payment"
	"ticket-selling/internal/qr"
	"ticket-selling/internal/rabbitmq"
	"ticket-selling/internal/reservation"
	"ticket-selling/internal/seatlock"
	"ticket-selling/internal/sse"
)

func openDatabase(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	if cfg.Driver == "sqlite" {
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.SQLiteDSN)
		if err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Failed to open SQLite: %v", err))
		}
		// SQLite serialises writers; one connection keeps transactions from tripping over each other.
		sqldb.SetMaxOpenConns(1)
		log.Info("DATABASE", fmt.Sprintf("Using SQLite at %s", cfg.SQLiteDSN))
		return bun.NewDB(sqldb, sqlitedialect.New())
	}

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("REDIS", fmt.Sprintf("Redis connection successful to %s (DB: %d)", cfg.Addr, client.Options().DB))
	return client
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting ticket selling service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	store := db.New(openDatabase(cfg.Database, log))
	defer store.Close()

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
		}
		log.LogSchema("MIGRATE", "Schema is up to date")
	}
	if cfg.Database.Seed {
		inserted, err := store.Seed(ctx, time.Now().UTC())
		if err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Seeding failed: %v", err))
		}
		if inserted {
			log.LogSchema("SEED", "Demo user and catalog inserted")
		}
	}

	clk := clock.NewSystem()
	ledger := inventory.NewLedger(store, log)
	reservations := reservation.NewService(store, ledger, clk, log, reservation.WithHoldWindow(cfg.Reservation.HoldWindow))
	payments := payment.NewService(store, clk, log)

	var opts []lifecycle.Option
	if !cfg.Reservation.Transactional {
		log.Warn("CONFIG", "RESERVATION_TRANSACTIONAL=false: lifecycle steps run without a transaction and are not compensated on failure")
		opts = append(opts, lifecycle.WithoutTransactions())
	}

	if cfg.Redis.Enabled {
		redisClient := connectRedis(ctx, cfg.Redis, log)
		defer redisClient.Close()
		opts = append(opts, lifecycle.WithSeatLocker(seatlock.NewLocker(redisClient, cfg.Reservation.HoldWindow, log)))
	}

	if cfg.Kafka.Enabled {
		log.Info("KAFKA", fmt.Sprintf("Using Kafka brokers %v", cfg.Kafka.Brokers))
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, cfg.Kafka.AllTopics(), log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer producer.Close()
		opts = append(opts, lifecycle.WithPublisher(kafka.NewLifecyclePublisher(producer, cfg.Kafka.Topics)))
		log.Info("KAFKA", "Kafka producer initialized successfully")
	}

	if cfg.RabbitMQ.Enabled {
		publisher, err := rabbitmq.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.Fatal("RABBITMQ", fmt.Sprintf("RabbitMQ connection error: %v", err))
		}
		defer publisher.Close()
		opts = append(opts, lifecycle.WithPublisher(publisher))
		log.Info("RABBITMQ", fmt.Sprintf("Publishing lifecycle events to exchange %s", cfg.RabbitMQ.Exchange))
	}

	events := sse.NewEmitter()
	opts = append(opts, lifecycle.WithPublisher(events))

	service := lifecycle.NewService(store, reservations, payments, ledger, clk, log, opts...)

	handler := &api.Handler{
		Service: service,
		QR:      qr.NewGenerator(),
		Logger:  log,
		Events:  events,
		APIPath: cfg.App.APIPath,
		AppURL:  cfg.App.AppURL,
	}
	router := api.NewRouter(handler, api.RouterConfig{RPS: cfg.RateLimit.RPS, Burst: cfg.RateLimit.Burst})
	log.Info("ROUTER", fmt.Sprintf("Reservation and payment routes registered under /%s", cfg.App.APIPath))

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Ticket selling service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "Ticket selling service shutdown complete")
	}
}
