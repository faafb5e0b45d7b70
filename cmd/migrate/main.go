// Command migrate applies the versioned PostgreSQL schema and optionally resets
// it or loads the demo catalog.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ticket-selling/internal/config"
	"ticket-selling/internal/db"
	"ticket-selling/internal/db/migrations"
	"ticket-selling/internal/logger"
)

func main() {
	log := logger.NewLogger()
	defer log.Close()

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	dsn := flag.String("dsn", cfg.Database.PostgresDSN, "PostgreSQL DSN")
	reset := flag.Bool("reset", false, "roll every migration back before migrating")
	seed := flag.Bool("seed", false, "insert the demo catalog when no ticket exists")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(*dsn)))
	store := db.New(bun.NewDB(sqldb, pgdialect.New()))

	if err := store.Ping(ctx); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
	}

	// Closing the runner closes sqldb as well.
	runner, err := migrations.NewRunner(sqldb, log)
	if err != nil {
		log.Fatal("MIGRATE", err.Error())
	}
	defer runner.Close()

	if *reset {
		log.LogSchema("DROP", "Rolling back all migrations")
		if err := runner.Down(); err != nil {
			log.Fatal("MIGRATE", err.Error())
		}
	}

	if err := runner.Up(); err != nil {
		log.Fatal("MIGRATE", err.Error())
	}
	log.LogSchema("MIGRATE", "Schema is up to date")

	if *seed {
		inserted, err := store.Seed(ctx, time.Now().UTC())
		if err != nil {
			log.Fatal("DATABASE", err.Error())
		}
		if inserted {
			log.LogSchema("SEED", "Demo user and catalog inserted")
		} else {
			log.LogSchema("SEED", "Catalog already present, nothing inserted")
		}
	}
}
