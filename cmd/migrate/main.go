package main

import (
	"flag"
	"log"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	"github.com/johnquangdev/agent-trainer/internal/infrastructure/database"
	"github.com/johnquangdev/agent-trainer/pkg/config"
)

func main() {
	down := flag.Bool("down", false, "roll back migrations instead of applying them")
	steps := flag.Int("steps", 0, "maximum number of migrations to run (0 = all; -down defaults to 1)")
	dir := flag.String("dir", database.MigrationsDir, "directory holding the migration files")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadUnvalidated()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Initialize database using GORM
	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	direction := migrate.Up
	max := *steps
	if *down {
		direction = migrate.Down
		if max == 0 {
			max = 1
		}
	}

	n, err := database.Migrate(db, *dir, direction, max)
	if err != nil {
		logger.Fatal("migration failed", zap.Int("applied", n), zap.Error(err))
	}

	logger.Info("migrations complete",
		zap.Bool("down", *down),
		zap.Int("applied", n),
		zap.String("dir", *dir),
	)
}
