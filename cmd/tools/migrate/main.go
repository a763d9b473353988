// Command migrate applies or rolls back the embedded schema migrations.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ecomitechltd/ZINEB/internal/db"
	"github.com/ecomitechltd/ZINEB/internal/obs"
)

func main() {
	steps := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	_ = godotenv.Load()
	logger := obs.NewLogger("console", "info")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}
	m, err := db.NewMigrator(dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("open migrator")
	}
	defer m.Close()

	if *steps > 0 {
		if err := m.Steps(-*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal().Err(err).Int("steps", *steps).Msg("roll back")
		}
	} else if err := db.Up(m); err != nil {
		logger.Fatal().Err(err).Msg("migrate up")
	}
	report(logger, m)
}

func report(logger zerolog.Logger, m *migrate.Migrate) {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info().Msg("database has no migrations applied")
	case err != nil:
		logger.Error().Err(err).Msg("read version")
	default:
		logger.Info().Str("version", fmt.Sprint(version)).Bool("dirty", dirty).Msg("schema version")
	}
}
