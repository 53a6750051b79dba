package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"cashtrackr/internal/config"
	"cashtrackr/internal/database"
	"cashtrackr/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const usage = "usage: migrate <up|down [N]|version|force V>"

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbConfig := database.NewConfig(cfg)
	if dbConfig.Driver != database.DriverPostgres {
		return fmt.Errorf("DB_DRIVER=%s: SQLite schemas are created by the API on startup", dbConfig.Driver)
	}

	m, err := migrate.New(dbConfig.SourceURL(), dbConfig.MigrateURL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Get().Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			logger.Get().Warnf("migrate database close error: %v", dbErr)
		}
	}()

	return execute(m, args[0], args[1:])
}

func execute(m *migrate.Migrate, command string, rest []string) error {
	log := logger.Get()

	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration up failed: %w", err)
		}
		log.Info("Migrations applied successfully")

	case "down":
		steps, err := intArg(rest, 1)
		if err != nil {
			return err
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration down failed: %w", err)
		}
		log.Infof("Rolled back %d migration(s)", steps)

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info("No migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		log.Infow("Schema version", "version", version, "dirty", dirty)

	case "force":
		if len(rest) == 0 {
			return errors.New(usage)
		}
		version, err := intArg(rest, 0)
		if err != nil {
			return err
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version %d failed: %w", version, err)
		}
		log.Infof("Forced schema version to %d", version)

	default:
		return fmt.Errorf("unknown command %q; %s", command, usage)
	}

	return nil
}

func intArg(rest []string, fallback int) (int, error) {
	if len(rest) == 0 {
		return fallback, nil
	}
	n, err := strconv.Atoi(rest[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", rest[0], err)
	}
	return n, nil
}
