package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/Domenick1991/domora/config"
	"github.com/Domenick1991/domora/internal/repository"
)

var logger = loggo.GetLogger("domora.migrate")

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Criticalf("load config: %v", err)
		os.Exit(1)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		logger.Criticalf("migrations only apply to the postgres driver, got %q", cfg.Database.Driver)
		os.Exit(1)
	}

	m, err := repository.NewMigrator(cfg.Database.MigrationURL())
	if err != nil {
		logger.Criticalf("%v", err)
		os.Exit(1)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			logger.Warningf("close migrator: %v, %v", sourceErr, dbErr)
		}
	}()

	if err := runCommand(m, os.Args[1], os.Args[2:]); err != nil {
		logger.Criticalf("%v", err)
		os.Exit(1)
	}
}

func runCommand(m *migrate.Migrate, command string, args []string) error {
	switch command {
	case "up":
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Infof("no change: schema is up to date")
			return nil
		}
		if err != nil {
			return errors.Annotate(err, "apply migrations")
		}
		logger.Infof("migrations applied")
	case "down":
		if err := m.Steps(-1); err != nil {
			return errors.Annotate(err, "roll back last migration")
		}
		logger.Infof("rolled back last migration")
	case "goto":
		if len(args) < 1 {
			return errors.NotValidf("missing version")
		}
		version, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return errors.NotValidf("version %q", args[0])
		}
		err = m.Migrate(uint(version))
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Infof("no change: schema already at version %d", version)
			return nil
		}
		if err != nil {
			return errors.Annotatef(err, "migrate to version %d", version)
		}
		logger.Infof("migrated to version %d", version)
	case "status", "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Infof("no migrations applied yet")
			return nil
		}
		if err != nil {
			return errors.Annotate(err, "read schema version")
		}
		suffix := ""
		if dirty {
			suffix = " (dirty)"
		}
		logger.Infof("schema version %d%s", version, suffix)
	default:
		printUsage()
		return errors.NotValidf("command %q", command)
	}
	return nil
}

func printUsage() {
	fmt.Println("usage: migrate <command>")
	fmt.Println("commands:")
	fmt.Println("  up       apply all pending migrations")
	fmt.Println("  down     roll back the last migration")
	fmt.Println("  goto N   migrate to version N")
	fmt.Println("  status   print the current schema version")
}
