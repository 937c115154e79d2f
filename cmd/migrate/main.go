package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"gstreco/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	m, err := migrate.New(migrationsSource(), cfg.DB.DSN())
	if err != nil {
		logrus.Fatalf("failed to create migrate instance: %v", err)
	}
	defer m.Close()
	m.Log = migrateLogger{}

	if len(os.Args) < 2 {
		fmt.Println("Usage: migrate [up|down|steps N|version]")
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			logrus.Fatalf("migration up failed: %v", err)
		}
		logrus.Info("migrations applied successfully")

	case "down":
		if err := m.Down(); err != nil && err != migrate.ErrNoChange {
			logrus.Fatalf("migration down failed: %v", err)
		}
		logrus.Info("migrations reverted successfully")

	case "steps":
		if len(os.Args) < 3 {
			logrus.Fatal("steps requires a number argument")
		}
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			logrus.Fatalf("invalid steps argument: %v", err)
		}
		if err := m.Steps(n); err != nil && err != migrate.ErrNoChange {
			logrus.Fatalf("migration steps failed: %v", err)
		}
		logrus.Infof("applied %d migration steps", n)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			logrus.Fatalf("failed to get version: %v", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)

	default:
		fmt.Printf("unknown command: %s\n", cmd)
		fmt.Println("Usage: migrate [up|down|steps N|version]")
		os.Exit(1)
	}
}

func migrationsSource() string {
	if dir := os.Getenv("GSTRECO_MIGRATIONS_DIR"); dir != "" {
		return "file://" + dir
	}
	return "file://db/migrations"
}

// migrateLogger routes golang-migrate output through logrus.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	logrus.Infof(format, v...)
}

func (migrateLogger) Verbose() bool {
	return logrus.IsLevelEnabled(logrus.DebugLevel)
}
