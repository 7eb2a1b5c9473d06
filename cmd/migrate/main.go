// Команда migrate управляет схемой БД вне сервера:
//
//	migrate up            применить все новые миграции
//	migrate down [N]      откатить N миграций (по умолчанию одну)
//	migrate force V       пометить версию V чистой после сбоя
//	migrate version       показать текущую версию
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/lib/pq"

	"github.com/yourusername/lms-api/internal/config"
	"github.com/yourusername/lms-api/pkg/database"
)

func main() {
	source := flag.String("source", database.DefaultMigrationsSource, "migrations source URL")
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [flags] up|down [N]|force V|version\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	m, err := database.NewMigrator(db, *source)
	if err != nil {
		log.Fatal(err)
	}

	if err := run(m, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(m *migrate.Migrate, args []string) error {
	switch args[0] {
	case "up":
		return report(m, m.Up())

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid number of steps %q", args[1])
			}
			steps = n
		}
		return report(m, m.Steps(-steps))

	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force requires a version")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		fmt.Printf("Forcing migration version to %d...\n", version)
		return report(m, m.Force(version))

	case "version":
		return report(m, nil)

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func report(m *migrate.Migrate, err error) error {
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No change.")
	}

	version, dirty, verr := m.Version()
	switch {
	case errors.Is(verr, migrate.ErrNilVersion):
		fmt.Println("Database has no migrations applied.")
	case verr != nil:
		return verr
	default:
		fmt.Printf("Version %d (dirty=%t)\n", version, dirty)
	}
	return nil
}
