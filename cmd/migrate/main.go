package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/saviobatista/launch-dashboard/internal/db/migrations"
)

func main() {
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Printf("Migration failed: %v", err)
		os.Exit(1)
	}
}

// run parses flags, connects and applies or rolls back migrations
func run(args []string, output io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(output)
	dbURL := fs.String("db", os.Getenv("DB_CONN_STR"), "Database connection string (defaults to DB_CONN_STR)")
	rollback := fs.Bool("rollback", false, "Rollback the last migration")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbURL == "" {
		return errors.New("no database connection string: set -db or DB_CONN_STR")
	}

	db, err := sql.Open("postgres", *dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return migrate(db, *rollback)
}

func migrate(db *sql.DB, rollback bool) error {
	migrator := migrations.New(db)
	if rollback {
		if err := migrator.Rollback(migrations.All()); err != nil {
			return fmt.Errorf("failed to rollback migration: %w", err)
		}
		return nil
	}
	if err := migrator.Migrate(migrations.All()); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
