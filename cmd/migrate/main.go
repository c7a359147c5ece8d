package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"bookinventory/internal/config"
	"bookinventory/internal/platform/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func main() {
	config.LoadEnvFiles()

	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
		driver  = flag.String("driver", envOr("STORE_DRIVER", config.DriverPostgres), "Store driver: postgres, sqlite")
	)
	flag.Parse()

	tgt, err := resolveTarget(*driver)
	if err != nil {
		log.Fatal(err)
	}

	fsys, migrationsDir, err := migrationSource(tgt.dialect)
	if err != nil {
		log.Fatal(err)
	}

	if *command == "create" {
		if *name == "" {
			log.Fatal("Name is required for 'create' command")
		}
		if fsys != nil {
			log.Fatal("Set MIGRATIONS_DIR to the directory that should receive the new migration")
		}
		if err := goose.Create(nil, migrationsDir, *name, "sql"); err != nil {
			log.Fatalf("Failed to create migration: %v", err)
		}
		fmt.Printf("Migration created: %s\n", *name)
		return
	}

	db, closeDB := mustOpen(tgt)
	defer closeDB()

	goose.SetBaseFS(fsys)
	gooseDialect := "postgres"
	if tgt.dialect == database.DialectSQLite {
		gooseDialect = "sqlite3"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		log.Fatalf("Failed to set dialect: %v", err)
	}

	switch *command {
	case "up":
		if err := goose.Up(db, migrationsDir); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		fmt.Println("Migrations applied successfully")
	case "down":
		if err := goose.Down(db, migrationsDir); err != nil {
			log.Fatalf("Failed to rollback migrations: %v", err)
		}
		fmt.Println("Migrations rolled back successfully")
	case "status":
		if err := goose.Status(db, migrationsDir); err != nil {
			log.Fatalf("Failed to check migration status: %v", err)
		}
	default:
		log.Fatalf("Unknown command: %s. Use: up, down, status, create", *command)
	}
}

func mustOpen(tgt target) (*sql.DB, func()) {
	if tgt.dialect == database.DialectSQLite {
		db, err := database.OpenSQLite(tgt.dsn)
		if err != nil {
			log.Fatalf("Failed to open sqlite: %v", err)
		}
		return db, func() { _ = db.Close() }
	}

	pool, err := pgxpool.New(context.Background(), tgt.dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database (%s): %v", database.RedactDSN(tgt.dsn), err)
	}
	db := stdlib.OpenDBFromPool(pool)
	return db, func() {
		_ = db.Close()
		pool.Close()
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
