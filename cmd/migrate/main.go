package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

var errUnknownCommand = errors.New("unknown command, use: up, down, status, create")

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	loadEnvFiles()
	dir := migrationsDir()

	if *command == "create" {
		if err := runCommand(nil, dir, *command, *name); err != nil {
			logger.Fatal("migration failed", zap.String("command", *command), zap.Error(err))
		}
		logger.Info("migration created", zap.String("name", *name), zap.String("dir", dir))
		return
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseDSN())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := runCommand(db, dir, *command, *name); err != nil {
		logger.Fatal("migration failed", zap.String("command", *command), zap.Error(err))
	}
	logger.Info("migration command done", zap.String("command", *command), zap.String("dir", dir))
}

func runCommand(db *sql.DB, dir, command, name string) error {
	goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		return goose.Up(db, dir)
	case "down":
		return goose.Down(db, dir)
	case "status":
		return goose.Status(db, dir)
	case "create":
		if name == "" {
			return errors.New("name is required for 'create' command")
		}
		return goose.Create(nil, dir, name, "sql")
	default:
		return fmt.Errorf("%w: %q", errUnknownCommand, command)
	}
}
