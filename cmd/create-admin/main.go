package main

import (
	"context"
	"flag"
	"os"
	"time"

	"jobboard/internal/config"
	"jobboard/internal/database/migration"
	dbpostgres "jobboard/internal/database/postgres"
	"jobboard/internal/database/seeder"
	"jobboard/internal/logging"
)

func main() {
	name := flag.String("name", "Administrator", "display name")
	email := flag.String("email", "", "admin e-mail (required)")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password, defaults to $ADMIN_PASSWORD")
	flag.Parse()

	logger := logging.New(os.Stderr, false)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, logger, seeder.AdminSeeder{DisplayName: *name, Email: *email, Password: *password}); err != nil {
		logger.Error(ctx, "create admin failed", "error", err)
		os.Exit(1)
	}
	logger.Info(ctx, "admin account ready", "email", *email)
}

func run(ctx context.Context, logger logging.Logger, admin seeder.AdminSeeder) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := dbpostgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	if err := (migration.Runner{Logger: logger}).Run(ctx, db.SQLDB()); err != nil {
		return err
	}
	return seeder.Runner{Seeders: []seeder.Seeder{admin}}.Run(ctx, db)
}
