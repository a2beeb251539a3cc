// Command migrate-passwords replaces legacy plaintext passwords in the users
// table with bcrypt hashes. Rows that already hold a hash are left alone, so
// the command can be run repeatedly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aryan0dhankhar/citas/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/citas/internal/repository"
	"github.com/aryan0dhankhar/citas/internal/service"
	"github.com/aryan0dhankhar/citas/pkg/config"
	"github.com/aryan0dhankhar/citas/pkg/database"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report rows that would be hashed without writing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewConnectionPool(ctx, database.FromEnv(cfg.Database), log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	users := repository.NewPostgresUserRepository(pool.GetDB(), log)
	creds, err := users.ListCredentials(ctx)
	if err != nil {
		log.Error("failed to list credentials", slog.String("error", err.Error()))
		os.Exit(1)
	}

	migrated, failed := 0, 0
	for _, u := range creds {
		if service.IsHashed(u.PasswordHash) {
			continue
		}
		if *dryRun {
			log.Info("would hash password", slog.Int64("user_id", u.ID))
			migrated++
			continue
		}
		hash, err := service.HashPassword(u.PasswordHash)
		if err == nil {
			err = users.UpdatePassword(ctx, u.ID, hash)
		}
		if err != nil {
			log.Error("failed to migrate password", slog.Int64("user_id", u.ID), slog.String("error", err.Error()))
			failed++
			continue
		}
		migrated++
	}

	log.Info("password migration finished",
		slog.Int("total", len(creds)),
		slog.Int("migrated", migrated),
		slog.Int("failed", failed),
		slog.Bool("dry_run", *dryRun),
	)
	if failed > 0 {
		os.Exit(1)
	}
}
