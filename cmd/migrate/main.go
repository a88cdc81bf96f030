package main

import (
	"context"
	"embed"
	"sort"

	"go.uber.org/zap"

	"github.com/radieske/bet-exchange-core/internal/shared/config"
	"github.com/radieske/bet-exchange-core/internal/shared/db"
	"github.com/radieske/bet-exchange-core/internal/shared/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Aplica as migrações embutidas em ordem lexicográfica, uma transação por arquivo,
// registrando em schema_migrations pra tornar a re-execução idempotente
func main() {
	cfg := config.Load()
	log, _ := logger.New("migrate", cfg.Env)
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	ctx := context.Background()

	if _, err := pg.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		log.Fatal("schema_migrations", zap.Error(err))
	}

	files, err := migrations.ReadDir("migrations")
	if err != nil {
		log.Fatal("read migrations", zap.Error(err))
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	for _, f := range files {
		name := f.Name()

		var applied bool
		if err := pg.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name=$1)`, name).Scan(&applied); err != nil {
			log.Fatal("check migration", zap.String("name", name), zap.Error(err))
		}
		if applied {
			log.Info("skip", zap.String("name", name))
			continue
		}

		sqlBytes, err := migrations.ReadFile("migrations/" + name)
		if err != nil {
			log.Fatal("read migration", zap.String("name", name), zap.Error(err))
		}

		tx, err := pg.BeginTx(ctx, nil)
		if err != nil {
			log.Fatal("begin", zap.Error(err))
		}
		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			log.Fatal("apply", zap.String("name", name), zap.Error(err))
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(name) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback()
			log.Fatal("record", zap.String("name", name), zap.Error(err))
		}
		if err := tx.Commit(); err != nil {
			log.Fatal("commit", zap.String("name", name), zap.Error(err))
		}

		log.Info("applied", zap.String("name", name))
	}
}
