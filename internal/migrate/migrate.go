package migrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"go.uber.org/fx"

	"github.com/shiftwatch/shiftwatch/internal/config"
	"github.com/shiftwatch/shiftwatch/migrations"
	"github.com/shiftwatch/shiftwatch/pkg/logger"
)

var Module = fx.Module("migrate",
	fx.Invoke(RunMigrations),
)

// RunMigrations applies embedded migrations on startup when enabled
func RunMigrations(lc fx.Lifecycle, db *bun.DB, cfg *config.Config, log *slog.Logger) {
	if !cfg.MigrateOnStart {
		return
	}

	log = log.With(logger.Scope("migrate"))

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return Up(ctx, db, log)
		},
	})
}

// Up applies all pending migrations
func Up(ctx context.Context, db *bun.DB, log *slog.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(&gooseLogger{log: log})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db.DB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db.DB)
	if err != nil {
		return fmt.Errorf("get migration version: %w", err)
	}

	log.Info("migrations applied", slog.Int64("version", version))
	return nil
}

// gooseLogger adapts slog to the goose.Logger interface
type gooseLogger struct {
	log *slog.Logger
}

func (l *gooseLogger) Printf(format string, v ...any) {
	l.log.Info(fmt.Sprintf(format, v...))
}

func (l *gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(fmt.Sprintf(format, v...))
}
