package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/shiftwatch/shiftwatch/domain/admin"
	"github.com/shiftwatch/shiftwatch/domain/employees"
	"github.com/shiftwatch/shiftwatch/domain/health"
	"github.com/shiftwatch/shiftwatch/domain/monitoring"
	"github.com/shiftwatch/shiftwatch/domain/notify"
	"github.com/shiftwatch/shiftwatch/domain/rating"
	"github.com/shiftwatch/shiftwatch/domain/scheduler"
	"github.com/shiftwatch/shiftwatch/domain/shifts"
	"github.com/shiftwatch/shiftwatch/domain/violations"
	"github.com/shiftwatch/shiftwatch/internal/config"
	"github.com/shiftwatch/shiftwatch/internal/database"
	"github.com/shiftwatch/shiftwatch/internal/jobs"
	"github.com/shiftwatch/shiftwatch/internal/migrate"
	"github.com/shiftwatch/shiftwatch/internal/server"
	"github.com/shiftwatch/shiftwatch/internal/version"
	"github.com/shiftwatch/shiftwatch/pkg/events"
	"github.com/shiftwatch/shiftwatch/pkg/logger"
)

func main() {
	// Missing .env is fine; real deployments configure via environment.
	_ = godotenv.Load()

	log := logger.NewLogger()
	log.Info("starting shiftwatch", slog.String("version", version.Version))

	app := fx.New(
		fx.Supply(log),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log.With(logger.Scope("fx"))}
		}),

		config.Module,
		database.Module,
		migrate.Module,
		server.Module,
		jobs.Module,

		fx.Provide(events.NewBus),

		employees.Module,
		shifts.Module,
		violations.Module,
		rating.Module,
		monitoring.Module,
		notify.Module,
		scheduler.Module,
		admin.Module,
		health.Module,
	)

	app.Run()
}
