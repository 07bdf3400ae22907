package main

import (
	"context"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/rajesh196rsh/e-commerce/internal/analytics"
	analyticsdomain "github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	"github.com/rajesh196rsh/e-commerce/internal/cache"
	"github.com/rajesh196rsh/e-commerce/internal/catalog"
	"github.com/rajesh196rsh/e-commerce/internal/clock"
	"github.com/rajesh196rsh/e-commerce/internal/config"
	"github.com/rajesh196rsh/e-commerce/internal/events"
	"github.com/rajesh196rsh/e-commerce/internal/ingest"
	ingestdomain "github.com/rajesh196rsh/e-commerce/internal/ingest/domain"
	"github.com/rajesh196rsh/e-commerce/internal/migration"
	"github.com/rajesh196rsh/e-commerce/internal/observability"
	obsctx "github.com/rajesh196rsh/e-commerce/internal/observability/context"
	"github.com/rajesh196rsh/e-commerce/internal/observability/logger"
	"github.com/rajesh196rsh/e-commerce/internal/report"
	"github.com/rajesh196rsh/e-commerce/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deps is everything a subcommand may need from the container.
type deps struct {
	fx.In

	Config    config.Config
	Log       *zap.Logger
	DB        *gorm.DB
	Clock     clock.Clock
	Analytics analyticsdomain.Service
	Ingest    ingestdomain.Service
	Worker    *report.Worker
	Cache     cache.ReportCache
	Outbox    *events.Outbox
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func modules() fx.Option {
	return fx.Options(
		fx.WithLogger(logger.FxLogger),
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		cache.Module,
		events.Module,
		catalog.Module,
		analytics.Module,
		ingest.Module,
		report.Module,
		fx.Invoke(migration.EnsureSchema),
	)
}

// withApp starts the container, runs fn and stops the container. The context
// passed to fn carries a fresh run id, the command name and the invoking user.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, d deps) error) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := os.Setenv(config.EnvConfigFile, path); err != nil {
			return err
		}
	}

	var d deps
	app := fx.New(
		modules(),
		fx.Invoke(func(in deps) { d = in }),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(cmd.Context(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	ctx := obsctx.WithRunID(cmd.Context(), uuid.NewString())
	ctx = obsctx.WithCommand(ctx, cmd.CommandPath())
	ctx = obsctx.WithActor(ctx, os.Getenv("USER"))
	runErr := fn(ctx, d)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
