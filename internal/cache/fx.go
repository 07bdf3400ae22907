package cache

import (
	"context"

	"github.com/rajesh196rsh/e-commerce/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cache",
	fx.Provide(newReportCache),
)

func newReportCache(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (ReportCache, error) {
	c, err := NewReportCache(cfg)
	if err != nil {
		return nil, err
	}
	log.Named("cache").Info("report cache ready",
		zap.String("backend", cfg.Cache.Backend),
		zap.Duration("ttl", cfg.Cache.TTL),
	)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return c.Close()
		},
	})
	return c, nil
}
