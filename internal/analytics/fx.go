package analytics

import (
	"github.com/rajesh196rsh/e-commerce/internal/analytics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("analytics",
	fx.Provide(service.NewService),
)
