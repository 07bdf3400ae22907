package ingest

import (
	"github.com/rajesh196rsh/e-commerce/internal/ingest/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ingest",
	fx.Provide(service.NewService),
)
