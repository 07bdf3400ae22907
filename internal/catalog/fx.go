package catalog

import (
	analyticsdomain "github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	"github.com/rajesh196rsh/e-commerce/internal/catalog/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog",
	fx.Provide(repository.NewStore),
	fx.Provide(func(s *repository.Store) analyticsdomain.Source { return s }),
)
