package monitoring

import (
	"github.com/sitepulse/sitepulse/internal/monitoring/repository"
	"github.com/sitepulse/sitepulse/internal/monitoring/service"
	"go.uber.org/fx"
)

var Module = fx.Module("monitoring.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewConfigService),
	fx.Provide(service.NewEvaluator),
)
