package audit

import (
	"github.com/sitepulse/sitepulse/internal/audit/repository"
	"github.com/sitepulse/sitepulse/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
