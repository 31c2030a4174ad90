package alert

import (
	"github.com/sitepulse/sitepulse/internal/alert/repository"
	"github.com/sitepulse/sitepulse/internal/alert/service"
	"go.uber.org/fx"
)

var Module = fx.Module("alert.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
