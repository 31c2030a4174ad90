package website

import (
	"github.com/sitepulse/sitepulse/internal/website/repository"
	"github.com/sitepulse/sitepulse/internal/website/service"
	"go.uber.org/fx"
)

var Module = fx.Module("website.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
