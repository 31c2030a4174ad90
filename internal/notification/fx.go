package notification

import (
	"github.com/sitepulse/sitepulse/internal/notification/domain"
	"github.com/sitepulse/sitepulse/internal/notification/repository"
	"github.com/sitepulse/sitepulse/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(s *service.Service) domain.Dispatcher { return s }),
	fx.Provide(func(s *service.Service) domain.Service { return s }),
)
