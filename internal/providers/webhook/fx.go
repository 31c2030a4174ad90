package webhook

import "go.uber.org/fx"

var Module = fx.Module("providers.webhook",
	fx.Provide(func() Provider { return NewHTTP() }),
)
