package violations

import "go.uber.org/fx"

var Module = fx.Module("violations",
	fx.Provide(
		NewRepository,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)
