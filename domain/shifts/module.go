package shifts

import "go.uber.org/fx"

var Module = fx.Module("shifts",
	fx.Provide(
		NewRepository,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)
