package employees

import "go.uber.org/fx"

var Module = fx.Module("employees",
	fx.Provide(NewRepository),
)
