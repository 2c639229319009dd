package rating

import "go.uber.org/fx"

var Module = fx.Module("rating",
	fx.Provide(
		NewService,
		NewHandler,
		fx.Annotate(
			NewStatusPolicy,
			fx.As(new(TerminationPolicy)),
		),
	),
	fx.Invoke(RegisterRoutes),
)
