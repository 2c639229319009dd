package jobs

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("jobs",
	fx.Provide(NewRegistry),
	fx.Invoke(func(lc fx.Lifecycle, r *Registry) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				r.StopAll()
				return nil
			},
		})
	}),
)
