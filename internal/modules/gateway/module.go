package gateway

import (
	"context"

	"risk_core/internal/modules/config"
	"risk_core/internal/modules/gateway/service"
	healthsvc "risk_core/internal/modules/health/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("gateway",
		fx.Provide(
			func(cfg *config.Config, state *healthsvc.State) *service.Client {
				return service.NewClient(cfg, state)
			},
		),
		fx.Invoke(func(
			lc fx.Lifecycle,
			cfg *config.Config,
			c *service.Client,
			ctx context.Context,
		) {
			if len(cfg.Watch) == 0 {
				return
			}
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go c.StreamTickers(ctx, cfg.Watch)
					return nil
				},
			})
		}),
	)
}
