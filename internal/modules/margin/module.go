package margin

import (
	"go.uber.org/fx"

	"risk_core/internal/modules/config"
	gatewaysvc "risk_core/internal/modules/gateway/service"
	"risk_core/internal/modules/margin/service"
)

func Module() fx.Option {
	return fx.Module("margin",
		fx.Provide(func(gw *gatewaysvc.Client, cfg *config.Config) *service.Calculator {
			return service.NewCalculator(gw, cfg.SettleAsset)
		}),
	)
}
