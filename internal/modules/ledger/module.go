package ledger

import (
	"go.uber.org/fx"

	"risk_core/internal/modules/config"
	gatewaysvc "risk_core/internal/modules/gateway/service"
	"risk_core/internal/modules/ledger/service"
)

func Module() fx.Option {
	return fx.Module("ledger",
		fx.Provide(func(gw *gatewaysvc.Client, cfg *config.Config) *service.Ledger {
			return service.NewLedger(gw, service.Options{
				SettleAsset:     cfg.SettleAsset,
				DefaultLeverage: cfg.DefaultLeverage,
				HedgeMode:       cfg.HedgeMode,
			})
		}),
	)
}
