package riskgate

import (
	"context"
	"time"

	"go.uber.org/fx"

	"risk_core/internal/models"
	"risk_core/internal/modules/config"
	gatewaysvc "risk_core/internal/modules/gateway/service"
	ledgersvc "risk_core/internal/modules/ledger/service"
	marginsvc "risk_core/internal/modules/margin/service"
	"risk_core/internal/modules/riskgate/service"
	trackersvc "risk_core/internal/modules/tracker/service"
	"risk_core/internal/notify"
	"risk_core/pkg/logger"
)

const dangerCheckEvery = time.Minute

func Module() fx.Option {
	return fx.Module("riskgate",
		fx.Provide(
			func(gw *gatewaysvc.Client, l *ledgersvc.Ledger, m *marginsvc.Calculator, t *trackersvc.Tracker, cfg *config.Config) *service.Gate {
				return service.NewGate(gw, l, m, t, cfg.SettleAsset, cfg.DefaultLeverage)
			},
		),
		// каждый филл из трекера складываем в леджер; списанные из
		// истории ордера выбрасываем и из учёта филлов
		fx.Invoke(func(t *trackersvc.Tracker, l *ledgersvc.Ledger) {
			t.Subscribe(func(o models.Order) {
				if o.ExecutedQty <= 0 {
					return
				}
				if _, err := l.ApplyFill(&o); err != nil {
					logger.Error("apply fill %s: %v", o.ID, err)
				}
			})
			t.OnPurge(l.ForgetOrder)
		}),
		// периодический обход позиций, DANGER уходит в нотифайер
		fx.Invoke(func(lc fx.Lifecycle, g *service.Gate, l *ledgersvc.Ledger, n notify.Notifier, ctx context.Context) {
			g.SetNotifier(n)
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go watchDanger(ctx, g, l, n)
					return nil
				},
			})
		}),
	)
}

func watchDanger(ctx context.Context, g *service.Gate, l *ledgersvc.Ledger, n notify.Notifier) {
	ticker := time.NewTicker(dangerCheckEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, p := range l.AllPositions() {
				a, err := g.AssessPositionRisk(ctx, p.Symbol)
				if err != nil {
					logger.Error("assess %s: %v", p.Symbol, err)
					continue
				}
				if a.Danger {
					n.Sendf("⚠️ %s: %.1f%% до ликвидации (mark %.2f, liq %.2f)",
						a.Symbol, a.LiquidationPct*100, a.MarkPrice, a.LiquidationPrice)
				}
			}
		}
	}
}
