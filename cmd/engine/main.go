package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"risk_core/internal/modules/config"
	"risk_core/internal/modules/gateway"
	"risk_core/internal/modules/health"
	"risk_core/internal/modules/ledger"
	ledgersvc "risk_core/internal/modules/ledger/service"
	"risk_core/internal/modules/margin"
	"risk_core/internal/modules/postgres"
	"risk_core/internal/modules/riskgate"
	"risk_core/internal/modules/tracker"
	"risk_core/internal/notify"
	"risk_core/pkg/logger"
	"risk_core/pkg/tracing"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
			// Notifier: если TELEGRAM_* нет — используем stdout
			func(cfg *config.Config, l *ledgersvc.Ledger) notify.Notifier {
				if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
					if tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, l); err == nil {
						return tg
					}
				}
				return notify.NewStdout()
			},
		),
		config.Module(),
		postgres.Module(),
		health.Module(),
		gateway.Module(),
		ledger.Module(),
		margin.Module(),
		tracker.Module(),
		riskgate.Module(),
		fx.Invoke(
			func(lc fx.Lifecycle, cfg *config.Config, n notify.Notifier, ctx context.Context) {
				var closeTracer func()
				lc.Append(fx.Hook{
					OnStart: func(_ context.Context) error {
						var err error
						_, closeTracer, err = tracing.InitTracer(tracing.Config{
							Host: cfg.Tracing.Host,
							Port: cfg.Tracing.Port,
						})
						if err != nil {
							logger.Warn("tracing disabled: %v", err)
						}
						if tg, ok := n.(*notify.Telegram); ok {
							if err := tg.Start(ctx); err != nil {
								return err
							}
						}
						logger.Info("risk core started")
						return nil
					},
					OnStop: func(_ context.Context) error {
						if tg, ok := n.(*notify.Telegram); ok {
							tg.Stop()
						}
						if closeTracer != nil {
							closeTracer()
						}
						logger.Info("stopping...")
						return nil
					},
				})
			},
		),
	)
	app.Run()
}
