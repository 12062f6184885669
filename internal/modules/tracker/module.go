package tracker

import (
	"context"
	"time"

	"go.uber.org/fx"

	"risk_core/internal/modules/config"
	"risk_core/internal/modules/tracker/service"
	"risk_core/internal/modules/tracker/service/pg"
	"risk_core/pkg/db"
	"risk_core/pkg/logger"
)

type archiveParams struct {
	fx.In

	TxManager *db.PgTxManager `optional:"true"`
}

func Module() fx.Option {
	return fx.Module("tracker",
		fx.Provide(
			func(p archiveParams) *service.Tracker {
				t := service.NewTracker()
				if p.TxManager != nil {
					t.SetArchiver(pg.NewArchive(p.TxManager))
				}
				return t
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, t *service.Tracker, ctx context.Context) {
			if cfg.RetentionDays <= 0 {
				return
			}
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go runCleanup(ctx, t, cfg.RetentionDays)
					return nil
				},
			})
		}),
	)
}

func runCleanup(ctx context.Context, t *service.Tracker, retentionDays int) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := t.CleanupOldHistory(ctx, retentionDays); err != nil {
				logger.Error("order history cleanup failed: %v", err)
			}
		}
	}
}
