package service

import (
	"context"
	"fmt"

	"risk_core/internal/models"
)

// SetLeverage — проброс на биржу; при успехе обновляем плечо в учёте.
func (l *Ledger) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	if err := l.gw.SetLeverage(ctx, symbol, leverage); err != nil {
		return fmt.Errorf("set leverage %dx for %s: %w", leverage, symbol, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.opts.HedgeMode {
		if h, ok := l.hedged[symbol]; ok {
			h.Leverage = leverage
		}
	} else if p, ok := l.positions[symbol]; ok {
		p.Leverage = leverage
	}
	return nil
}

// SetMarginType — проброс режима маржи на биржу.
func (l *Ledger) SetMarginType(ctx context.Context, symbol string, mode models.MarginMode) error {
	if err := l.gw.SetMarginType(ctx, symbol, mode); err != nil {
		return fmt.Errorf("set margin mode %s for %s: %w", mode, symbol, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.opts.HedgeMode {
		if p, ok := l.positions[symbol]; ok {
			p.MarginMode = mode
		}
	}
	return nil
}
