package service

import (
	"context"
	"math"

	"github.com/shopspring/decimal"

	"risk_core/internal/errs"
	"risk_core/internal/models"
	marginsvc "risk_core/internal/modules/margin/service"
)

// PositionRisk — риск ликвидации по открытой позиции.
//
// Margin ratio здесь — поддерживающая маржа к остатку начальной маржи
// с учётом нереализованного PnL: у здоровой позиции 0.5, убыток толкает
// вверх, 1.0 — ликвидация. Наружу финансовые значения уходят строками.
func (l *Ledger) PositionRisk(ctx context.Context, symbol string) (models.PositionRiskReport, error) {
	pos, err := l.CurrentPosition(symbol)
	if err != nil {
		return models.PositionRiskReport{}, err
	}

	t, err := l.gw.BestPrice(ctx, symbol)
	if err != nil {
		return models.PositionRiskReport{}, err
	}
	mark := t.Mid()
	if mark <= 0 {
		return models.PositionRiskReport{}, errs.NoData("price", symbol)
	}

	upl := (mark - pos.EntryPrice) * pos.Amount
	notional := pos.Notional(pos.EntryPrice)
	initial := notional * marginsvc.InitialMarginRate
	maintenance := notional * marginsvc.MaintenanceMarginRate

	remaining := initial + upl
	ratio := 1.0
	if remaining > maintenance {
		ratio = maintenance / remaining
	}

	level := models.RiskLow
	switch {
	case ratio > 0.75:
		level = models.RiskHigh
	case ratio > 0.5:
		level = models.RiskMedium
	}

	return models.PositionRiskReport{
		Symbol:          symbol,
		LiquidationRisk: level,
		MarginRatio:     decimal.NewFromFloat(round8(ratio)).String(),
		UnrealizedPnl:   decimal.NewFromFloat(round8(upl)).String(),
	}, nil
}

// round8 — хвосты float64 не должны попадать в отчётные строки
func round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}
