package service

import (
	"context"
	"fmt"
	"math"

	"risk_core/internal/models"
	marginsvc "risk_core/internal/modules/margin/service"
	"risk_core/pkg/logger"
)

// dangerPct — до ликвидации меньше 10% хода цены.
const dangerPct = 0.10

// AssessPositionRisk — состояние открытой позиции относительно
// ликвидации. Операция советующая: если биржа не отвечает, не падаем,
// а отдаём худшую оценку с предупреждением.
func (g *Gate) AssessPositionRisk(ctx context.Context, symbol string) (models.PositionAssessment, error) {
	pos, err := g.ledger.CurrentPosition(symbol)
	if err != nil {
		return models.PositionAssessment{}, err
	}

	out := models.PositionAssessment{Symbol: symbol, Level: models.RiskHigh}

	t, err := g.gw.BestPrice(ctx, symbol)
	if err != nil || t.Mid() <= 0 {
		logger.Warn("position assessment for %s degraded, no mark price: %v", symbol, err)
		out.Warnings = append(out.Warnings, "mark price unavailable, assuming worst case")
		return out, nil
	}
	mark := t.Mid()
	out.MarkPrice = mark

	liq := pos.LiquidationPrice
	if liq <= 0 {
		liq = estimateLiquidation(&pos)
	}
	out.LiquidationPrice = liq
	out.LiquidationDist = math.Abs(mark - liq)
	out.LiquidationPct = out.LiquidationDist / mark
	out.Danger = out.LiquidationPct < dangerPct
	if out.Danger {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("%.1f%% from liquidation", out.LiquidationPct*100))
	}

	rep, err := g.ledger.PositionRisk(ctx, symbol)
	if err != nil {
		logger.Warn("position assessment for %s degraded, no margin ratio: %v", symbol, err)
		out.Warnings = append(out.Warnings, "margin ratio unavailable, assuming worst case")
		return out, nil
	}
	out.Level = rep.LiquidationRisk
	return out, nil
}

// estimateLiquidation — грубая оценка для кросс-маржи: вход минус
// (для лонга) запас маржи за вычетом поддерживающей ставки.
func estimateLiquidation(p *models.Position) float64 {
	if p.Leverage <= 0 || p.EntryPrice <= 0 {
		return 0
	}
	buffer := 1.0/float64(p.Leverage) - marginsvc.MaintenanceMarginRate
	if buffer < 0 {
		buffer = 0
	}
	if p.Amount > 0 {
		return p.EntryPrice * (1 - buffer)
	}
	return p.EntryPrice * (1 + buffer)
}
