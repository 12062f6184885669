package service

import (
	"context"
	"fmt"

	"risk_core/internal/errs"
	"risk_core/internal/models"
	marginsvc "risk_core/internal/modules/margin/service"
)

// OptimalLeverage — потолок плеча из реализованной 24ч волатильности,
// пересечённый с рекомендацией под целевой уровень риска. Возвращаем
// минимум из двух с уверенностью и обоснованием.
func (l *Ledger) OptimalLeverage(ctx context.Context, symbol string, target models.RiskLevel) (models.LeverageAdvice, error) {
	stats, err := l.gw.Stats24h(ctx, symbol)
	if err != nil {
		return models.LeverageAdvice{}, err
	}
	vol := stats.Volatility()

	var (
		volCap     int
		confidence float64
		reasoning  []string
	)
	switch {
	case vol < marginsvc.VolModerate:
		volCap, confidence = 50, 0.9
		reasoning = append(reasoning, fmt.Sprintf("low 24h volatility %.2f%%", vol*100))
	case vol < marginsvc.VolHigh:
		volCap, confidence = 20, 0.7
		reasoning = append(reasoning, fmt.Sprintf("moderate 24h volatility %.2f%%", vol*100))
	default:
		volCap, confidence = 10, 0.5
		reasoning = append(reasoning, fmt.Sprintf("high 24h volatility %.2f%%", vol*100))
	}

	var targetCap int
	switch target {
	case models.RiskLow:
		targetCap = 5
	case models.RiskMedium:
		targetCap = 10
	case models.RiskHigh:
		targetCap = 20
	default:
		return models.LeverageAdvice{}, errs.Validationf("unknown target risk level %q", target)
	}
	reasoning = append(reasoning, fmt.Sprintf("%s target risk caps leverage at %dx", target, targetCap))

	maxLev := volCap
	if targetCap < maxLev {
		maxLev = targetCap
	}
	return models.LeverageAdvice{
		MaxLeverage: maxLev,
		Confidence:  confidence,
		Reasoning:   reasoning,
	}, nil
}
