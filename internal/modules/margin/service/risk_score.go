package service

import (
	"context"
	"math"

	"risk_core/internal/models"
)

// ClassifyRisk — скалярная оценка риска ордера в [0,1] с предупреждениями
// и рекомендациями. База 0.2, каждый сработавший мажорный триггер
// (высокая волатильность, растущий тренд, плечо выше RiskLeverage)
// добавляет 0.4, потолок 1.0.
func (c *Calculator) ClassifyRisk(ctx context.Context, o *models.Order, pos *models.Position, vol models.VolatilitySummary, leverage int) (models.RiskAssessment, error) {
	req, err := c.RequiredMargin(ctx, o)
	if err != nil {
		return models.RiskAssessment{}, err
	}
	notional := req.InitialMargin / InitialMarginRate

	score := 0.2
	var warnings, recs []string

	switch {
	case vol.Score >= VolHigh:
		score += 0.4
		warnings = append(warnings, "high volatility")
		recs = append(recs, "reduce position size")
	case vol.Score >= VolModerate:
		score += 0.2
		warnings = append(warnings, "moderate volatility")
	}

	if vol.Trend == models.TrendIncreasing {
		score += 0.4
		warnings = append(warnings, "volatility increasing")
		recs = append(recs, "tighten stops")
	}

	if leverage > RiskLeverage {
		score += 0.4
		warnings = append(warnings, "high leverage")
		recs = append(recs, "lower leverage")
	}

	// ордер против открытой позиции риск не наращивает, он её сокращает
	if pos != nil && pos.Amount != 0 {
		reduces := (pos.Amount > 0 && o.Side == models.SideSell) ||
			(pos.Amount < 0 && o.Side == models.SideBuy)
		if !reduces && o.Quantity > math.Abs(pos.Amount) {
			score += 0.2
			warnings = append(warnings, "order more than doubles exposure")
		}
	}

	if score > 1.0 {
		score = 1.0
	}

	// худший случай — потеря всей начальной маржи
	maxLoss := notional * InitialMarginRate
	if len(recs) == 0 && score > 0.5 {
		recs = append(recs, "review risk parameters before placing")
	}
	return models.RiskAssessment{
		MaxLoss:         maxLoss,
		CurrentRisk:     score,
		Warnings:        warnings,
		Recommendations: recs,
	}, nil
}
