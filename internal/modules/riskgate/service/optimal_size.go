package service

import (
	"context"
	"math"

	"risk_core/internal/errs"
	"risk_core/internal/models"
	marginsvc "risk_core/internal/modules/margin/service"
)

const (
	// minStopPct — стоп не ставим ближе 1% от цены, какой бы тихой
	// ни была история.
	minStopPct = 0.01

	candleInterval = "1H"
	candleLimit    = 48
)

// OptimalPositionSize — размер позиции под заданную долю баланса:
// сработавший стоп теряет ровно riskFraction × balance. Дистанция
// стопа — максимум из фиксированного процента и одного стандартного
// отклонения недавних доходностей.
func (g *Gate) OptimalPositionSize(ctx context.Context, symbol string, riskFraction float64) (models.SizeAdvice, error) {
	if symbol == "" {
		return models.SizeAdvice{}, errs.Validationf("empty symbol")
	}
	if riskFraction <= 0 || riskFraction > 0.1 {
		return models.SizeAdvice{}, errs.Validationf(
			"risk fraction must be in (0, 0.1], got %v", riskFraction)
	}

	balance, err := g.availableBalance(ctx)
	if err != nil {
		return models.SizeAdvice{}, err
	}
	t, err := g.gw.BestPrice(ctx, symbol)
	if err != nil {
		return models.SizeAdvice{}, err
	}
	price := t.Mid()
	if price <= 0 {
		return models.SizeAdvice{}, errs.NoData("price", symbol)
	}

	stopPct := minStopPct
	candles, err := g.gw.RecentCandles(ctx, symbol, candleInterval, candleLimit)
	if err != nil {
		return models.SizeAdvice{}, err
	}
	if sd := returnsStdDev(candles); sd > stopPct {
		stopPct = sd
	}

	stopDist := price * stopPct
	riskAmount := balance * riskFraction
	qty := riskAmount / stopDist

	// плечо ограничиваем так, чтобы начальная маржа заняла не больше
	// половины баланса
	notional := qty * price
	lev := int(math.Ceil(notional * marginsvc.InitialMarginRate / (balance * 0.5)))
	if lev < 1 {
		lev = 1
	}
	if lev > marginsvc.HighLeverage {
		lev = marginsvc.HighLeverage
	}

	return models.SizeAdvice{
		Quantity:     qty,
		StopDistance: stopDist,
		StopPrice:    price - stopDist,
		Leverage:     lev,
		RiskAmount:   riskAmount,
	}, nil
}

// returnsStdDev — стандартное отклонение доходностей close-to-close.
func returnsStdDev(candles []models.Candle) float64 {
	if len(candles) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev <= 0 {
			continue
		}
		returns = append(returns, (candles[i].Close-prev)/prev)
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	return math.Sqrt(variance)
}
