package service

import (
	"context"
	"math"

	"risk_core/internal/errs"
)

// riskFactor — консервативная доля баланса, которой разрешаем рисковать
// при расчёте максимального размера.
const riskFactor = 0.1

// MaxPosition — максимум контрактов, который позволяет баланс:
// balance × leverage × riskFactor / price.
func (l *Ledger) MaxPosition(ctx context.Context, symbol string) (float64, error) {
	if symbol == "" {
		return 0, errs.Validationf("empty symbol")
	}
	balance, err := l.availableBalance(ctx)
	if err != nil {
		return 0, err
	}
	t, err := l.gw.BestPrice(ctx, symbol)
	if err != nil {
		return 0, err
	}
	price := t.Mid()
	if price <= 0 {
		return 0, errs.NoData("price", symbol)
	}
	lev := float64(l.leverageFor(symbol))
	return balance * lev * riskFactor / price, nil
}

// ValidatePositionSize — поместится ли добавка к текущей позиции
// в максимальный размер.
func (l *Ledger) ValidatePositionSize(ctx context.Context, symbol string, proposedSize float64) (bool, error) {
	maxSize, err := l.MaxPosition(ctx, symbol)
	if err != nil {
		return false, err
	}

	current := 0.0
	if pos, err := l.CurrentPosition(symbol); err == nil {
		current = math.Abs(pos.Amount)
	} else if !errs.IsNotFound(err) {
		return false, err
	}
	return current+math.Abs(proposedSize) <= maxSize, nil
}
