package service

import (
	"context"
	"fmt"

	"risk_core/internal/models"
)

// MarginImpact — остаётся ли портфель в пределах MaxMarginRatio, если
// добавить к нему этот ордер. Цену ордера резолвим до всех расчётов.
func (c *Calculator) MarginImpact(ctx context.Context, o *models.Order, positions []models.Position) (models.MarginValidationResult, error) {
	req, err := c.RequiredMargin(ctx, o)
	if err != nil {
		return models.MarginValidationResult{}, fmt.Errorf("margin impact: %w", err)
	}

	// ордер участвует как виртуальная позиция с его нотионалом
	price := o.Price
	if price <= 0 {
		// RequiredMargin уже зарезолвил цену — восстановим её из маржи
		price = req.InitialMargin / InitialMarginRate / o.Quantity
	}
	combined := make([]models.Position, 0, len(positions)+1)
	combined = append(combined, positions...)
	amount := o.Quantity
	if o.Side == models.SideSell {
		amount = -amount
	}
	combined = append(combined, models.Position{
		Symbol:     o.Symbol,
		Amount:     amount,
		EntryPrice: price,
	})

	res, err := c.ValidateMargin(ctx, combined)
	if err != nil {
		return models.MarginValidationResult{}, fmt.Errorf("margin impact: %w", err)
	}
	return res, nil
}
