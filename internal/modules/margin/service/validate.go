package service

import (
	"context"
	"fmt"
	"math"

	"risk_core/internal/errs"
	"risk_core/internal/models"
)

// ValidateMargin — проверка маржи по набору позиций против доступного
// баланса. Валидно, пока required/available ≤ MaxMarginRatio.
func (c *Calculator) ValidateMargin(ctx context.Context, positions []models.Position) (models.MarginValidationResult, error) {
	avail, err := c.availableMargin(ctx)
	if err != nil {
		return models.MarginValidationResult{}, err
	}
	if avail <= 0 {
		return models.MarginValidationResult{}, errs.NoData("balance", c.settleAsset)
	}

	notionals := make([]float64, len(positions))
	total := 0.0
	var warnings []string

	for i := range positions {
		p := &positions[i]
		if p.EntryPrice <= 0 {
			return models.MarginValidationResult{}, errs.Validationf(
				"position %s has zero entry price", p.Symbol)
		}
		n := math.Abs(p.Amount) * p.EntryPrice
		notionals[i] = n
		total += n

		if p.Leverage > HighLeverage {
			warnings = append(warnings,
				fmt.Sprintf("high leverage on %s: %dx", p.Symbol, p.Leverage))
		}
	}

	// концентрация имеет смысл только когда позиций больше одной
	if len(positions) > 1 && total > 0 {
		for i := range positions {
			if notionals[i]/total > HighPositionRatio {
				warnings = append(warnings,
					fmt.Sprintf("high margin usage on %s: %.0f%% of total notional",
						positions[i].Symbol, notionals[i]/total*100))
			}
		}
	}

	required := total * InitialMarginRate
	ratio := required / avail
	return models.MarginValidationResult{
		RequiredMargin:  required,
		AvailableMargin: avail,
		MarginRatio:     ratio,
		IsValid:         ratio <= MaxMarginRatio,
		Warnings:        warnings,
	}, nil
}
