package service

import (
	"context"

	"risk_core/internal/errs"
	"risk_core/internal/models"
)

// Ставки фиксированные: тиражировать биржевые ступенчатые таблицы маржи
// мы сознательно не пытаемся.
const (
	InitialMarginRate     = 0.10
	MaintenanceMarginRate = 0.05

	// MaxMarginRatio — выше этой доли занятой маржи портфель невалиден.
	MaxMarginRatio = 0.8

	// HighPositionRatio — доля нотионала одной позиции в портфеле,
	// с которой начинаем ругаться на концентрацию.
	HighPositionRatio = 0.4

	// пороги волатильности для классификации риска
	VolModerate = 0.03
	VolHigh     = 0.05

	// плечи-пороги: риск-эскалация и предупреждение
	RiskLeverage = 10
	HighLeverage = 20
)

// Gateway — что калькулятору нужно от биржи: цена, когда её нет в ордере,
// и баланс в валюте расчётов.
type Gateway interface {
	BestPrice(ctx context.Context, symbol string) (models.Ticker, error)
	Balances(ctx context.Context) ([]models.Balance, error)
}

// Calculator — чистая арифметика маржи. Состояния нет, I/O только на
// резолв цены/баланса, когда их не передали.
type Calculator struct {
	gw          Gateway
	settleAsset string
}

func NewCalculator(gw Gateway, settleAsset string) *Calculator {
	if settleAsset == "" {
		settleAsset = "USDT"
	}
	return &Calculator{gw: gw, settleAsset: settleAsset}
}

// RequiredMargin — маржа под один ордер. Цена из ордера, иначе best bid.
func (c *Calculator) RequiredMargin(ctx context.Context, o *models.Order) (models.MarginRequirement, error) {
	if o == nil || o.Symbol == "" {
		return models.MarginRequirement{}, errs.Validationf("order without symbol")
	}
	if o.Quantity <= 0 {
		return models.MarginRequirement{}, errs.Validationf("quantity must be positive, got %v", o.Quantity)
	}

	price := o.Price
	if price <= 0 {
		t, err := c.gw.BestPrice(ctx, o.Symbol)
		if err != nil {
			return models.MarginRequirement{}, err
		}
		price = t.Bid
	}
	if price <= 0 {
		return models.MarginRequirement{}, errs.NoData("price", o.Symbol)
	}

	notional := price * o.Quantity
	initial := notional * InitialMarginRate
	maintenance := notional * MaintenanceMarginRate
	return models.MarginRequirement{
		InitialMargin:     initial,
		MaintenanceMargin: maintenance,
		MarginRatio:       maintenance / initial, // при фиксированных ставках всегда 0.5
	}, nil
}

// availableMargin — доступный баланс в валюте расчётов; отсутствие
// записи по валюте — ошибка, а не ноль.
func (c *Calculator) availableMargin(ctx context.Context) (float64, error) {
	balances, err := c.gw.Balances(ctx)
	if err != nil {
		return 0, err
	}
	for _, b := range balances {
		if b.Asset == c.settleAsset {
			return b.Available, nil
		}
	}
	return 0, errs.NoData("balance", c.settleAsset)
}
