package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risk_core/internal/errs"
	"risk_core/internal/models"
)

func flatCandles(n int, close float64) []models.Candle {
	out := make([]models.Candle, n)
	ts := time.Now().Add(-time.Duration(n) * time.Hour)
	for i := range out {
		out[i] = models.Candle{Ts: ts.Add(time.Duration(i) * time.Hour), Close: close}
	}
	return out
}

func TestOptimalPositionSize(t *testing.T) {
	t.Run("quiet market uses floor stop", func(t *testing.T) {
		gw := calmGateway()
		gw.candles = flatCandles(48, 50000)
		g := NewGate(gw, &fakeLedger{}, &fakeMargin{}, &fakeTracker{}, "USDT", 10)

		adv, err := g.OptimalPositionSize(context.Background(), "BTCUSDT", 0.02)
		require.NoError(t, err)
		// стоп = 1% от 50000 = 500, риск = 200 => 0.4 контракта
		assert.InDelta(t, 500.0, adv.StopDistance, 1e-9)
		assert.InDelta(t, 0.4, adv.Quantity, 1e-9)
		assert.InDelta(t, 49500.0, adv.StopPrice, 1e-9)
		assert.InDelta(t, 200.0, adv.RiskAmount, 1e-9)
		assert.GreaterOrEqual(t, adv.Leverage, 1)

		// сработавший стоп теряет ровно риск
		assert.InDelta(t, adv.RiskAmount, adv.Quantity*adv.StopDistance, 1e-9)
	})

	t.Run("volatile market widens the stop", func(t *testing.T) {
		gw := calmGateway()
		candles := flatCandles(48, 50000)
		for i := range candles {
			if i%2 == 0 {
				candles[i].Close = 52500 // ±5% качели
			}
		}
		gw.candles = candles
		g := NewGate(gw, &fakeLedger{}, &fakeMargin{}, &fakeTracker{}, "USDT", 10)

		adv, err := g.OptimalPositionSize(context.Background(), "BTCUSDT", 0.02)
		require.NoError(t, err)
		assert.Greater(t, adv.StopDistance, 500.0)
		assert.InDelta(t, adv.RiskAmount, adv.Quantity*adv.StopDistance, 1e-9)
	})

	t.Run("bad risk fraction", func(t *testing.T) {
		g := NewGate(calmGateway(), &fakeLedger{}, &fakeMargin{}, &fakeTracker{}, "USDT", 10)
		_, err := g.OptimalPositionSize(context.Background(), "BTCUSDT", 0.5)
		assert.True(t, errs.IsValidation(err))
	})
}

func TestAnalyzePortfolioRisk(t *testing.T) {
	t.Run("empty portfolio", func(t *testing.T) {
		g := NewGate(calmGateway(), &fakeLedger{}, &fakeMargin{}, &fakeTracker{}, "USDT", 10)
		pr, err := g.AnalyzePortfolioRisk(context.Background())
		require.NoError(t, err)
		assert.Zero(t, pr.TotalExposure)
		assert.InDelta(t, 1.0, pr.DiversificationScore, 1e-9)
	})

	t.Run("concentrated portfolio is flagged", func(t *testing.T) {
		gw := calmGateway()
		g := NewGate(gw, &fakeLedger{all: []models.Position{
			{Symbol: "BTCUSDT", Amount: 1, EntryPrice: 50000},
			{Symbol: "ETHUSDT", Amount: 1, EntryPrice: 50000},
		}}, &fakeMargin{}, &fakeTracker{}, "USDT", 10)

		// фейковый шлюз отдаёт 50000 для любого символа
		pr, err := g.AnalyzePortfolioRisk(context.Background())
		require.NoError(t, err)
		assert.InDelta(t, 100000.0, pr.TotalExposure, 1e-9)
		assert.InDelta(t, 0.5, pr.Concentration, 1e-9)
		assert.InDelta(t, 0.5, pr.DiversificationScore, 1e-9)
		// обе позиции выше порога 40%
		assert.Len(t, pr.FlaggedSymbols, 2)
		assert.NotEmpty(t, pr.Warnings)
	})

	t.Run("long and short net out", func(t *testing.T) {
		gw := calmGateway()
		g := NewGate(gw, &fakeLedger{all: []models.Position{
			{Symbol: "BTCUSDT", Amount: 1, EntryPrice: 50000},
			{Symbol: "ETHUSDT", Amount: -1, EntryPrice: 50000},
		}}, &fakeMargin{}, &fakeTracker{}, "USDT", 10)

		pr, err := g.AnalyzePortfolioRisk(context.Background())
		require.NoError(t, err)
		assert.InDelta(t, 100000.0, pr.TotalExposure, 1e-9)
		assert.InDelta(t, 0.0, pr.NetExposure, 1e-9)
	})
}
