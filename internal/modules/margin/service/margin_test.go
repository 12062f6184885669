package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risk_core/internal/errs"
	"risk_core/internal/models"
)

type fakeGateway struct {
	ticker   models.Ticker
	tickErr  error
	balances []models.Balance
	balErr   error
}

func (f *fakeGateway) BestPrice(_ context.Context, _ string) (models.Ticker, error) {
	return f.ticker, f.tickErr
}

func (f *fakeGateway) Balances(_ context.Context) ([]models.Balance, error) {
	return f.balances, f.balErr
}

func TestRequiredMargin(t *testing.T) {
	gw := &fakeGateway{}
	c := NewCalculator(gw, "USDT")

	t.Run("price from order", func(t *testing.T) {
		req, err := c.RequiredMargin(context.Background(), &models.Order{
			Symbol: "BTCUSDT", Side: models.SideBuy, Quantity: 2, Price: 50000,
		})
		require.NoError(t, err)
		assert.InDelta(t, 10000.0, req.InitialMargin, 1e-9)
		assert.InDelta(t, 5000.0, req.MaintenanceMargin, 1e-9)
		assert.InDelta(t, 0.5, req.MarginRatio, 1e-9)
	})

	t.Run("price resolved from gateway", func(t *testing.T) {
		gw.ticker = models.Ticker{Symbol: "BTCUSDT", Bid: 40000, Ask: 40001}
		req, err := c.RequiredMargin(context.Background(), &models.Order{
			Symbol: "BTCUSDT", Side: models.SideBuy, Quantity: 1,
		})
		require.NoError(t, err)
		assert.InDelta(t, 4000.0, req.InitialMargin, 1e-9)
	})

	t.Run("no price anywhere", func(t *testing.T) {
		gw.ticker = models.Ticker{}
		_, err := c.RequiredMargin(context.Background(), &models.Order{
			Symbol: "BTCUSDT", Side: models.SideBuy, Quantity: 1,
		})
		require.Error(t, err)
		assert.True(t, errs.IsMarketData(err))
		assert.Contains(t, err.Error(), "BTCUSDT")
	})

	t.Run("bad quantity", func(t *testing.T) {
		_, err := c.RequiredMargin(context.Background(), &models.Order{
			Symbol: "BTCUSDT", Side: models.SideBuy, Quantity: 0, Price: 100,
		})
		assert.True(t, errs.IsValidation(err))
	})
}

func TestValidateMargin(t *testing.T) {
	gw := &fakeGateway{balances: []models.Balance{{Asset: "USDT", Available: 10000}}}
	c := NewCalculator(gw, "USDT")

	t.Run("single position within limits", func(t *testing.T) {
		res, err := c.ValidateMargin(context.Background(), []models.Position{
			{Symbol: "BTCUSDT", Amount: 0.1, EntryPrice: 50000, Leverage: 10},
		})
		require.NoError(t, err)
		assert.InDelta(t, 500.0, res.RequiredMargin, 1e-9)
		assert.InDelta(t, 0.05, res.MarginRatio, 1e-9)
		assert.True(t, res.IsValid)
		assert.Empty(t, res.Warnings)
	})

	t.Run("ratio above limit is invalid", func(t *testing.T) {
		res, err := c.ValidateMargin(context.Background(), []models.Position{
			{Symbol: "BTCUSDT", Amount: 2, EntryPrice: 50000, Leverage: 10},
		})
		require.NoError(t, err)
		assert.False(t, res.IsValid)
		assert.Greater(t, res.MarginRatio, MaxMarginRatio)
	})

	t.Run("high leverage warns", func(t *testing.T) {
		res, err := c.ValidateMargin(context.Background(), []models.Position{
			{Symbol: "ETHUSDT", Amount: 1, EntryPrice: 3000, Leverage: 50},
		})
		require.NoError(t, err)
		assert.True(t, res.IsValid)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "high leverage")
	})

	t.Run("concentration warns with multiple positions", func(t *testing.T) {
		res, err := c.ValidateMargin(context.Background(), []models.Position{
			{Symbol: "BTCUSDT", Amount: 0.1, EntryPrice: 50000, Leverage: 10},
			{Symbol: "ETHUSDT", Amount: 0.1, EntryPrice: 3000, Leverage: 10},
		})
		require.NoError(t, err)
		require.NotEmpty(t, res.Warnings)
		assert.Contains(t, res.Warnings[0], "BTCUSDT")
	})

	t.Run("missing settle asset", func(t *testing.T) {
		empty := NewCalculator(&fakeGateway{balances: []models.Balance{{Asset: "BTC", Available: 1}}}, "USDT")
		_, err := empty.ValidateMargin(context.Background(), nil)
		assert.True(t, errs.IsMarketData(err))
	})
}

func TestMarginImpact(t *testing.T) {
	gw := &fakeGateway{balances: []models.Balance{{Asset: "USDT", Available: 10000}}}
	c := NewCalculator(gw, "USDT")

	res, err := c.MarginImpact(context.Background(),
		&models.Order{Symbol: "BTCUSDT", Side: models.SideBuy, Quantity: 0.1, Price: 50000},
		[]models.Position{{Symbol: "ETHUSDT", Amount: 1, EntryPrice: 3000, Leverage: 10}},
	)
	require.NoError(t, err)
	// 5000 + 3000 нотионала => 800 маржи против 10000
	assert.InDelta(t, 800.0, res.RequiredMargin, 1e-9)
	assert.InDelta(t, 0.08, res.MarginRatio, 1e-9)
	assert.True(t, res.IsValid)
}

func TestClassifyRisk(t *testing.T) {
	gw := &fakeGateway{}
	c := NewCalculator(gw, "USDT")
	order := &models.Order{Symbol: "BTCUSDT", Side: models.SideBuy, Quantity: 1, Price: 50000}
	calm := models.VolatilitySummary{Score: 0.01, Trend: models.TrendStable}

	t.Run("baseline", func(t *testing.T) {
		a, err := c.ClassifyRisk(context.Background(), order, nil, calm, 5)
		require.NoError(t, err)
		assert.InDelta(t, 0.2, a.CurrentRisk, 1e-9)
		assert.InDelta(t, 5000.0, a.MaxLoss, 1e-9)
		assert.Empty(t, a.Warnings)
	})

	t.Run("single trigger lands above elevated", func(t *testing.T) {
		cases := []struct {
			name string
			vol  models.VolatilitySummary
			lev  int
			warn string
		}{
			{"high volatility", models.VolatilitySummary{Score: 0.05, Trend: models.TrendStable}, 5, "high volatility"},
			{"increasing trend", models.VolatilitySummary{Score: 0.01, Trend: models.TrendIncreasing}, 5, "volatility increasing"},
			{"high leverage", calm, 11, "high leverage"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				a, err := c.ClassifyRisk(context.Background(), order, nil, tc.vol, tc.lev)
				require.NoError(t, err)
				assert.InDelta(t, 0.6, a.CurrentRisk, 1e-9)
				assert.True(t, a.Elevated())
				assert.Contains(t, a.Warnings, tc.warn)
				assert.NotEmpty(t, a.Recommendations)
			})
		}
	})

	t.Run("moderate volatility stays below elevated", func(t *testing.T) {
		a, err := c.ClassifyRisk(context.Background(), order, nil,
			models.VolatilitySummary{Score: 0.04, Trend: models.TrendStable}, 5)
		require.NoError(t, err)
		assert.InDelta(t, 0.4, a.CurrentRisk, 1e-9)
		assert.False(t, a.Elevated())
	})

	t.Run("score capped at one", func(t *testing.T) {
		pos := &models.Position{Symbol: "BTCUSDT", Amount: 0.2, EntryPrice: 50000}
		a, err := c.ClassifyRisk(context.Background(), order, pos,
			models.VolatilitySummary{Score: 0.08, Trend: models.TrendIncreasing}, 25)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, a.CurrentRisk, 1e-9)
	})

	t.Run("reducing order does not escalate", func(t *testing.T) {
		pos := &models.Position{Symbol: "BTCUSDT", Amount: 2, EntryPrice: 50000}
		sell := &models.Order{Symbol: "BTCUSDT", Side: models.SideSell, Quantity: 1, Price: 50000}
		a, err := c.ClassifyRisk(context.Background(), sell, pos, calm, 5)
		require.NoError(t, err)
		assert.InDelta(t, 0.2, a.CurrentRisk, 1e-9)
	})
}
