package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risk_core/internal/errs"
	"risk_core/internal/models"
)

type fakeGateway struct {
	ticker   models.Ticker
	tickErr  error
	stats    models.Stats24h
	statsErr error
	balances []models.Balance
	balErr   error
	candles  []models.Candle

	submitted  *models.Order
	submitErr  error
	submitResp models.Order
}

func (f *fakeGateway) BestPrice(_ context.Context, _ string) (models.Ticker, error) {
	return f.ticker, f.tickErr
}

func (f *fakeGateway) Stats24h(_ context.Context, _ string) (models.Stats24h, error) {
	return f.stats, f.statsErr
}

func (f *fakeGateway) Balances(_ context.Context) ([]models.Balance, error) {
	return f.balances, f.balErr
}

func (f *fakeGateway) RecentCandles(_ context.Context, _, _ string, _ int) ([]models.Candle, error) {
	return f.candles, nil
}

func (f *fakeGateway) SubmitOrder(_ context.Context, o *models.Order) (models.Order, error) {
	f.submitted = o
	if f.submitErr != nil {
		return models.Order{}, f.submitErr
	}
	return f.submitResp, nil
}

type fakeLedger struct {
	pos    models.Position
	posErr error
	all    []models.Position
	report models.PositionRiskReport
	repErr error
}

func (f *fakeLedger) CurrentPosition(symbol string) (models.Position, error) {
	if f.posErr != nil {
		return models.Position{}, f.posErr
	}
	return f.pos, nil
}

func (f *fakeLedger) AllPositions() []models.Position { return f.all }

func (f *fakeLedger) PositionRisk(_ context.Context, _ string) (models.PositionRiskReport, error) {
	return f.report, f.repErr
}

type fakeMargin struct {
	req        models.MarginRequirement
	reqErr     error
	assessment models.RiskAssessment
	assessErr  error
}

func (f *fakeMargin) RequiredMargin(_ context.Context, _ *models.Order) (models.MarginRequirement, error) {
	return f.req, f.reqErr
}

func (f *fakeMargin) ClassifyRisk(_ context.Context, _ *models.Order, _ *models.Position, _ models.VolatilitySummary, _ int) (models.RiskAssessment, error) {
	return f.assessment, f.assessErr
}

type fakeTracker struct {
	tracked []models.Order
	err     error
}

func (f *fakeTracker) Track(o models.Order) error {
	if f.err != nil {
		return f.err
	}
	f.tracked = append(f.tracked, o)
	return nil
}

func buyOrder(qty, price float64) *models.Order {
	return &models.Order{
		Symbol: "BTCUSDT", Side: models.SideBuy, Type: models.OrderLimit,
		Quantity: qty, Price: price,
	}
}

func calmGateway() *fakeGateway {
	return &fakeGateway{
		ticker:   models.Ticker{Symbol: "BTCUSDT", Bid: 50000, Ask: 50000},
		stats:    models.Stats24h{Symbol: "BTCUSDT", PriceChangePct: 1.5},
		balances: []models.Balance{{Asset: "USDT", Available: 10000}},
	}
}

func riskLimitReason(t *testing.T, err error) string {
	t.Helper()
	var rl *errs.RiskLimitError
	require.True(t, errors.As(err, &rl), "want risk limit error, got %v", err)
	return rl.Reason
}

func TestCheckOrderRisk(t *testing.T) {
	t.Run("approves calm order", func(t *testing.T) {
		g := NewGate(calmGateway(),
			&fakeLedger{posErr: errs.NotFound("position", "BTCUSDT")},
			&fakeMargin{
				req:        models.MarginRequirement{InitialMargin: 500, MaintenanceMargin: 250},
				assessment: models.RiskAssessment{CurrentRisk: 0.2, MaxLoss: 500},
			},
			&fakeTracker{}, "USDT", 10)

		a, err := g.CheckOrderRisk(context.Background(), buyOrder(0.1, 50000))
		require.NoError(t, err)
		assert.InDelta(t, 0.2, a.CurrentRisk, 1e-9)
	})

	t.Run("rejects on volatility", func(t *testing.T) {
		gw := calmGateway()
		gw.stats.PriceChangePct = -8
		g := NewGate(gw, &fakeLedger{posErr: errs.NotFound("position", "BTCUSDT")},
			&fakeMargin{}, &fakeTracker{}, "USDT", 10)

		_, err := g.CheckOrderRisk(context.Background(), buyOrder(0.1, 50000))
		assert.Equal(t, "volatility", riskLimitReason(t, err))
	})

	t.Run("rejects on leverage", func(t *testing.T) {
		g := NewGate(calmGateway(),
			&fakeLedger{pos: models.Position{Symbol: "BTCUSDT", Amount: 0.1, EntryPrice: 50000, Leverage: 100}},
			&fakeMargin{}, &fakeTracker{}, "USDT", 10)

		_, err := g.CheckOrderRisk(context.Background(), buyOrder(0.1, 50000))
		assert.Equal(t, "leverage", riskLimitReason(t, err))
	})

	t.Run("rejects on margin exhaustion", func(t *testing.T) {
		g := NewGate(calmGateway(),
			&fakeLedger{pos: models.Position{Symbol: "BTCUSDT", Amount: 2, EntryPrice: 50000, Leverage: 2}},
			&fakeMargin{req: models.MarginRequirement{InitialMargin: 50000}},
			&fakeTracker{}, "USDT", 10)

		_, err := g.CheckOrderRisk(context.Background(), buyOrder(10, 50000))
		assert.Equal(t, "margin", riskLimitReason(t, err))
	})

	t.Run("rejects on estimated loss", func(t *testing.T) {
		g := NewGate(calmGateway(),
			&fakeLedger{posErr: errs.NotFound("position", "BTCUSDT")},
			&fakeMargin{
				req:        models.MarginRequirement{InitialMargin: 5000},
				assessment: models.RiskAssessment{CurrentRisk: 0.4, MaxLoss: 5000},
			},
			&fakeTracker{}, "USDT", 10)

		_, err := g.CheckOrderRisk(context.Background(), buyOrder(1, 50000))
		assert.Equal(t, "loss", riskLimitReason(t, err))
	})

	t.Run("propagates market data failure", func(t *testing.T) {
		gw := calmGateway()
		gw.statsErr = errs.MarketData("stats", "BTCUSDT", errors.New("timeout"))
		g := NewGate(gw, &fakeLedger{}, &fakeMargin{}, &fakeTracker{}, "USDT", 10)

		_, err := g.CheckOrderRisk(context.Background(), buyOrder(0.1, 50000))
		assert.True(t, errs.IsMarketData(err))
	})

	t.Run("validates input", func(t *testing.T) {
		g := NewGate(calmGateway(), &fakeLedger{}, &fakeMargin{}, &fakeTracker{}, "USDT", 10)
		_, err := g.CheckOrderRisk(context.Background(), buyOrder(0, 50000))
		assert.True(t, errs.IsValidation(err))
	})
}

func TestPlaceOrder(t *testing.T) {
	t.Run("approved order is submitted and tracked", func(t *testing.T) {
		gw := calmGateway()
		gw.submitResp = models.Order{ID: "okx-1", Symbol: "BTCUSDT", Status: models.StatusNew}
		tr := &fakeTracker{}
		g := NewGate(gw,
			&fakeLedger{posErr: errs.NotFound("position", "BTCUSDT")},
			&fakeMargin{
				req:        models.MarginRequirement{InitialMargin: 500},
				assessment: models.RiskAssessment{CurrentRisk: 0.2, MaxLoss: 500},
			},
			tr, "USDT", 10)

		placed, err := g.PlaceOrder(context.Background(), buyOrder(0.1, 50000))
		require.NoError(t, err)
		assert.Equal(t, "okx-1", placed.ID)
		require.Len(t, tr.tracked, 1)
		assert.Equal(t, "okx-1", tr.tracked[0].ID)
	})

	t.Run("rejected order never reaches the exchange", func(t *testing.T) {
		gw := calmGateway()
		gw.stats.PriceChangePct = -9
		tr := &fakeTracker{}
		g := NewGate(gw, &fakeLedger{posErr: errs.NotFound("position", "BTCUSDT")},
			&fakeMargin{}, tr, "USDT", 10)

		_, err := g.PlaceOrder(context.Background(), buyOrder(0.1, 50000))
		require.Error(t, err)
		assert.Nil(t, gw.submitted)
		assert.Empty(t, tr.tracked)
	})
}

func TestAssessPositionRisk(t *testing.T) {
	t.Run("healthy position", func(t *testing.T) {
		g := NewGate(calmGateway(),
			&fakeLedger{
				pos:    models.Position{Symbol: "BTCUSDT", Amount: 1, EntryPrice: 40000, Leverage: 5},
				report: models.PositionRiskReport{Symbol: "BTCUSDT", LiquidationRisk: models.RiskLow},
			},
			&fakeMargin{}, &fakeTracker{}, "USDT", 10)

		a, err := g.AssessPositionRisk(context.Background(), "BTCUSDT")
		require.NoError(t, err)
		assert.Equal(t, models.RiskLow, a.Level)
		assert.False(t, a.Danger)
		assert.Greater(t, a.LiquidationPct, 0.1)
	})

	t.Run("danger near liquidation", func(t *testing.T) {
		gw := calmGateway()
		g := NewGate(gw,
			&fakeLedger{
				pos: models.Position{
					Symbol: "BTCUSDT", Amount: 1, EntryPrice: 52000,
					Leverage: 10, LiquidationPrice: 48000,
				},
				report: models.PositionRiskReport{Symbol: "BTCUSDT", LiquidationRisk: models.RiskHigh},
			},
			&fakeMargin{}, &fakeTracker{}, "USDT", 10)

		a, err := g.AssessPositionRisk(context.Background(), "BTCUSDT")
		require.NoError(t, err)
		assert.True(t, a.Danger)
		assert.Equal(t, models.RiskHigh, a.Level)
		assert.NotEmpty(t, a.Warnings)
	})

	t.Run("degrades on market data failure", func(t *testing.T) {
		gw := calmGateway()
		gw.tickErr = errs.MarketData("price", "BTCUSDT", errors.New("timeout"))
		g := NewGate(gw,
			&fakeLedger{pos: models.Position{Symbol: "BTCUSDT", Amount: 1, EntryPrice: 50000}},
			&fakeMargin{}, &fakeTracker{}, "USDT", 10)

		a, err := g.AssessPositionRisk(context.Background(), "BTCUSDT")
		require.NoError(t, err)
		assert.Equal(t, models.RiskHigh, a.Level)
		assert.NotEmpty(t, a.Warnings)
	})

	t.Run("no position is an error", func(t *testing.T) {
		g := NewGate(calmGateway(),
			&fakeLedger{posErr: errs.NotFound("position", "BTCUSDT")},
			&fakeMargin{}, &fakeTracker{}, "USDT", 10)

		_, err := g.AssessPositionRisk(context.Background(), "BTCUSDT")
		assert.True(t, errs.IsNotFound(err))
	})
}
