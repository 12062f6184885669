package service

import (
	"context"
	"math"

	"github.com/opentracing/opentracing-go"

	"risk_core/internal/errs"
	"risk_core/internal/models"
	marginsvc "risk_core/internal/modules/margin/service"
)

// Пороги гейта. Волатильность и плечи переиспользуют пороги
// калькулятора, лимит потерь свой.
const (
	// MaxVolatility — выше этой суточной волатильности новые ордера не пропускаем.
	MaxVolatility = marginsvc.VolHigh

	// MaxAllowedLeverage — абсолютный потолок плеча на аккаунте.
	MaxAllowedLeverage = 50

	// MaxLossFraction — оценочная потеря по ордеру не должна превышать
	// эту долю баланса.
	MaxLossFraction = 0.2
)

// Gateway — всё, что гейту нужно от биржи.
type Gateway interface {
	BestPrice(ctx context.Context, symbol string) (models.Ticker, error)
	Stats24h(ctx context.Context, symbol string) (models.Stats24h, error)
	Balances(ctx context.Context) ([]models.Balance, error)
	RecentCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)
	SubmitOrder(ctx context.Context, o *models.Order) (models.Order, error)
}

// Ledger — чтение позиций.
type Ledger interface {
	CurrentPosition(symbol string) (models.Position, error)
	AllPositions() []models.Position
	PositionRisk(ctx context.Context, symbol string) (models.PositionRiskReport, error)
}

// Margin — расчёты маржи и риска.
type Margin interface {
	RequiredMargin(ctx context.Context, o *models.Order) (models.MarginRequirement, error)
	ClassifyRisk(ctx context.Context, o *models.Order, pos *models.Position, vol models.VolatilitySummary, leverage int) (models.RiskAssessment, error)
}

// Tracker — регистрация одобренных ордеров.
type Tracker interface {
	Track(o models.Order) error
}

// Notifier — куда слать алерты об отказах и ликвидационных рисках.
type Notifier interface {
	Sendf(format string, args ...any)
}

// Gate — последний рубеж перед биржей: ни один ордер не уходит мимо него.
type Gate struct {
	gw          Gateway
	ledger      Ledger
	margin      Margin
	tracker     Tracker
	notifier    Notifier
	settleAsset string
	defaultLev  int
}

// SetNotifier включает алерты; без него гейт работает молча.
func (g *Gate) SetNotifier(n Notifier) { g.notifier = n }

func NewGate(gw Gateway, ledger Ledger, margin Margin, tracker Tracker, settleAsset string, defaultLeverage int) *Gate {
	if settleAsset == "" {
		settleAsset = "USDT"
	}
	if defaultLeverage <= 0 {
		defaultLeverage = 1
	}
	return &Gate{
		gw:          gw,
		ledger:      ledger,
		margin:      margin,
		tracker:     tracker,
		settleAsset: settleAsset,
		defaultLev:  defaultLeverage,
	}
}

// CheckOrderRisk — пропускать ли ордер. Отказ — типизированная ошибка
// с различимой причиной: маржа, волатильность, плечо или потери.
func (g *Gate) CheckOrderRisk(ctx context.Context, o *models.Order) (models.RiskAssessment, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "riskgate.CheckOrderRisk")
	defer span.Finish()

	if o == nil || o.Symbol == "" {
		return models.RiskAssessment{}, errs.Validationf("order without symbol")
	}
	if o.Quantity <= 0 {
		return models.RiskAssessment{}, errs.Validationf("quantity must be positive, got %v", o.Quantity)
	}
	if o.Side != models.SideBuy && o.Side != models.SideSell {
		return models.RiskAssessment{}, errs.Validationf("unknown side %q", o.Side)
	}
	span.SetTag("symbol", o.Symbol)

	stats, err := g.gw.Stats24h(ctx, o.Symbol)
	if err != nil {
		return models.RiskAssessment{}, err
	}
	vol := stats.Volatility()
	if vol > MaxVolatility {
		return models.RiskAssessment{}, errs.RiskLimitf("volatility",
			"24h volatility %.2f%% above %.2f%% limit for %s", vol*100, MaxVolatility*100, o.Symbol)
	}

	var pos *models.Position
	leverage := g.defaultLev
	if p, err := g.ledger.CurrentPosition(o.Symbol); err == nil {
		pos = &p
		if p.Leverage > 0 {
			leverage = p.Leverage
		}
	} else if !errs.IsNotFound(err) {
		return models.RiskAssessment{}, err
	}
	if leverage > MaxAllowedLeverage {
		return models.RiskAssessment{}, errs.RiskLimitf("leverage",
			"leverage %dx above %dx limit for %s", leverage, MaxAllowedLeverage, o.Symbol)
	}

	req, err := g.margin.RequiredMargin(ctx, o)
	if err != nil {
		return models.RiskAssessment{}, err
	}
	orderNotional := req.InitialMargin / marginsvc.InitialMarginRate

	balance, err := g.availableBalance(ctx)
	if err != nil {
		return models.RiskAssessment{}, err
	}

	exposure := orderNotional
	if pos != nil {
		exposure += math.Abs(pos.Amount) * pos.EntryPrice
	}
	if exposure > balance*float64(leverage) {
		return models.RiskAssessment{}, errs.RiskLimitf("margin",
			"exposure %.2f exceeds margin capacity %.2f for %s", exposure, balance*float64(leverage), o.Symbol)
	}

	// тренд волатильности здесь не считаем, индикаторы вне ядра
	summary := models.VolatilitySummary{Score: vol, Trend: models.TrendStable}
	assessment, err := g.margin.ClassifyRisk(ctx, o, pos, summary, leverage)
	if err != nil {
		return models.RiskAssessment{}, err
	}
	if balance > 0 && assessment.MaxLoss > balance*MaxLossFraction {
		return models.RiskAssessment{}, errs.RiskLimitf("loss",
			"estimated loss %.2f above %.0f%% of balance for %s", assessment.MaxLoss, MaxLossFraction*100, o.Symbol)
	}
	return assessment, nil
}

func (g *Gate) availableBalance(ctx context.Context) (float64, error) {
	balances, err := g.gw.Balances(ctx)
	if err != nil {
		return 0, err
	}
	for _, b := range balances {
		if b.Asset == g.settleAsset {
			return b.Available, nil
		}
	}
	return 0, errs.NoData("balance", g.settleAsset)
}
