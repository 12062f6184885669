package models

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

type VolTrend string

const (
	TrendIncreasing VolTrend = "INCREASING"
	TrendDecreasing VolTrend = "DECREASING"
	TrendStable     VolTrend = "STABLE"
)

// VolatilitySummary — готовая сводка волатильности (индикаторы считаются
// снаружи, сюда приходит только результат).
type VolatilitySummary struct {
	Score float64 // реализованная волатильность как доля (0.05 = 5%)
	Trend VolTrend
}

// RiskAssessment — эфемерный вердикт по риску. CurrentRisk ∈ [0,1],
// всё что выше 0.5 считаем повышенным.
type RiskAssessment struct {
	MaxLoss         float64
	CurrentRisk     float64
	Warnings        []string
	Recommendations []string
}

func (r RiskAssessment) Elevated() bool { return r.CurrentRisk > 0.5 }

// MarginRequirement — требования по марже для одного ордера.
type MarginRequirement struct {
	InitialMargin     float64
	MaintenanceMargin float64
	MarginRatio       float64 // maintenance / initial
}

// MarginValidationResult — итог проверки маржи по портфелю.
type MarginValidationResult struct {
	RequiredMargin  float64
	AvailableMargin float64
	MarginRatio     float64 // required / available
	IsValid         bool
	Warnings        []string
}

// PositionRiskReport — риск ликвидации по позиции. Финансовые значения
// наружу уходят десятичными строками, чтобы отчёты не плыли на float64.
type PositionRiskReport struct {
	Symbol          string
	LiquidationRisk RiskLevel
	MarginRatio     string
	UnrealizedPnl   string
}

// LeverageAdvice — рекомендация по плечу.
type LeverageAdvice struct {
	MaxLeverage int
	Confidence  float64
	Reasoning   []string
}

// PositionAssessment — оценка позиции риск-гейтом.
type PositionAssessment struct {
	Symbol           string
	Level            RiskLevel
	Danger           bool // до ликвидации < 10% хода цены
	MarkPrice        float64
	LiquidationPrice float64
	LiquidationDist  float64
	LiquidationPct   float64 // дистанция в процентах от марки
	Warnings         []string
}

// PortfolioRisk — агрегат по всем позициям.
type PortfolioRisk struct {
	TotalExposure        float64
	NetExposure          float64
	Concentration        float64 // доля крупнейшей позиции
	DiversificationScore float64 // 1 - Герфиндаль, 0 = всё в одном символе
	FlaggedSymbols       []string
	Warnings             []string
}

// SizeAdvice — рекомендация по размеру позиции под заданный денежный риск.
type SizeAdvice struct {
	Quantity     float64
	StopDistance float64
	StopPrice    float64
	Leverage     int
	RiskAmount   float64 // сколько денег теряем при сработке стопа
}
