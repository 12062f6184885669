package service

import (
	"context"
	"fmt"

	"github.com/opentracing/opentracing-go"

	"risk_core/internal/models"
	marginsvc "risk_core/internal/modules/margin/service"
	"risk_core/pkg/logger"
)

// AnalyzePortfolioRisk — агрегатный срез по всем открытым позициям:
// экспозиция, концентрация, диверсификация. Недоступная цена по символу
// не валит весь отчёт, считаем по цене входа с предупреждением.
func (g *Gate) AnalyzePortfolioRisk(ctx context.Context) (models.PortfolioRisk, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "riskgate.AnalyzePortfolioRisk")
	defer span.Finish()

	positions := g.ledger.AllPositions()
	out := models.PortfolioRisk{DiversificationScore: 1}
	if len(positions) == 0 {
		return out, nil
	}

	notionals := make(map[string]float64, len(positions))
	for i := range positions {
		p := &positions[i]
		price := p.EntryPrice
		if t, err := g.gw.BestPrice(ctx, p.Symbol); err == nil && t.Mid() > 0 {
			price = t.Mid()
		} else {
			logger.Warn("portfolio risk: no mark price for %s, using entry: %v", p.Symbol, err)
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("no mark price for %s, exposure from entry price", p.Symbol))
		}
		n := p.Notional(price)
		notionals[p.Symbol] += n
		out.TotalExposure += n
		out.NetExposure += p.Amount * price
	}

	if out.TotalExposure > 0 {
		herfindahl := 0.0
		for symbol, n := range notionals {
			share := n / out.TotalExposure
			herfindahl += share * share
			if share > out.Concentration {
				out.Concentration = share
			}
			if len(positions) > 1 && share > marginsvc.HighPositionRatio {
				out.FlaggedSymbols = append(out.FlaggedSymbols, symbol)
			}
		}
		out.DiversificationScore = 1 - herfindahl
	}

	if len(out.FlaggedSymbols) > 0 {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("concentration above %.0f%% in %d symbol(s)", marginsvc.HighPositionRatio*100, len(out.FlaggedSymbols)))
	}
	span.SetTag("positions", len(positions))
	return out, nil
}
