package service

import (
	"context"
	"errors"

	"github.com/opentracing/opentracing-go"

	"risk_core/internal/errs"
	"risk_core/internal/metrics"
	"risk_core/internal/models"
	"risk_core/pkg/logger"
)

// PlaceOrder — единственный путь ордера на биржу: проверка риска,
// отправка, регистрация в трекере.
func (g *Gate) PlaceOrder(ctx context.Context, o *models.Order) (models.Order, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "riskgate.PlaceOrder")
	defer span.Finish()

	assessment, err := g.CheckOrderRisk(ctx, o)
	if err != nil {
		metrics.OrdersRejected.WithLabelValues(rejectCause(err)).Inc()
		if g.notifier != nil && errs.IsRiskLimit(err) {
			g.notifier.Sendf("🚫 ордер %s %s %v отклонён: %v", o.Side, o.Symbol, o.Quantity, err)
		}
		return models.Order{}, err
	}
	if assessment.Elevated() {
		logger.Warn("placing order for %s with elevated risk %.2f: %v",
			o.Symbol, assessment.CurrentRisk, assessment.Warnings)
	}

	placed, err := g.gw.SubmitOrder(ctx, o)
	if err != nil {
		metrics.OrdersRejected.WithLabelValues("gateway").Inc()
		return models.Order{}, err
	}
	metrics.OrdersApproved.Inc()

	if err := g.tracker.Track(placed); err != nil {
		// ордер уже на бирже, потерять его из учёта нельзя
		logger.Error("order %s placed but not tracked: %v", placed.ID, err)
	}
	return placed, nil
}

func rejectCause(err error) string {
	var rl *errs.RiskLimitError
	switch {
	case errors.As(err, &rl):
		return rl.Reason
	case errs.IsValidation(err):
		return "validation"
	case errs.IsMarketData(err):
		return "market_data"
	}
	return "other"
}
