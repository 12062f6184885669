// Package metrics — prometheus-счётчики ядра. Экспонируются на health-муксе.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OrdersApproved - ордера, прошедшие риск-гейт
var OrdersApproved = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "risk_core",
		Subsystem: "gate",
		Name:      "orders_approved_total",
		Help:      "Orders approved by the risk gate",
	},
)

// OrdersRejected - отказы риск-гейта по причинам (margin/volatility/leverage/loss)
var OrdersRejected = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "risk_core",
		Subsystem: "gate",
		Name:      "orders_rejected_total",
		Help:      "Orders rejected by the risk gate, by cause",
	},
	[]string{"cause"},
)

// FillsApplied - филлы, сложенные в леджер (повторные доставки не считаем)
var FillsApplied = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "risk_core",
		Subsystem: "ledger",
		Name:      "fills_applied_total",
		Help:      "Fill deltas folded into the position ledger",
	},
)

// GatewayErrors - ошибки походов на биржу по операциям
var GatewayErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "risk_core",
		Subsystem: "gateway",
		Name:      "errors_total",
		Help:      "Gateway call failures, by operation",
	},
	[]string{"op"},
)
