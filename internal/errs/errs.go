// Package errs — доменные виды ошибок ядра. Транспортные ошибки шлюза
// никогда не утекают наружу как есть, каждая операция переводит их сюда.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError — кривой вход: отрицательное количество, плечо вне
// [1,125], пустой символ и т.п.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "validation: " + e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// MarketDataError — нет цены/статистики/баланса либо отвалился шлюз.
type MarketDataError struct {
	Op     string
	Symbol string
	Err    error
}

func (e *MarketDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("market data: %s %s: %v", e.Op, e.Symbol, e.Err)
	}
	return fmt.Sprintf("market data: no %s data for %s", e.Op, e.Symbol)
}

func (e *MarketDataError) Unwrap() error { return e.Err }

// MarketData оборачивает транспортную ошибку шлюза.
func MarketData(op, symbol string, err error) error {
	return &MarketDataError{Op: op, Symbol: symbol, Err: err}
}

// NoData — данных нет, хотя шлюз ответил (символ не в фиде и т.п.).
func NoData(op, symbol string) error {
	return &MarketDataError{Op: op, Symbol: symbol}
}

// RiskLimitError — вход корректный, но небезопасный: пробой лимита маржи,
// волатильности, плеча или экспозиции. Reason различает причину отказа.
type RiskLimitError struct {
	Reason string // "margin" | "volatility" | "leverage" | "loss"
	Msg    string
}

func (e *RiskLimitError) Error() string { return "risk limit [" + e.Reason + "]: " + e.Msg }

func RiskLimitf(reason, format string, args ...any) error {
	return &RiskLimitError{Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError — неизвестный ордер или отсутствующая позиция.
type NotFoundError struct {
	Kind string // "order" | "position"
	ID   string
}

func (e *NotFoundError) Error() string { return e.Kind + " not found: " + e.ID }

func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsMarketData(err error) bool {
	var e *MarketDataError
	return errors.As(err, &e)
}

func IsRiskLimit(err error) bool {
	var e *RiskLimitError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}
