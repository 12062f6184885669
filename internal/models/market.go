package models

import "time"

// Ticker — лучшие bid/ask по символу.
type Ticker struct {
	Symbol string
	Bid    float64
	Ask    float64
	At     time.Time
}

// Mid — средняя цена между bid и ask.
func (t Ticker) Mid() float64 {
	return (t.Bid + t.Ask) / 2
}

// Stats24h — суточная статистика с биржи.
type Stats24h struct {
	Symbol         string
	LastPrice      float64
	PriceChangePct float64 // в процентах, как отдаёт биржа (например -3.42)
	High           float64
	Low            float64
	Volume         float64
}

// Volatility — |изменение за сутки| как доля (0.05 = 5%).
func (s Stats24h) Volatility() float64 {
	v := s.PriceChangePct / 100
	if v < 0 {
		v = -v
	}
	return v
}

type Candle struct {
	Ts     time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

type Balance struct {
	Asset     string
	Available float64
}
