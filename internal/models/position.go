package models

import "time"

type MarginMode string

const (
	MarginIsolated MarginMode = "isolated"
	MarginCross    MarginMode = "cross"
)

type PosSide string

const (
	PosLong  PosSide = "LONG"
	PosShort PosSide = "SHORT"
	PosFlat  PosSide = "FLAT"
)

// Position — нетто-экспозиция по символу в one-way режиме.
// Amount со знаком: >0 лонг, <0 шорт. Amount == 0 ⇔ позиции нет.
type Position struct {
	Symbol           string
	Amount           float64
	EntryPrice       float64 // средняя цена входа, взвешенная по размеру
	Leverage         int
	MarginMode       MarginMode
	IsolatedMargin   float64
	UnrealizedPnl    float64
	LiquidationPrice float64
	UpdatedAt        time.Time
}

func (p *Position) Side() PosSide {
	switch {
	case p.Amount > 0:
		return PosLong
	case p.Amount < 0:
		return PosShort
	}
	return PosFlat
}

// Notional — |размер| × цена.
func (p *Position) Notional(price float64) float64 {
	amt := p.Amount
	if amt < 0 {
		amt = -amt
	}
	return amt * price
}

// HedgePosition — парный учёт в hedge-режиме: лонг и шорт живут
// независимо, их базы никогда не смешиваются. ShortAmount хранится
// отрицательным, наружу отдаётся только нетто.
type HedgePosition struct {
	Symbol      string
	LongAmount  float64
	LongEntry   float64
	ShortAmount float64 // <= 0
	ShortEntry  float64
	Leverage    int
	UpdatedAt   time.Time
}

func (h *HedgePosition) NetAmount() float64 {
	return h.LongAmount + h.ShortAmount
}
