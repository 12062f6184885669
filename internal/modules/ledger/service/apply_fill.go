package service

import (
	"math"
	"time"

	"risk_core/internal/errs"
	"risk_core/internal/metrics"
	"risk_core/internal/models"
	"risk_core/pkg/logger"
)

// ниже этого порога нетто считаем нулём: хвосты float64 после
// серии частичных закрытий не должны оставлять "пыль" в позиции
const flatEps = 1e-12

// ApplyFill складывает исполнение ордера в позицию.
//
// Идемпотентность: на каждый orderID помним, сколько исполненного объёма
// уже учтено, и складываем только дельту от кумулятивного ExecutedQty.
// Повторная доставка того же апдейта даёт нулевую дельту и не меняет
// ничего. Это главное свойство корректности всего ядра.
func (l *Ledger) ApplyFill(o *models.Order) (models.Position, error) {
	if o == nil || o.ID == "" {
		return models.Position{}, errs.Validationf("fill without order id")
	}
	if o.Symbol == "" {
		return models.Position{}, errs.Validationf("fill without symbol")
	}
	if o.Side != models.SideBuy && o.Side != models.SideSell {
		return models.Position{}, errs.Validationf("unknown side %q", o.Side)
	}
	if o.ExecutedQty < 0 {
		return models.Position{}, errs.Validationf("negative executed quantity")
	}
	if o.ExecutedQty > 0 && o.Price <= 0 {
		return models.Position{}, errs.Validationf("fill for %s without price", o.Symbol)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	delta := o.ExecutedQty - l.consumed[o.ID]
	if delta <= 0 {
		// уже учтено — отдаём текущее состояние как есть
		return l.snapshotLocked(o.Symbol), nil
	}

	var pos models.Position
	var err error
	if l.opts.HedgeMode {
		pos, err = l.applyHedgeLocked(o, delta)
	} else {
		pos, err = l.applyNettedLocked(o, delta)
	}
	if err != nil {
		return models.Position{}, err
	}

	// объём помечаем учтённым только после успешного применения:
	// отбитый валидацией филл придёт исправленным под тем же id,
	// и его дельта должна остаться живой
	l.consumed[o.ID] = o.ExecutedQty
	metrics.FillsApplied.Inc()
	return pos, nil
}

// applyNettedLocked — one-way режим: один знаковый объём на символ.
func (l *Ledger) applyNettedLocked(o *models.Order, delta float64) (models.Position, error) {
	signed := delta
	if o.Side == models.SideSell {
		signed = -delta
	}
	now := time.Now()

	pos, ok := l.positions[o.Symbol]
	if !ok || pos.Amount == 0 {
		// первый филл открывает позицию по цене исполнения
		pos = &models.Position{
			Symbol:     o.Symbol,
			Amount:     signed,
			EntryPrice: o.Price,
			Leverage:   l.opts.DefaultLeverage,
			MarginMode: models.MarginCross,
			UpdatedAt:  now,
		}
		l.positions[o.Symbol] = pos
		return *pos, nil
	}

	sameSide := (pos.Amount > 0) == (signed > 0)
	if sameSide {
		// доливка: вход — средневзвешенная по размеру
		oldAbs := math.Abs(pos.Amount)
		pos.EntryPrice = (oldAbs*pos.EntryPrice + delta*o.Price) / (oldAbs + delta)
		pos.Amount += signed
		pos.UpdatedAt = now
		return *pos, nil
	}

	newAmount := pos.Amount + signed
	closed := math.Min(math.Abs(pos.Amount), delta)
	realized := (o.Price - pos.EntryPrice) * closed
	if pos.Amount < 0 {
		realized = -realized
	}
	logger.Info("[%s] closed %.8f, realized pnl %.8f", o.Symbol, closed, realized)

	switch {
	case math.Abs(newAmount) < flatEps:
		// полное закрытие
		delete(l.positions, o.Symbol)
		return models.Position{Symbol: o.Symbol, UpdatedAt: now}, nil

	case (newAmount > 0) != (pos.Amount > 0):
		// переворот: перехлёст открывает новую позицию по цене филла,
		// старый вход с ней не смешивается
		pos.Amount = newAmount
		pos.EntryPrice = o.Price
		pos.UpdatedAt = now
		return *pos, nil

	default:
		// частичное закрытие: размер меньше, вход прежний
		pos.Amount = newAmount
		pos.UpdatedAt = now
		return *pos, nil
	}
}

// applyHedgeLocked — hedge-режим: лонг и шорт живут независимо,
// переворотов внутри ноги нет, базы не смешиваются.
func (l *Ledger) applyHedgeLocked(o *models.Order, delta float64) (models.Position, error) {
	if o.PosSide != "long" && o.PosSide != "short" {
		return models.Position{}, errs.Validationf("hedge mode fill for %s without posSide", o.Symbol)
	}
	now := time.Now()

	// новую запись кладём в карту только после валидаций: отбитый
	// филл не должен оставлять пустой след
	h, ok := l.hedged[o.Symbol]
	if !ok {
		h = &models.HedgePosition{Symbol: o.Symbol, Leverage: l.opts.DefaultLeverage}
	}

	opening := (o.PosSide == "long" && o.Side == models.SideBuy) ||
		(o.PosSide == "short" && o.Side == models.SideSell)

	if o.PosSide == "long" {
		if opening {
			h.LongEntry = (h.LongAmount*h.LongEntry + delta*o.Price) / (h.LongAmount + delta)
			h.LongAmount += delta
		} else {
			if delta > h.LongAmount+flatEps {
				return models.Position{}, errs.Validationf(
					"close %.8f exceeds long leg %.8f for %s", delta, h.LongAmount, o.Symbol)
			}
			h.LongAmount -= delta
			if h.LongAmount < flatEps {
				h.LongAmount = 0
				h.LongEntry = 0
			}
		}
	} else {
		short := -h.ShortAmount // положительный размер ноги
		if opening {
			h.ShortEntry = (short*h.ShortEntry + delta*o.Price) / (short + delta)
			h.ShortAmount -= delta
		} else {
			if delta > short+flatEps {
				return models.Position{}, errs.Validationf(
					"close %.8f exceeds short leg %.8f for %s", delta, short, o.Symbol)
			}
			h.ShortAmount += delta
			if -h.ShortAmount < flatEps {
				h.ShortAmount = 0
				h.ShortEntry = 0
			}
		}
	}
	h.UpdatedAt = now

	if h.LongAmount == 0 && h.ShortAmount == 0 {
		delete(l.hedged, o.Symbol)
		return models.Position{Symbol: o.Symbol, UpdatedAt: now}, nil
	}
	l.hedged[o.Symbol] = h
	return l.snapshotLocked(o.Symbol), nil
}

// snapshotLocked — текущее нетто по символу; пустая Position, если flat.
func (l *Ledger) snapshotLocked(symbol string) models.Position {
	if l.opts.HedgeMode {
		if h, ok := l.hedged[symbol]; ok {
			entry := h.LongEntry
			if -h.ShortAmount > h.LongAmount {
				entry = h.ShortEntry
			}
			return models.Position{
				Symbol:     symbol,
				Amount:     h.NetAmount(),
				EntryPrice: entry,
				Leverage:   h.Leverage,
				UpdatedAt:  h.UpdatedAt,
			}
		}
		return models.Position{Symbol: symbol}
	}
	if p, ok := l.positions[symbol]; ok {
		return *p
	}
	return models.Position{Symbol: symbol}
}
