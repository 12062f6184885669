package service

import (
	"context"
	"sync"

	"risk_core/internal/errs"
	"risk_core/internal/models"
)

// Gateway — возможности биржи, которые нужны леджеру.
type Gateway interface {
	BestPrice(ctx context.Context, symbol string) (models.Ticker, error)
	Stats24h(ctx context.Context, symbol string) (models.Stats24h, error)
	Balances(ctx context.Context) ([]models.Balance, error)
	SetLeverage(ctx context.Context, symbol string, leverage int) error
	SetMarginType(ctx context.Context, symbol string, mode models.MarginMode) error
}

type Options struct {
	SettleAsset     string
	DefaultLeverage int
	HedgeMode       bool
}

// Ledger — единственный владелец состояния позиций. Все мутации — один
// непрерывный read-modify-write под мьютексом: внешние вызовы (цены,
// балансы) резолвим ДО захвата, между мутациями одной записи не ждём.
type Ledger struct {
	gw   Gateway
	opts Options

	mu        sync.RWMutex
	positions map[string]*models.Position      // one-way: нетто по символу
	hedged    map[string]*models.HedgePosition // hedge: парные лонг/шорт
	consumed  map[string]float64               // orderID -> уже учтённый исполненный объём
}

func NewLedger(gw Gateway, opts Options) *Ledger {
	if opts.SettleAsset == "" {
		opts.SettleAsset = "USDT"
	}
	if opts.DefaultLeverage <= 0 {
		opts.DefaultLeverage = 1
	}
	l := &Ledger{
		gw:       gw,
		opts:     opts,
		consumed: make(map[string]float64),
	}
	// режимы взаимоисключающие: заводим ровно один автомат состояний
	if opts.HedgeMode {
		l.hedged = make(map[string]*models.HedgePosition)
	} else {
		l.positions = make(map[string]*models.Position)
	}
	return l
}

// CurrentPosition — позиция по символу. Нулевая экспозиция = позиции нет.
func (l *Ledger) CurrentPosition(symbol string) (models.Position, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.opts.HedgeMode {
		h, ok := l.hedged[symbol]
		if !ok || h.NetAmount() == 0 {
			return models.Position{}, errs.NotFound("position", symbol)
		}
		// наружу — только нетто; базы лонга и шорта не смешиваем,
		// ценой входа отдаём сторону с большей ногой
		entry := h.LongEntry
		if -h.ShortAmount > h.LongAmount {
			entry = h.ShortEntry
		}
		return models.Position{
			Symbol:     h.Symbol,
			Amount:     h.NetAmount(),
			EntryPrice: entry,
			Leverage:   h.Leverage,
			UpdatedAt:  h.UpdatedAt,
		}, nil
	}

	p, ok := l.positions[symbol]
	if !ok || p.Amount == 0 {
		return models.Position{}, errs.NotFound("position", symbol)
	}
	return *p, nil
}

// HedgePosition — парная запись в hedge-режиме (long/short/net).
func (l *Ledger) HedgePosition(symbol string) (models.HedgePosition, error) {
	if !l.opts.HedgeMode {
		return models.HedgePosition{}, errs.Validationf("ledger is not in hedge mode")
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	h, ok := l.hedged[symbol]
	if !ok || (h.LongAmount == 0 && h.ShortAmount == 0) {
		return models.HedgePosition{}, errs.NotFound("position", symbol)
	}
	return *h, nil
}

// AllPositions — снапшот открытых позиций (для портфельного риска).
func (l *Ledger) AllPositions() []models.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.opts.HedgeMode {
		out := make([]models.Position, 0, len(l.hedged))
		for _, h := range l.hedged {
			if h.NetAmount() == 0 {
				continue
			}
			entry := h.LongEntry
			if -h.ShortAmount > h.LongAmount {
				entry = h.ShortEntry
			}
			out = append(out, models.Position{
				Symbol:     h.Symbol,
				Amount:     h.NetAmount(),
				EntryPrice: entry,
				Leverage:   h.Leverage,
				UpdatedAt:  h.UpdatedAt,
			})
		}
		return out
	}

	out := make([]models.Position, 0, len(l.positions))
	for _, p := range l.positions {
		if p.Amount == 0 {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// ForgetOrder выбрасывает учёт исполненного объёма по ордеру. Зовётся,
// когда трекер списывает запись в архив: новых филлов под этим id уже
// не будет, держать его дальше — утечка.
func (l *Ledger) ForgetOrder(orderID string) {
	l.mu.Lock()
	delete(l.consumed, orderID)
	l.mu.Unlock()
}

// availableBalance — доступный баланс в валюте расчётов.
func (l *Ledger) availableBalance(ctx context.Context) (float64, error) {
	balances, err := l.gw.Balances(ctx)
	if err != nil {
		return 0, err
	}
	for _, b := range balances {
		if b.Asset == l.opts.SettleAsset {
			return b.Available, nil
		}
	}
	return 0, errs.NoData("balance", l.opts.SettleAsset)
}

// leverageFor — плечо позиции, либо дефолт, если позиции ещё нет.
func (l *Ledger) leverageFor(symbol string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.opts.HedgeMode {
		if h, ok := l.hedged[symbol]; ok && h.Leverage > 0 {
			return h.Leverage
		}
		return l.opts.DefaultLeverage
	}
	if p, ok := l.positions[symbol]; ok && p.Leverage > 0 {
		return p.Leverage
	}
	return l.opts.DefaultLeverage
}
