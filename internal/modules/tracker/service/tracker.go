package service

import (
	"sync"
	"time"

	"risk_core/internal/errs"
	"risk_core/internal/models"
	"risk_core/pkg/logger"
)

// Subscriber получает копию ордера после каждого изменения.
type Subscriber func(models.Order)

type record struct {
	mu    sync.Mutex
	order models.Order
}

// Tracker — единственный владелец записей ордеров. Карта под своим
// RWMutex, каждая запись под своим мьютексом: апдейты разных ордеров
// друг друга не ждут.
type Tracker struct {
	mu       sync.RWMutex
	records  map[string]*record
	archiver Archiver
	onPurge  func(orderID string)

	subsMu sync.RWMutex
	subs   []Subscriber
}

func NewTracker() *Tracker {
	return &Tracker{records: make(map[string]*record)}
}

// Track вставляет либо целиком заменяет запись по id ордера.
func (t *Tracker) Track(o models.Order) error {
	if o.ID == "" {
		return errs.Validationf("order without id")
	}
	if o.Symbol == "" {
		return errs.Validationf("order %s without symbol", o.ID)
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	t.mu.Lock()
	if prev, ok := t.records[o.ID]; ok {
		// замена атомарная: запись меняется под её же мьютексом
		prev.mu.Lock()
		if o.CreatedAt.Equal(now) {
			o.CreatedAt = prev.order.CreatedAt
		}
		prev.order = o
		prev.mu.Unlock()
	} else {
		t.records[o.ID] = &record{order: o}
	}
	t.mu.Unlock()

	t.notify(o)
	return nil
}

// UpdateStatus меняет статус ордера.
func (t *Tracker) UpdateStatus(id string, status models.OrderStatus) (models.Order, error) {
	return t.update(id, func(o *models.Order) error {
		o.Status = status
		return nil
	})
}

// UpdateExecution — кумулятивный исполненный объём и цена последнего
// филла. Объём назад не ходит.
func (t *Tracker) UpdateExecution(id string, executedQty, price float64) (models.Order, error) {
	return t.update(id, func(o *models.Order) error {
		if executedQty < o.ExecutedQty {
			return errs.Validationf(
				"executed quantity for %s went backwards: %v -> %v", id, o.ExecutedQty, executedQty)
		}
		o.ExecutedQty = executedQty
		if price > 0 {
			o.Price = price
		}
		switch {
		case o.ExecutedQty >= o.Quantity && o.Quantity > 0:
			o.Status = models.StatusFilled
		case o.ExecutedQty > 0:
			o.Status = models.StatusPartiallyFilled
		}
		return nil
	})
}

// GetOrder — копия записи по id.
func (t *Tracker) GetOrder(id string) (models.Order, error) {
	t.mu.RLock()
	r, ok := t.records[id]
	t.mu.RUnlock()
	if !ok {
		return models.Order{}, errs.NotFound("order", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order, nil
}

// Subscribe регистрирует подписчика на изменения ордеров. Уведомления
// синхронные, в порядке изменений одной записи.
func (t *Tracker) Subscribe(fn Subscriber) {
	t.subsMu.Lock()
	defer t.subsMu.Unlock()
	t.subs = append(t.subs, fn)
}

func (t *Tracker) update(id string, mutate func(*models.Order) error) (models.Order, error) {
	t.mu.RLock()
	r, ok := t.records[id]
	t.mu.RUnlock()
	if !ok {
		return models.Order{}, errs.NotFound("order", id)
	}

	r.mu.Lock()
	if err := mutate(&r.order); err != nil {
		r.mu.Unlock()
		return models.Order{}, err
	}
	r.order.UpdatedAt = time.Now()
	snapshot := r.order
	r.mu.Unlock()

	t.notify(snapshot)
	return snapshot, nil
}

// notify — паника одного подписчика не валит остальных и не портит
// состояние трекера.
func (t *Tracker) notify(o models.Order) {
	t.subsMu.RLock()
	subs := make([]Subscriber, len(t.subs))
	copy(subs, t.subs)
	t.subsMu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("order subscriber panicked on %s: %v", o.ID, r)
				}
			}()
			fn(o)
		}()
	}
}
