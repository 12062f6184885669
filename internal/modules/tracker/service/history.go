package service

import (
	"context"
	"sort"
	"time"

	"risk_core/internal/models"
	"risk_core/pkg/logger"
)

// Archiver — куда складывать вычищаемые записи. Отсутствие архива —
// нормальный режим, тогда чистка просто удаляет.
type Archiver interface {
	InsertOrders(ctx context.Context, orders []models.Order) error
}

// SetArchiver включает архивирование при чистке истории.
func (t *Tracker) SetArchiver(a Archiver) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.archiver = a
}

// OnPurge регистрирует колбэк на списание записи: даёт другим модулям
// сбросить свой учёт по ордеру, которого в трекере больше нет.
func (t *Tracker) OnPurge(fn func(orderID string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPurge = fn
}

// OrderHistory — все записи по символу, свежие первыми.
func (t *Tracker) OrderHistory(symbol string) []models.Order {
	t.mu.RLock()
	out := make([]models.Order, 0, len(t.records))
	for _, r := range t.records {
		r.mu.Lock()
		o := r.order
		r.mu.Unlock()
		if o.Symbol == symbol {
			out = append(out, o)
		}
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// CleanupOldHistory удаляет завершённые записи старше cutoff; активные
// ордера не трогаем независимо от возраста. Возвращает число удалённых.
func (t *Tracker) CleanupOldHistory(ctx context.Context, retentionDays int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	t.mu.Lock()
	var stale []models.Order
	for _, r := range t.records {
		r.mu.Lock()
		o := r.order
		r.mu.Unlock()
		if o.Active() || !o.UpdatedAt.Before(cutoff) {
			continue
		}
		stale = append(stale, o)
	}
	archiver := t.archiver
	onPurge := t.onPurge
	t.mu.Unlock()

	if len(stale) == 0 {
		return 0, nil
	}
	// сначала архив, удаляем только то, что легло в архив
	if archiver != nil {
		if err := archiver.InsertOrders(ctx, stale); err != nil {
			return 0, err
		}
	}

	var purged []string
	t.mu.Lock()
	for _, o := range stale {
		r, ok := t.records[o.ID]
		if !ok {
			continue
		}
		// пока шёл архив, запись могла обновиться — такую оставляем
		r.mu.Lock()
		fresh := r.order.Active() || !r.order.UpdatedAt.Before(cutoff)
		r.mu.Unlock()
		if fresh {
			continue
		}
		delete(t.records, o.ID)
		purged = append(purged, o.ID)
	}
	t.mu.Unlock()

	if onPurge != nil {
		for _, id := range purged {
			onPurge(id)
		}
	}
	logger.Info("order history cleanup: removed %d records older than %d days", len(purged), retentionDays)
	return len(purged), nil
}
