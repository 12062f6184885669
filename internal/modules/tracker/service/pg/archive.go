package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"risk_core/internal/models"
	"risk_core/pkg/db"
)

// Archive — холодное хранилище завершённых ордеров.
type Archive struct {
	txManager db.TxManager
}

func NewArchive(txManager db.TxManager) *Archive {
	return &Archive{txManager: txManager}
}

const insertOrderSQL = `
INSERT INTO order_archive
    (id, client_id, symbol, side, type, quantity, executed_qty, price, pos_side, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO NOTHING`

// InsertOrders пишет пачку записей одной транзакцией.
func (a *Archive) InsertOrders(ctx context.Context, orders []models.Order) (err error) {
	defer func() {
		if err != nil {
			err = errors.Wrap(err, "Archive.InsertOrders")
		}
	}()

	return a.txManager.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, o := range orders {
			batch.Queue(insertOrderSQL,
				o.ID, o.ClientID, o.Symbol, string(o.Side), string(o.Type),
				o.Quantity, o.ExecutedQty, o.Price, o.PosSide, string(o.Status),
				o.CreatedAt, o.UpdatedAt)
		}
		return tx.SendBatch(ctxTx, batch).Close()
	})
}
