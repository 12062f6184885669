package models

import "time"

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type OrderType string

const (
	OrderMarket OrderType = "MARKET"
	OrderLimit  OrderType = "LIMIT"
)

type OrderStatus string

const (
	StatusNew             OrderStatus = "NEW"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusFilled          OrderStatus = "FILLED"
	StatusCanceled        OrderStatus = "CANCELED"
	StatusRejected        OrderStatus = "REJECTED"
	StatusExpired         OrderStatus = "EXPIRED"
)

// Order — запись жизненного цикла ордера. Владелец — трекер,
// леджер читает её только как вход для ApplyFill.
type Order struct {
	ID          string
	ClientID    string
	Symbol      string
	Side        Side
	Type        OrderType
	Quantity    float64 // запрошенное количество
	ExecutedQty float64 // суммарно исполнено (кумулятив)
	Price       float64 // 0 для рыночных, тогда берём best bid/ask
	PosSide     string  // "long"/"short" только в hedge-режиме, иначе пусто
	Status      OrderStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Active — ордер ещё может получить новые филлы.
func (o *Order) Active() bool {
	return o.Status == StatusNew || o.Status == StatusPartiallyFilled
}
