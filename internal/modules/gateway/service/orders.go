package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"risk_core/internal/errs"
	"risk_core/internal/models"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// SubmitOrder отправляет ордер на биржу и возвращает запись с биржевым id.
// clOrdId генерим сами, чтобы ретрай одного и того же сабмита был различим.
func (c *Client) SubmitOrder(ctx context.Context, o *models.Order) (models.Order, error) {
	if o.Symbol == "" {
		return models.Order{}, errs.Validationf("submit: empty symbol")
	}
	if o.Quantity <= 0 {
		return models.Order{}, errs.Validationf("submit: quantity <= 0")
	}

	clOrdID := strings.ReplaceAll(uuid.New().String(), "-", "")
	body := map[string]string{
		"instId":  o.Symbol,
		"tdMode":  "cross",
		"side":    strings.ToLower(string(o.Side)),
		"ordType": strings.ToLower(string(o.Type)),
		"sz":      strconv.FormatFloat(o.Quantity, 'f', -1, 64),
		"clOrdId": clOrdID,
	}
	if o.Type == models.OrderLimit {
		body["px"] = strconv.FormatFloat(o.Price, 'f', -1, 64)
	}
	if o.PosSide != "" {
		body["posSide"] = o.PosSide
	}

	payload, err := sonic.Marshal(body)
	if err != nil {
		return models.Order{}, fmt.Errorf("SubmitOrder marshal: %w", err)
	}

	var resp orderAckResponse
	if err := c.request(ctx, http.MethodPost, "/api/v5/trade/order", payload, &resp); err != nil {
		return models.Order{}, marketErr("submit", o.Symbol, err)
	}
	if len(resp.Data) > 0 && resp.Data[0].SCode != "0" {
		return models.Order{}, marketErr("submit", o.Symbol,
			fmt.Errorf("rejected: sCode=%s sMsg=%s", resp.Data[0].SCode, resp.Data[0].SMsg))
	}
	if resp.Code != "0" {
		return models.Order{}, marketErr("submit", o.Symbol,
			fmt.Errorf("code=%s msg=%s", resp.Code, resp.Msg))
	}
	if len(resp.Data) == 0 || resp.Data[0].OrdID == "" {
		return models.Order{}, marketErr("submit", o.Symbol, fmt.Errorf("empty ordId"))
	}

	now := time.Now()
	placed := *o
	placed.ID = resp.Data[0].OrdID
	placed.ClientID = clOrdID
	placed.Status = models.StatusNew
	placed.CreatedAt = now
	placed.UpdatedAt = now
	return placed, nil
}

func (c *Client) CancelOrder(ctx context.Context, symbol, id string) error {
	payload, err := sonic.Marshal(map[string]string{"instId": symbol, "ordId": id})
	if err != nil {
		return fmt.Errorf("CancelOrder marshal: %w", err)
	}

	var resp ackResponse
	if err := c.request(ctx, http.MethodPost, "/api/v5/trade/cancel-order", payload, &resp); err != nil {
		return marketErr("cancel", symbol, err)
	}
	if len(resp.Data) > 0 && resp.Data[0].SCode != "0" {
		return marketErr("cancel", symbol,
			fmt.Errorf("sCode=%s sMsg=%s", resp.Data[0].SCode, resp.Data[0].SMsg))
	}
	if resp.Code != "0" {
		return marketErr("cancel", symbol, fmt.Errorf("code=%s msg=%s", resp.Code, resp.Msg))
	}
	return nil
}

func (c *Client) GetOrder(ctx context.Context, symbol, id string) (models.Order, error) {
	path := fmt.Sprintf("/api/v5/trade/order?instId=%s&ordId=%s",
		url.QueryEscape(symbol), url.QueryEscape(id))

	var resp ordersResponse
	if err := c.request(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return models.Order{}, marketErr("order", symbol, err)
	}
	if resp.Code != "0" {
		return models.Order{}, marketErr("order", symbol, fmt.Errorf("code=%s msg=%s", resp.Code, resp.Msg))
	}
	if len(resp.Data) == 0 {
		return models.Order{}, errs.NotFound("order", id)
	}
	return mapOrder(resp.Data[0]), nil
}

func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]models.Order, error) {
	path := "/api/v5/trade/orders-pending"
	if symbol != "" {
		path += "?instId=" + url.QueryEscape(symbol)
	}

	var resp ordersResponse
	if err := c.request(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, marketErr("open orders", symbol, err)
	}
	if resp.Code != "0" {
		return nil, marketErr("open orders", symbol, fmt.Errorf("code=%s msg=%s", resp.Code, resp.Msg))
	}

	out := make([]models.Order, 0, len(resp.Data))
	for _, d := range resp.Data {
		out = append(out, mapOrder(d))
	}
	return out, nil
}

func mapOrder(d orderDetail) models.Order {
	sz, _ := strconv.ParseFloat(d.Sz, 64)
	fill, _ := strconv.ParseFloat(d.AccFillSz, 64)
	px, _ := strconv.ParseFloat(d.Px, 64)
	if px == 0 {
		px, _ = strconv.ParseFloat(d.AvgPx, 64)
	}
	cMs, _ := strconv.ParseInt(d.CTime, 10, 64)
	uMs, _ := strconv.ParseInt(d.UTime, 10, 64)

	st := models.StatusNew
	switch d.State {
	case "partially_filled":
		st = models.StatusPartiallyFilled
	case "filled":
		st = models.StatusFilled
	case "canceled":
		st = models.StatusCanceled
	}

	typ := models.OrderMarket
	if d.OrdType == "limit" {
		typ = models.OrderLimit
	}

	return models.Order{
		ID:          d.OrdID,
		ClientID:    d.ClOrdID,
		Symbol:      d.InstID,
		Side:        models.Side(strings.ToUpper(d.Side)),
		Type:        typ,
		Quantity:    sz,
		ExecutedQty: fill,
		Price:       px,
		PosSide:     d.PosSide,
		Status:      st,
		CreatedAt:   time.UnixMilli(cMs),
		UpdatedAt:   time.UnixMilli(uMs),
	}
}
