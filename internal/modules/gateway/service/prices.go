package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"risk_core/internal/models"
)

// BestPrice — лучшие bid/ask. Сначала кеш от ws-фида, REST только если
// кеш протух или символа в подписке нет.
func (c *Client) BestPrice(ctx context.Context, symbol string) (models.Ticker, error) {
	if t, ok := c.cachedPrice(symbol); ok {
		return t, nil
	}

	var resp tickersResponse
	path := "/api/v5/market/ticker?instId=" + url.QueryEscape(symbol)
	if err := c.request(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return models.Ticker{}, marketErr("price", symbol, err)
	}
	if resp.Code != "0" {
		return models.Ticker{}, marketErr("price", symbol, fmt.Errorf("code=%s msg=%s", resp.Code, resp.Msg))
	}
	if len(resp.Data) == 0 {
		return models.Ticker{}, marketErr("price", symbol, fmt.Errorf("empty ticker data"))
	}

	d := resp.Data[0]
	bid, _ := strconv.ParseFloat(d.BidPx, 64)
	ask, _ := strconv.ParseFloat(d.AskPx, 64)
	if bid <= 0 || ask <= 0 {
		return models.Ticker{}, marketErr("price", symbol, fmt.Errorf("zero bid/ask"))
	}

	t := models.Ticker{Symbol: d.InstID, Bid: bid, Ask: ask, At: time.Now()}
	c.storePrice(t)
	return t, nil
}

// AllBestPrices — тикеры по всем своп-инструментам.
func (c *Client) AllBestPrices(ctx context.Context) ([]models.Ticker, error) {
	var resp tickersResponse
	if err := c.request(ctx, http.MethodGet, "/api/v5/market/tickers?instType=SWAP", nil, &resp); err != nil {
		return nil, marketErr("prices", "*", err)
	}
	if resp.Code != "0" {
		return nil, marketErr("prices", "*", fmt.Errorf("code=%s msg=%s", resp.Code, resp.Msg))
	}

	out := make([]models.Ticker, 0, len(resp.Data))
	now := time.Now()
	for _, d := range resp.Data {
		bid, _ := strconv.ParseFloat(d.BidPx, 64)
		ask, _ := strconv.ParseFloat(d.AskPx, 64)
		if bid <= 0 || ask <= 0 {
			continue
		}
		out = append(out, models.Ticker{Symbol: d.InstID, Bid: bid, Ask: ask, At: now})
	}
	return out, nil
}

func (c *Client) cachedPrice(symbol string) (models.Ticker, bool) {
	c.priceMu.RLock()
	t, ok := c.prices[symbol]
	c.priceMu.RUnlock()
	if !ok || c.priceTTL <= 0 || time.Since(t.At) > c.priceTTL {
		return models.Ticker{}, false
	}
	return t, true
}

func (c *Client) storePrice(t models.Ticker) {
	c.priceMu.Lock()
	c.prices[t.Symbol] = t
	c.priceMu.Unlock()
}
