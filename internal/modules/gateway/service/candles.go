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

// RecentCandles — последние свечи OHLCV, от старых к новым.
func (c *Client) RecentCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	if limit <= 0 {
		limit = 100
	}
	path := fmt.Sprintf("/api/v5/market/candles?instId=%s&bar=%s&limit=%d",
		url.QueryEscape(symbol), url.QueryEscape(interval), limit)

	var resp candlesResponse
	if err := c.request(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, marketErr("candles", symbol, err)
	}
	if resp.Code != "0" {
		return nil, marketErr("candles", symbol, fmt.Errorf("code=%s msg=%s", resp.Code, resp.Msg))
	}
	if len(resp.Data) == 0 {
		return nil, marketErr("candles", symbol, fmt.Errorf("empty candles"))
	}

	// биржа отдаёт новые первыми — разворачиваем
	out := make([]models.Candle, 0, len(resp.Data))
	for i := len(resp.Data) - 1; i >= 0; i-- {
		row := resp.Data[i]
		if len(row) < 6 {
			continue
		}
		tsMs, _ := strconv.ParseInt(row[0], 10, 64)
		o, _ := strconv.ParseFloat(row[1], 64)
		h, _ := strconv.ParseFloat(row[2], 64)
		l, _ := strconv.ParseFloat(row[3], 64)
		cl, _ := strconv.ParseFloat(row[4], 64)
		v, _ := strconv.ParseFloat(row[5], 64)
		out = append(out, models.Candle{
			Ts: time.UnixMilli(tsMs), Open: o, High: h, Low: l, Close: cl, Volume: v,
		})
	}
	return out, nil
}
