package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"risk_core/internal/models"
)

// Stats24h — суточная статистика. PriceChangePct считаем от open24h,
// биржа готового процента не отдаёт.
func (c *Client) Stats24h(ctx context.Context, symbol string) (models.Stats24h, error) {
	var resp statsResponse
	path := "/api/v5/market/ticker?instId=" + url.QueryEscape(symbol)
	if err := c.request(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return models.Stats24h{}, marketErr("stats", symbol, err)
	}
	if resp.Code != "0" {
		return models.Stats24h{}, marketErr("stats", symbol, fmt.Errorf("code=%s msg=%s", resp.Code, resp.Msg))
	}
	if len(resp.Data) == 0 {
		return models.Stats24h{}, marketErr("stats", symbol, fmt.Errorf("empty stats data"))
	}

	d := resp.Data[0]
	last, _ := strconv.ParseFloat(d.Last, 64)
	open, _ := strconv.ParseFloat(d.Open24h, 64)
	high, _ := strconv.ParseFloat(d.High24h, 64)
	low, _ := strconv.ParseFloat(d.Low24h, 64)
	vol, _ := strconv.ParseFloat(d.Vol24h, 64)

	if last <= 0 {
		return models.Stats24h{}, marketErr("stats", symbol, fmt.Errorf("zero last price"))
	}

	pct := 0.0
	if open > 0 {
		pct = (last - open) / open * 100
	}

	return models.Stats24h{
		Symbol:         d.InstID,
		LastPrice:      last,
		PriceChangePct: pct,
		High:           high,
		Low:            low,
		Volume:         vol,
	}, nil
}
