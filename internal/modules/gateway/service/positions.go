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

// Positions — позиции по данным биржи. symbol == "" означает все.
// Маппим строки ответа в упрощённую структуру, как и всё остальное:
// знак Amount получаем из posSide для hedge-аккаунтов.
func (c *Client) Positions(ctx context.Context, symbol string) ([]models.Position, error) {
	path := "/api/v5/account/positions"
	if symbol != "" {
		path += "?instId=" + url.QueryEscape(symbol)
	}

	var resp positionsResponse
	if err := c.request(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, marketErr("positions", symbol, err)
	}
	if resp.Code != "0" {
		return nil, marketErr("positions", symbol, fmt.Errorf("code=%s msg=%s", resp.Code, resp.Msg))
	}

	out := make([]models.Position, 0, len(resp.Data))
	for _, d := range resp.Data {
		pos, _ := strconv.ParseFloat(d.Pos, 64)
		if pos == 0 {
			continue
		}
		avgPx, _ := strconv.ParseFloat(d.AvgPx, 64)
		lev, _ := strconv.Atoi(d.Lever)
		margin, _ := strconv.ParseFloat(d.Margin, 64)
		liqPx, _ := strconv.ParseFloat(d.LiqPx, 64)
		upl, _ := strconv.ParseFloat(d.Upl, 64)
		uTimeMs, _ := strconv.ParseInt(d.UTime, 10, 64)

		amount := pos
		if d.PosSide == "short" && amount > 0 {
			amount = -amount
		}

		mode := models.MarginCross
		if d.MgnMode == "isolated" {
			mode = models.MarginIsolated
		}

		out = append(out, models.Position{
			Symbol:           d.InstID,
			Amount:           amount,
			EntryPrice:       avgPx,
			Leverage:         lev,
			MarginMode:       mode,
			IsolatedMargin:   margin,
			LiquidationPrice: liqPx,
			UnrealizedPnl:    upl,
			UpdatedAt:        time.UnixMilli(uTimeMs),
		})
	}
	return out, nil
}
