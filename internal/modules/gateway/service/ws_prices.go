package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"risk_core/internal/models"
	"risk_core/pkg/logger"
)

// StreamTickers — один WebSocket на весь watchlist, канал tickers.
// Держит кеш лучших цен тёплым, чтобы BestPrice не ходил в REST на каждый
// чих риск-гейта. Реконнект с паузой в секунду, keepalive ping каждые 20s.
func (c *Client) StreamTickers(ctx context.Context, symbols []string) {
	if len(symbols) == 0 || c.cfg.Gateway.WSURL == "" {
		return
	}

	args := make([]map[string]string, 0, len(symbols))
	for _, s := range symbols {
		args = append(args, map[string]string{
			"channel": "tickers",
			"instId":  s,
		})
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		logger.Info("[WS] connect tickers, %d symbols", len(symbols))
		conn, _, err := c.wsDialer.Dial(c.cfg.Gateway.WSURL, nil)
		if err != nil {
			logger.Error("[WS] dial: %v", err)
			time.Sleep(time.Second)
			continue
		}

		if err := conn.WriteJSON(map[string]any{"op": "subscribe", "args": args}); err != nil {
			logger.Error("[WS] subscribe: %v", err)
			_ = conn.Close()
			continue
		}
		if c.health != nil {
			c.health.SetWSConnected(true)
		}

		// keepalive ping — иначе биржа рвёт соединение
		stopPing := make(chan struct{})
		go func() {
			t := time.NewTicker(20 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-stopPing:
					return
				case <-t.C:
					_ = conn.WriteJSON(map[string]string{"op": "ping"})
				}
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				logger.Error("[WS] read: %v", err)
				_ = conn.Close()
				close(stopPing)
				if c.health != nil {
					c.health.SetWSConnected(false)
				}
				break
			}

			var frame struct {
				Arg struct {
					Channel string `json:"channel"`
					InstID  string `json:"instId"`
				} `json:"arg"`
				Data []struct {
					InstID string `json:"instId"`
					BidPx  string `json:"bidPx"`
					AskPx  string `json:"askPx"`
					Ts     string `json:"ts"`
				} `json:"data"`
			}
			if err := json.Unmarshal(msg, &frame); err != nil {
				continue
			}
			if frame.Arg.Channel != "tickers" || len(frame.Data) == 0 {
				continue
			}

			now := time.Now()
			for _, d := range frame.Data {
				bid, _ := strconv.ParseFloat(d.BidPx, 64)
				ask, _ := strconv.ParseFloat(d.AskPx, 64)
				if bid <= 0 || ask <= 0 {
					continue
				}
				c.storePrice(models.Ticker{Symbol: d.InstID, Bid: bid, Ask: ask, At: now})
			}
			if c.health != nil {
				c.health.TouchTick(now)
			}
		}
	}
}
