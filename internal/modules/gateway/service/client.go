package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"risk_core/internal/errs"
	"risk_core/internal/metrics"
	"risk_core/internal/models"
	"risk_core/internal/modules/config"

	"github.com/gorilla/websocket"
)

// Health — куда репортим состояние ws-фида (реализует health/service.State).
type Health interface {
	SetWSConnected(v bool)
	TouchTick(t time.Time)
}

// Client — REST+WS клиент биржи. Единственное место, где живут сырые
// транспортные ошибки: наружу всё уходит как errs.MarketDataError.
type Client struct {
	cfg *config.Config

	http     *http.Client
	wsDialer *websocket.Dialer
	health   Health

	baseURL   string
	apiKey    string
	apiSecret string
	passph    string

	// кеш лучших цен от ws-фида; REST — только фолбэк
	priceMu  sync.RWMutex
	prices   map[string]models.Ticker
	priceTTL time.Duration
}

func NewClient(cfg *config.Config, health Health) *Client {
	return &Client{
		cfg:       cfg,
		wsDialer:  &websocket.Dialer{},
		http:      &http.Client{Timeout: 10 * time.Second},
		health:    health,
		baseURL:   cfg.Gateway.BaseURL,
		apiKey:    cfg.Gateway.APIKey,
		apiSecret: cfg.Gateway.APISecret,
		passph:    cfg.Gateway.Passphrase,
		prices:    make(map[string]models.Ticker),
		priceTTL:  cfg.PriceCacheTTL,
	}
}

func (c *Client) sign(ts, method, requestPath, body string) string {
	msg := ts + strings.ToUpper(method) + requestPath + body
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(msg))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// request выполняет подписанный запрос и декодирует конверт ответа в out.
// out — структура с полями Code/Msg, как у всех ручек биржи.
func (c *Client) request(ctx context.Context, method, requestPath string, payload []byte, out interface{}) error {
	ts := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var bodyReader io.Reader
	body := ""
	if len(payload) > 0 {
		body = string(payload)
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, bodyReader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("OK-ACCESS-KEY", c.apiKey)
	req.Header.Set("OK-ACCESS-SIGN", c.sign(ts, method, requestPath, body))
	req.Header.Set("OK-ACCESS-TIMESTAMP", ts)
	req.Header.Set("OK-ACCESS-PASSPHRASE", c.passph)
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	rb, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(rb))
	}

	if err := json.Unmarshal(rb, out); err != nil {
		return fmt.Errorf("decode: %w; body=%s", err, string(rb))
	}
	return nil
}

// marketErr переводит транспортную ошибку в доменную.
func marketErr(op, symbol string, err error) error {
	metrics.GatewayErrors.WithLabelValues(op).Inc()
	return errs.MarketData(op, symbol, err)
}
