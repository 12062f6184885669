package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"risk_core/internal/errs"
	"risk_core/internal/models"

	"github.com/bytedance/sonic"
)

// SetLeverage — выставить плечо по символу. Диапазон проверяем сами,
// чтобы не гонять заведомо кривые значения на биржу.
func (c *Client) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	if leverage < 1 || leverage > 125 {
		return errs.Validationf("leverage %d outside [1,125]", leverage)
	}

	payload, err := sonic.Marshal(map[string]string{
		"instId":  symbol,
		"lever":   strconv.Itoa(leverage),
		"mgnMode": "cross",
	})
	if err != nil {
		return fmt.Errorf("SetLeverage marshal: %w", err)
	}

	var resp ackResponse
	if err := c.request(ctx, http.MethodPost, "/api/v5/account/set-leverage", payload, &resp); err != nil {
		return marketErr("set leverage", symbol, err)
	}
	if resp.Code != "0" {
		return marketErr("set leverage", symbol, fmt.Errorf("code=%s msg=%s", resp.Code, resp.Msg))
	}
	return nil
}

// SetMarginType — isolated/cross по символу.
func (c *Client) SetMarginType(ctx context.Context, symbol string, mode models.MarginMode) error {
	if mode != models.MarginIsolated && mode != models.MarginCross {
		return errs.Validationf("unknown margin mode %q", mode)
	}

	payload, err := sonic.Marshal(map[string]string{
		"instId":  symbol,
		"mgnMode": string(mode),
	})
	if err != nil {
		return fmt.Errorf("SetMarginType marshal: %w", err)
	}

	var resp ackResponse
	if err := c.request(ctx, http.MethodPost, "/api/v5/account/set-leverage", payload, &resp); err != nil {
		return marketErr("set margin type", symbol, err)
	}
	if resp.Code != "0" {
		return marketErr("set margin type", symbol, fmt.Errorf("code=%s msg=%s", resp.Code, resp.Msg))
	}
	return nil
}
