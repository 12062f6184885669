package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"risk_core/internal/models"
)

// Balances — доступные балансы по всем активам торгового аккаунта.
func (c *Client) Balances(ctx context.Context) ([]models.Balance, error) {
	var resp balanceResponse
	if err := c.request(ctx, http.MethodGet, "/api/v5/account/balance", nil, &resp); err != nil {
		return nil, marketErr("balance", "*", err)
	}
	if resp.Code != "0" {
		return nil, marketErr("balance", "*", fmt.Errorf("code=%s msg=%s", resp.Code, resp.Msg))
	}

	var out []models.Balance
	for _, acc := range resp.Data {
		for _, d := range acc.Details {
			avail, _ := strconv.ParseFloat(d.AvailBal, 64)
			if avail == 0 {
				avail, _ = strconv.ParseFloat(d.AvailEq, 64)
			}
			out = append(out, models.Balance{Asset: d.Ccy, Available: avail})
		}
	}
	return out, nil
}
