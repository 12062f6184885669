package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"risk_core/internal/modules/config"
	gatewaysvc "risk_core/internal/modules/gateway/service"
	healthsvc "risk_core/internal/modules/health/service"
	marginsvc "risk_core/internal/modules/margin/service"
	"risk_core/pkg/logger"
)

// Разовый отчёт по риску аккаунта: позиции берём с биржи, а не из
// памяти работающего ядра.
func main() {
	viper.SetConfigName("report")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("configs")
	viper.AddConfigPath(".")
	viper.SetDefault("symbol", "")
	viper.SetDefault("timeout", "15s")
	if err := viper.ReadInConfig(); err != nil {
		// без своего файла работаем на дефолтах и env
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}
	viper.AutomaticEnv()

	if err := logger.Init(); err != nil {
		panic(err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatal("load config: %v", err)
	}

	timeout := viper.GetDuration("timeout")
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	gw := gatewaysvc.NewClient(cfg, healthsvc.NewState())
	calc := marginsvc.NewCalculator(gw, cfg.SettleAsset)

	positions, err := gw.Positions(ctx, viper.GetString("symbol"))
	if err != nil {
		logger.Fatal("fetch positions: %v", err)
	}
	if len(positions) == 0 {
		fmt.Println("no open positions")
		return
	}

	res, err := calc.ValidateMargin(ctx, positions)
	if err != nil {
		logger.Fatal("validate margin: %v", err)
	}

	fmt.Printf("account margin report (%s)\n", cfg.SettleAsset)
	fmt.Printf("  required margin:  %s\n", money(res.RequiredMargin))
	fmt.Printf("  available margin: %s\n", money(res.AvailableMargin))
	fmt.Printf("  margin ratio:     %s (valid=%v)\n", money(res.MarginRatio), res.IsValid)
	for _, w := range res.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}

	fmt.Println("positions:")
	for i := range positions {
		p := &positions[i]
		fmt.Printf("  %-14s %-5s amount=%s entry=%s lev=%dx upl=%s\n",
			p.Symbol, p.Side(), money(p.Amount), money(p.EntryPrice), p.Leverage, money(p.UnrealizedPnl))
	}

	if !res.IsValid {
		os.Exit(1)
	}
}

func money(v float64) string {
	return decimal.NewFromFloat(v).Round(8).String()
}
