package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	apiKeyENV         = "GATEWAY_API_KEY"
	apiSecretENV      = "GATEWAY_API_SECRET"
	passphraseENV     = "GATEWAY_PASSPHRASE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
)

// Config ...
type Config struct {
	Gateway struct {
		BaseURL    string `yaml:"base_url"`
		WSURL      string `yaml:"ws_url"`
		APIKey     string `yaml:"api_key"`
		APISecret  string `yaml:"api_secret"`
		Passphrase string `yaml:"passphrase"`
	} `yaml:"gateway"`
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB      string `yaml:"db_dsn"`
	Service struct {
		HealthAddr string `yaml:"health_addr"`
	} `yaml:"service"`
	Tracing struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"tracing"`

	// Режим учёта позиций: hedge (парные лонг/шорт) или one-way (нетто).
	// Два автомата состояний взаимоисключающие, выбираем один на деплой.
	HedgeMode bool `yaml:"hedge_mode"`

	// Валюта расчётов — в ней смотрим доступный баланс.
	SettleAsset string `yaml:"settle_asset"`

	// Плечо по умолчанию, когда по символу ещё нет позиции.
	DefaultLeverage int `yaml:"default_leverage"`

	// Сколько дней держим историю ордеров до чистки/архива.
	RetentionDays int `yaml:"retention_days"`

	// Сколько живёт запись в кеше цен от ws-фида.
	PriceCacheTTL time.Duration `yaml:"price_cache_ttl"`

	// Символы для ws-подписки на тикеры.
	Watch []string `yaml:"watch"`
}

func NewConfig() (*Config, error) {

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		SettleAsset:     getenvDefault("SETTLE_ASSET", "USDT"),
		DefaultLeverage: intFromEnv("DEFAULT_LEVERAGE", 10),
		RetentionDays:   intFromEnv("RETENTION_DAYS", 30),
		PriceCacheTTL:   durationFromEnv("PRICE_CACHE_TTL", "10s"),
	}
	err = decoder.Decode(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if v := os.Getenv(apiKeyENV); v != "" {
		config.Gateway.APIKey = v
	}
	if v := os.Getenv(apiSecretENV); v != "" {
		config.Gateway.APISecret = v
	}
	if v := os.Getenv(passphraseENV); v != "" {
		config.Gateway.Passphrase = v
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	if config.Gateway.BaseURL == "" {
		config.Gateway.BaseURL = "https://www.okx.com"
	}
	if config.Service.HealthAddr == "" {
		config.Service.HealthAddr = ":8080"
	}

	return &config, nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
