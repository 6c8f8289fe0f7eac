package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func Load() App {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on system env")
	}

	cfg := App{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: must("DATABASE_URL"),
		JWTSecret:   getenv("JWT_SECRET", "local_dev_secret"),
		Env:         getenv("APP_ENV", "dev"),

		PaymentTestMode: getenv("PAYMENT_TEST_MODE", "false") == "true",
		SweepAfter:      getdur("PAYMENT_SWEEP_AFTER", 24*time.Hour),
		SweepInterval:   getdur("PAYMENT_SWEEP_INTERVAL", time.Hour),

		NotifyWebhookURL: os.Getenv("PAYMENT_NOTIFY_WEBHOOK_URL"),

		Robokassa: Robokassa{
			Login:      os.Getenv("ROBOKASSA_LOGIN"),
			Password1:  os.Getenv("ROBOKASSA_PASSWORD1"),
			Password2:  os.Getenv("ROBOKASSA_PASSWORD2"),
			AllowedIPs: getcsv("ALLOWED_ROBOKASSA_IPS"),
		},
		Yookassa: Yookassa{
			ShopID:    os.Getenv("YOOKASSA_SHOP_ID"),
			SecretKey: os.Getenv("YOOKASSA_SECRET_KEY"),
			ReturnURL: getenv("YOOKASSA_RETURN_URL", "https://vagvin.ru/payments/status/"),
		},
		Heleket: Heleket{
			APIURL:      getenv("HELEKET_API_URL", "https://api.heleket.com/v1/payment"),
			MerchantID:  os.Getenv("HELEKET_MERCHANT_ID"),
			APIKey:      os.Getenv("HELEKET_API_KEY"),
			ReturnURL:   getenv("HELEKET_RETURN_URL", "https://vagvin.ru/payments/status/"),
			SuccessURL:  getenv("HELEKET_SUCCESS_URL", "https://vagvin.ru/payments/status/"),
			CallbackURL: getenv("HELEKET_CALLBACK_URL", "https://vagvin.ru/payments/heleket/callback/"),
			AllowedIPs:  getcsv("ALLOWED_HELEKET_IPS"),
		},
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getcsv(k string) []string {
	v := os.Getenv(k)
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getdur(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("bad duration env, using default", "key", k, "value", v)
		return def
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
