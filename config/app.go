package config

import "time"

type Robokassa struct {
	Login      string
	Password1  string
	Password2  string
	AllowedIPs []string
}

type Yookassa struct {
	ShopID    string
	SecretKey string
	ReturnURL string
}

type Heleket struct {
	APIURL      string
	MerchantID  string
	APIKey      string
	ReturnURL   string
	SuccessURL  string
	CallbackURL string
	AllowedIPs  []string
}

type App struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	Env         string

	// PaymentTestMode auto-completes payments without contacting any gateway.
	// Must stay off outside dev.
	PaymentTestMode bool

	// Pending payments older than SweepAfter are marked failed by the sweeper.
	SweepAfter    time.Duration
	SweepInterval time.Duration

	// Optional URL notified after every successful payment commit.
	NotifyWebhookURL string

	Robokassa Robokassa
	Yookassa  Yookassa
	Heleket   Heleket
}
