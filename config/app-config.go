// Package config holds the application's configuration settings.
package config

import "time"

// AppConfig defines environment-based configuration for the application.
type AppConfig struct {
	Http     HttpConfig
	Store    StoreConfig
	Checkout CheckoutConfig
	Razorpay RazorpayConfig
	Stripe   StripeConfig
	PayPal   PaypalConfig
}

type HttpConfig struct {
	Addr string `env:"STOREFRONT_HTTP_ADDR" env-default:":8080"`
}

type StoreConfig struct {
	BackendURL string `env:"STORE_BACKEND_URL"`
}

type CheckoutConfig struct {
	// ConfirmTimeout bounds how long a checkout waits for the vendor's
	// confirmation callback before giving up.
	ConfirmTimeout time.Duration `env:"CHECKOUT_CONFIRM_TIMEOUT" env-default:"12s"`
	Providers      []string      `env:"CHECKOUT_PROVIDERS" env-separator:"," env-default:"razorpay,manual"`
	TestMode       bool          `env:"CHECKOUT_TEST_MODE" env-default:"false"`
}

type RazorpayConfig struct {
	KeyID         string `env:"RAZORPAY_KEY_ID"`
	KeySecret     string `env:"RAZORPAY_KEY_SECRET"`
	WebhookSecret string `env:"RAZORPAY_WEBHOOK_SECRET"`
}

type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
}

type PaypalConfig struct {
	ClientID  string `env:"PAYPAL_CLIENT_ID"`
	SecretKey string `env:"PAYPAL_SECRET_KEY"`
}
