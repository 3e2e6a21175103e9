package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"

	"storefront-payments/config"
	"storefront-payments/internal/services/checkout"
	"storefront-payments/internal/services/notify"
	"storefront-payments/internal/services/payments/handler"
	"storefront-payments/internal/services/payments/providers"
	"storefront-payments/internal/store"
)

func main() {
	var cfg config.AppConfig

	err := cleanenv.ReadEnv(&cfg)
	if err != nil {
		log.Panic("failed to load config: ", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var provs []providers.PaymentProvider
	for _, id := range cfg.Checkout.Providers {
		switch id {
		case providers.RazorpayProviderID:
			provs = append(provs, providers.NewRazorpayProvider(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret))
		case providers.StripeProviderID:
			provs = append(provs, providers.NewStripeProvider(cfg.Stripe.SecretKey))
		case providers.PayPalProviderID:
			provs = append(provs, providers.NewPayPalProvider(cfg.PayPal.ClientID, cfg.PayPal.SecretKey))
		case providers.ManualProviderID:
			provs = append(provs, providers.NewManualProvider(cfg.Checkout.TestMode))
		default:
			log.Panic("unknown payment provider in CHECKOUT_PROVIDERS: ", id)
		}
	}

	backend := store.NewClient(cfg.Store.BackendURL)
	carts := store.NewCartStore()

	// One dispatcher for the process, injected everywhere it is needed.
	dispatcher := notify.NewDispatcher(
		notify.NewSubscriberEventTransport(cfg.Store.BackendURL),
		notify.NewDirectEventTransport(cfg.Store.BackendURL),
		notify.NewSMSTransport(cfg.Store.BackendURL),
	)

	coordinator := checkout.NewCoordinator(backend, carts)
	registry := checkout.NewRegistry(coordinator, dispatcher, cfg.Checkout.ConfirmTimeout)

	h := handler.NewHandler(
		provs,
		cfg.Checkout.Providers,
		registry,
		carts,
		backend,
		cfg.Stripe.WebhookSecret,
		cfg.Razorpay.WebhookSecret,
	)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Group(h.Routes)

	slog.Info(fmt.Sprintf("Server running on %s", cfg.Http.Addr))

	err = http.ListenAndServe(cfg.Http.Addr, r)
	if err != nil {
		slog.Error("failed to serve server", "error", err)
	}
}
