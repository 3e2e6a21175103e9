// Package handler exposes the checkout and payment HTTP surface and routes
// vendor webhooks into the per-cart checkout machines.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront-payments/internal/services/checkout"
	"storefront-payments/internal/services/payments/providers"
	"storefront-payments/internal/services/payments/types"
	"storefront-payments/internal/store"
)

type Handler struct {
	providers map[string]providers.PaymentProvider
	enabled   []string
	registry  *checkout.Registry
	carts     *store.CartStore
	backend   *store.Client

	stripeWebhookSecret   string
	razorpayWebhookSecret string
}

func NewHandler(
	provs []providers.PaymentProvider,
	enabled []string,
	registry *checkout.Registry,
	carts *store.CartStore,
	backend *store.Client,
	stripeWebhookSecret, razorpayWebhookSecret string,
) *Handler {
	byID := make(map[string]providers.PaymentProvider, len(provs))
	for _, p := range provs {
		byID[p.ID()] = p
	}

	return &Handler{
		providers:             byID,
		enabled:               enabled,
		registry:              registry,
		carts:                 carts,
		backend:               backend,
		stripeWebhookSecret:   stripeWebhookSecret,
		razorpayWebhookSecret: razorpayWebhookSecret,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Put("/carts/{cartID}", h.UpsertCart)
	r.Get("/carts/{cartID}", h.GetCart)

	r.Post("/checkout/{cartID}/sessions", h.CreateSession)
	r.Post("/checkout/{cartID}/provider", h.SelectProvider)
	r.Get("/checkout/{cartID}", h.CheckoutState)
	r.Post("/checkout/{cartID}/start", h.StartCheckout)
	r.Post("/checkout/{cartID}/reset", h.ResetCheckout)
	r.Post("/checkout/{cartID}/events", h.VendorEvent)

	r.Post("/payments/{providerID}/capture", h.Capture)
	r.Post("/payments/{providerID}/refund", h.Refund)

	r.Get("/orders", h.ListOrders)
	r.Get("/orders/{orderID}", h.GetOrder)
	r.Post("/orders/{orderID}/cancel", h.CancelOrder)

	r.Post("/webhooks/stripe", h.StripeWebhook)
	r.Post("/webhooks/razorpay", h.RazorpayWebhook)
}

// UpsertCart stores the client's cart state so checkout can validate
// readiness and webhooks can find it.
func (h *Handler) UpsertCart(w http.ResponseWriter, r *http.Request) {
	var cart store.Cart
	if err := json.NewDecoder(r.Body).Decode(&cart); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	cart.ID = chi.URLParam(r, "cartID")

	h.carts.Put(&cart)
	writeJSON(w, http.StatusOK, map[string]interface{}{"cart": cart})
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.carts.Get(chi.URLParam(r, "cartID"))
	if !ok {
		http.Error(w, "Cart not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cart": cart})
}

// CreateSession creates a pending payment session with the requested
// provider and attaches it to the cart.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")

	var body types.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	provider, ok := h.providers[body.ProviderID]
	if !ok {
		http.Error(w, "Unknown payment provider", http.StatusBadRequest)
		return
	}

	cart, ok := h.carts.Get(cartID)
	if !ok {
		http.Error(w, "Cart not found", http.StatusNotFound)
		return
	}

	sess, err := provider.CreateSession(r.Context(), cart.Total, cart.CurrencyCode, cart.ID)
	if err != nil {
		slog.Error("creating payment session", "provider", body.ProviderID, "cart_id", cartID, "error", err)
		http.Error(w, "Failed to create payment session", http.StatusBadGateway)
		return
	}

	// A new session supersedes any previous one for the same provider.
	kept := cart.Sessions[:0]
	for _, s := range cart.Sessions {
		if s.ProviderID != sess.ProviderID {
			kept = append(kept, s)
		}
	}
	cart.Sessions = append(kept, *sess)
	h.carts.Put(cart)

	writeJSON(w, http.StatusOK, map[string]interface{}{"payment_session": sess})
}

func (h *Handler) SelectProvider(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")

	var body types.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	sel := h.selectorFor(cartID)
	if err := sel.Select(body.ProviderID); err != nil {
		if errors.Is(err, checkout.ErrProviderNotEnabled) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to select provider", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"provider_id": sel.Selected()})
}

// CheckoutState reports the selected provider, its pending session and the
// machine's current state for the cart.
func (h *Handler) CheckoutState(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")

	cart, _ := h.carts.Get(cartID)
	sel := h.selectorFor(cartID)
	m := h.registry.Machine(cartID)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"providers":         sel.Enabled(),
		"provider_id":       sel.Selected(),
		"payment_session":   sel.Session(cart),
		"state":             m.State(),
		"error":             m.Err(),
		"processing":        m.Processing(),
		"confirmation_path": m.ConfirmationPath(),
	})
}

// StartCheckout moves the cart's machine to awaiting_confirmation and
// returns the session blob the vendor widget needs. A cart that is not
// ready comes back as a 409 readiness condition, not an error message.
func (h *Handler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")

	cart, ok := h.carts.Get(cartID)
	if !ok {
		http.Error(w, "Cart not found", http.StatusNotFound)
		return
	}

	sel := h.selectorFor(cartID)
	sess := sel.Session(cart)
	if sess == nil {
		http.Error(w, "No pending payment session for selected provider", http.StatusConflict)
		return
	}

	m := h.registry.Machine(cartID)
	if err := m.Start(cart, sess); err != nil {
		switch {
		case errors.Is(err, checkout.ErrCartNotReady):
			writeJSON(w, http.StatusConflict, map[string]interface{}{"ready": false})
		case errors.Is(err, checkout.ErrCheckoutInProgress):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "Failed to start checkout", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state":           m.State(),
		"payment_session": sess,
	})
}

func (h *Handler) ResetCheckout(w http.ResponseWriter, r *http.Request) {
	m := h.registry.Machine(chi.URLParam(r, "cartID"))
	m.Reset()
	writeJSON(w, http.StatusOK, map[string]interface{}{"state": m.State()})
}

// VendorEvent accepts a vendor callback delivered by the client itself,
// used by the manual provider which has no webhook channel.
func (h *Handler) VendorEvent(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")

	var body struct {
		Type    checkout.VendorEventType `json:"type"`
		ID      string                   `json:"id"`
		Message string                   `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	m, ok := h.registry.Lookup(cartID)
	if !ok {
		http.Error(w, "No checkout in progress for cart", http.StatusNotFound)
		return
	}

	m.HandleVendorEvent(r.Context(), checkout.VendorEvent{
		Type:    body.Type,
		Ref:     types.ClassifyRef(body.ID),
		Message: body.Message,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state":             m.State(),
		"error":             m.Err(),
		"confirmation_path": m.ConfirmationPath(),
	})
}

func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[chi.URLParam(r, "providerID")]
	if !ok {
		http.Error(w, "Unknown payment provider", http.StatusBadRequest)
		return
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	sess, err := provider.Capture(r.Context(), types.ClassifyRef(body.ID))
	if err != nil {
		slog.Error("capturing payment", "provider", provider.ID(), "id", body.ID, "error", err)
		http.Error(w, "Failed to capture payment", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"payment_session": sess})
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[chi.URLParam(r, "providerID")]
	if !ok {
		http.Error(w, "Unknown payment provider", http.StatusBadRequest)
		return
	}

	var body types.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	sess, err := provider.Refund(r.Context(), types.ClassifyRef(body.ID), body.Amount)
	if err != nil {
		slog.Error("refunding payment", "provider", provider.ID(), "id", body.ID, "error", err)
		http.Error(w, "Failed to refund payment", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"payment_session": sess})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.backend.ListOrders(r.Context())
	if err != nil {
		slog.Error("listing orders", "error", err)
		http.Error(w, "Failed to list orders", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.backend.RetrieveOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		slog.Error("retrieving order", "error", err)
		http.Error(w, "Failed to retrieve order", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.backend.CancelOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		slog.Error("canceling order", "error", err)
		http.Error(w, "Failed to cancel order", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

func (h *Handler) selectorFor(cartID string) *checkout.Selector {
	return h.registry.Selector(cartID, func() *checkout.Selector {
		cart, _ := h.carts.Get(cartID)
		return checkout.NewSelector(cart, h.enabled)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}
