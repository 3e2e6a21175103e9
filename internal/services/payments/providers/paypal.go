package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"storefront-payments/internal/services/payments/types"
)

const (
	PayPalProviderID  = "paypal"
	paypalSandboxBase = "https://api-m.sandbox.paypal.com"
)

var paypalStatuses = map[string]types.SessionStatus{
	"CREATED":               types.StatusPending,
	"SAVED":                 types.StatusPending,
	"PAYER_ACTION_REQUIRED": types.StatusPending,
	"APPROVED":              types.StatusAuthorized,
	"COMPLETED":             types.StatusCaptured,
	"VOIDED":                types.StatusCanceled,
}

// PayPalProvider talks to the PayPal orders API directly; there is no
// vendor SDK in use for it.
type PayPalProvider struct {
	clientID  string
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewPayPalProvider(clientID, secretKey string) *PayPalProvider {
	if clientID == "" || secretKey == "" {
		panic("clientID and secretKey required for PayPalProvider")
	}

	return &PayPalProvider{
		clientID:  clientID,
		secretKey: secretKey,
		baseURL:   paypalSandboxBase,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *PayPalProvider) ID() string { return PayPalProviderID }

func (p *PayPalProvider) CreateSession(ctx context.Context, amount float64, currency, reference string) (*types.Session, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": reference,
				"amount": map[string]string{
					"currency_code": currency,
					"value":         strconv.FormatFloat(amount, 'f', 2, 64),
				},
			},
		},
	}

	var order paypalOrder
	if err := p.call(ctx, token, http.MethodPost, "/v2/checkout/orders", body, &order); err != nil {
		return nil, fmt.Errorf("creating paypal order: %w", err)
	}

	sess := p.sessionFromOrder(&order, amount, currency)
	for _, link := range order.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			sess.Data["approve_url"] = link.Href
		}
	}
	return sess, nil
}

func (p *PayPalProvider) FetchSession(ctx context.Context, ref types.PaymentRef) (*types.Session, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var order paypalOrder
	if err := p.call(ctx, token, http.MethodGet, "/v2/checkout/orders/"+ref.ID, nil, &order); err != nil {
		return nil, fmt.Errorf("fetching paypal order %s: %w", ref.ID, err)
	}

	return p.sessionFromOrder(&order, 0, ""), nil
}

func (p *PayPalProvider) Capture(ctx context.Context, ref types.PaymentRef) (*types.Session, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var order paypalOrder
	if err := p.call(ctx, token, http.MethodPost, "/v2/checkout/orders/"+ref.ID+"/capture", nil, &order); err != nil {
		return nil, fmt.Errorf("capturing paypal order %s: %w", ref.ID, err)
	}

	return p.sessionFromOrder(&order, 0, ""), nil
}

func (p *PayPalProvider) Refund(ctx context.Context, ref types.PaymentRef, amount float64) (*types.Session, error) {
	sess, err := p.FetchSession(ctx, ref)
	if err != nil {
		return nil, err
	}

	captureID, _ := sess.Data["capture_id"].(string)
	if captureID == "" {
		return nil, fmt.Errorf("refunding paypal order %s: no capture to refund", ref.ID)
	}

	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var body map[string]interface{}
	if amount > 0 {
		body = map[string]interface{}{
			"amount": map[string]string{
				"currency_code": sess.Currency,
				"value":         strconv.FormatFloat(amount, 'f', 2, 64),
			},
		}
	}

	if err := p.call(ctx, token, http.MethodPost, "/v2/payments/captures/"+captureID+"/refund", body, nil); err != nil {
		return nil, fmt.Errorf("refunding paypal capture %s: %w", captureID, err)
	}

	return p.FetchSession(ctx, ref)
}

type paypalOrder struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		ReferenceID string `json:"reference_id"`
		Amount      struct {
			CurrencyCode string `json:"currency_code"`
			Value        string `json:"value"`
		} `json:"amount"`
		Payments struct {
			Captures []struct {
				ID string `json:"id"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
	Links []struct {
		Href   string `json:"href"`
		Rel    string `json:"rel"`
		Method string `json:"method"`
	} `json:"links"`
}

func (p *PayPalProvider) sessionFromOrder(order *paypalOrder, amount float64, currency string) *types.Session {
	data := map[string]interface{}{
		"paypal_order_id": order.ID,
	}
	if len(order.PurchaseUnits) > 0 {
		unit := order.PurchaseUnits[0]
		currency = unit.Amount.CurrencyCode
		if v, err := strconv.ParseFloat(unit.Amount.Value, 64); err == nil {
			amount = v
		}
		if len(unit.Payments.Captures) > 0 {
			data["capture_id"] = unit.Payments.Captures[0].ID
		}
	}

	return &types.Session{
		ID:         order.ID,
		ProviderID: PayPalProviderID,
		Status:     mapStatus(paypalStatuses, order.Status),
		Amount:     amount,
		Currency:   currency,
		Data:       data,
	}
}

func (p *PayPalProvider) accessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("building paypal token request: %w", err)
	}
	req.SetBasicAuth(p.clientID, p.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting paypal access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("requesting paypal access token: status %d", resp.StatusCode)
	}

	var tokenData struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenData); err != nil {
		return "", fmt.Errorf("decoding paypal token response: %w", err)
	}

	return tokenData.AccessToken, nil
}

func (p *PayPalProvider) call(ctx context.Context, token, method, path string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding paypal request: %w", err)
		}
		payload = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("building paypal request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("paypal returned status %d: %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding paypal response: %w", err)
	}
	return nil
}
