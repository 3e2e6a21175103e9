package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const smsTemplate = "order_placed"

func newTransportClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Second}
}

// SubscriberEventTransport triggers the backend's subscriber machinery for
// the order. Preferred channel.
type SubscriberEventTransport struct {
	baseURL string
	client  *http.Client
}

func NewSubscriberEventTransport(baseURL string) *SubscriberEventTransport {
	return &SubscriberEventTransport{baseURL: baseURL, client: newTransportClient()}
}

func (t *SubscriberEventTransport) Name() string { return "subscriber-event" }

func (t *SubscriberEventTransport) Send(ctx context.Context, ev OrderPlacedEvent) error {
	body := map[string]string{
		"event_id": ev.EventID,
	}
	return post(ctx, t.client, t.baseURL+"/store/orders/"+ev.OrderID+"/notify", body)
}

// DirectEventTransport posts the order.placed event straight to the backend
// event endpoint, bypassing the subscriber trigger.
type DirectEventTransport struct {
	baseURL string
	client  *http.Client
}

func NewDirectEventTransport(baseURL string) *DirectEventTransport {
	return &DirectEventTransport{baseURL: baseURL, client: newTransportClient()}
}

func (t *DirectEventTransport) Name() string { return "direct-event" }

func (t *DirectEventTransport) Send(ctx context.Context, ev OrderPlacedEvent) error {
	return post(ctx, t.client, t.baseURL+"/store/events/order.placed", ev)
}

// SMSTransport sends the confirmation SMS itself with a fixed template.
// Last resort.
type SMSTransport struct {
	baseURL string
	client  *http.Client
}

func NewSMSTransport(baseURL string) *SMSTransport {
	return &SMSTransport{baseURL: baseURL, client: newTransportClient()}
}

func (t *SMSTransport) Name() string { return "sms" }

func (t *SMSTransport) Send(ctx context.Context, ev OrderPlacedEvent) error {
	if ev.Phone == "" {
		return fmt.Errorf("no phone number on order %s", ev.OrderID)
	}
	body := map[string]interface{}{
		"phone":    ev.Phone,
		"template": smsTemplate,
		"data": map[string]interface{}{
			"order_id": ev.OrderID,
			"total":    ev.Total,
			"currency": ev.Currency,
		},
	}
	return post(ctx, t.client, t.baseURL+"/store/notifications/sms", body)
}

func post(ctx context.Context, client *http.Client, url string, body interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(raw))
	if err != nil {
		return fmt.Errorf("building notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
