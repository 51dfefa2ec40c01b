// Package webhook delivers outbound notification payloads to a
// configured URL. Delivery is best effort; callers log failures and
// move on.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const requestTimeout = 10 * time.Second

// Payload is the wire shape consumed by downstream delivery services.
// Field names are part of the contract; do not rename.
type Payload struct {
	NotificationID string `json:"notificationId"`
	Plate          string `json:"plate"`
	OwnerName      string `json:"ownerName"`
	PhoneNumber    string `json:"phoneNumber"`
	RawMessage     string `json:"raw_message"`
	Message        string `json:"message"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp"`
}

type Client interface {
	Deliver(ctx context.Context, url string, payload Payload) error
}

type httpClient struct {
	client *http.Client
}

func New() Client {
	return &httpClient{
		client: &http.Client{Timeout: requestTimeout},
	}
}

func (c *httpClient) Deliver(ctx context.Context, url string, payload Payload) error {
	if url == "" {
		return fmt.Errorf("webhook url not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// NoOpClient drops payloads. Used when no webhook URL is configured.
type NoOpClient struct{}

func (NoOpClient) Deliver(ctx context.Context, url string, payload Payload) error {
	return nil
}
