package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client sends one email per recipient through the provider's HTTP API.
type Client struct {
	log         *slog.Logger
	providerURL string
	apiKey      string
	sender      string
	client      *http.Client
}

func New(log *slog.Logger, providerURL, apiKey, sender string) *Client {
	return &Client{
		log:         log,
		providerURL: providerURL,
		apiKey:      apiKey,
		sender:      sender,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

type message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (c *Client) Send(ctx context.Context, recipient, subject, body string) error {
	const op = "gateway.mailer.Send"

	payload, err := json.Marshal(message{
		From:    c.sender,
		To:      recipient,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.providerURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s: provider returned %d: %s", op, resp.StatusCode, string(raw))
	}

	return nil
}
