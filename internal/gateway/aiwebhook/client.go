package aiwebhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"storyadmin/internal/domain/models"
)

// Client posts generation requests to the third-party webhook. The response
// shape is not under our control; Normalize turns it into the fixed section
// schema.
type Client struct {
	log        *slog.Logger
	webhookURL string
	client     *http.Client
}

func New(log *slog.Logger, webhookURL string, timeout time.Duration) *Client {
	return &Client{
		log:        log,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
	}
}

type GenerateRequest struct {
	Prompt     string            `json:"prompt"`
	SourceText string            `json:"sourceText,omitempty"`
	Languages  []models.Language `json:"languages,omitempty"`
}

// Generate posts the request and returns the raw response body. No retry: a
// transport failure is reported once to the caller.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) ([]byte, error) {
	const op = "gateway.aiwebhook.Generate"

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: webhook returned %d", op, resp.StatusCode)
	}

	return raw, nil
}
