package storyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"storyadmin/internal/domain/models"
	"storyadmin/internal/metrics"
)

// BackendError carries the content backend's error payload back to the
// calling form.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend request failed (%d): %s", e.StatusCode, e.Message)
}

// Client talks to the content backend's REST API.
type Client struct {
	log     *slog.Logger
	baseURL string
	client  *http.Client
}

func New(log *slog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		log:     log,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	const op = "gateway.storyapi.Login"

	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(req, "login", &resp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return resp.Token, nil
}

func (c *Client) ListStories(ctx context.Context, token string) ([]models.Story, error) {
	const op = "gateway.storyapi.ListStories"

	req, err := c.newRequest(ctx, http.MethodGet, "/stories", token, nil, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var stories []models.Story
	if err := c.do(req, "list_stories", &stories); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stories, nil
}

func (c *Client) GetStory(ctx context.Context, token, id string) (models.Story, error) {
	const op = "gateway.storyapi.GetStory"

	req, err := c.newRequest(ctx, http.MethodGet, "/stories/"+id, token, nil, "")
	if err != nil {
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	var story models.Story
	if err := c.do(req, "get_story", &story); err != nil {
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	return story, nil
}

func (c *Client) CreateStory(ctx context.Context, token string, sub StorySubmission) (models.Story, error) {
	const op = "gateway.storyapi.CreateStory"

	body, contentType, err := encodeForm(func(w *multipart.Writer) error {
		return encodeStoryForm(w, sub)
	})
	if err != nil {
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/stories", token, body, contentType)
	if err != nil {
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	var resp struct {
		Story models.Story `json:"story"`
	}
	if err := c.do(req, "create_story", &resp); err != nil {
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	return resp.Story, nil
}

func (c *Client) UpdateStory(ctx context.Context, token, id string, sub StorySubmission) (models.Story, error) {
	const op = "gateway.storyapi.UpdateStory"

	body, contentType, err := encodeForm(func(w *multipart.Writer) error {
		return encodeStoryForm(w, sub)
	})
	if err != nil {
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/stories/"+id, token, body, contentType)
	if err != nil {
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	var resp struct {
		Story models.Story `json:"story"`
	}
	if err := c.do(req, "update_story", &resp); err != nil {
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	return resp.Story, nil
}

func (c *Client) DeleteStory(ctx context.Context, token, id string) error {
	const op = "gateway.storyapi.DeleteStory"

	req, err := c.newRequest(ctx, http.MethodDelete, "/stories/"+id, token, nil, "")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.do(req, "delete_story", nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SavePart creates or updates a part; the backend routes on the presence of
// partId inside the form.
func (c *Client) SavePart(ctx context.Context, token string, sub PartSubmission) (models.Story, error) {
	const op = "gateway.storyapi.SavePart"

	body, contentType, err := encodeForm(func(w *multipart.Writer) error {
		return encodePartForm(w, sub)
	})
	if err != nil {
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/parts", token, body, contentType)
	if err != nil {
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	var resp struct {
		Message string       `json:"message"`
		Story   models.Story `json:"story"`
	}
	if err := c.do(req, "save_part", &resp); err != nil {
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	return resp.Story, nil
}

func (c *Client) DeletePart(ctx context.Context, token, storyID, partID string) error {
	const op = "gateway.storyapi.DeletePart"

	req, err := c.newRequest(ctx, http.MethodDelete, "/parts/"+storyID+"/"+partID, token, nil, "")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.do(req, "delete_part", nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) ListSubscribers(ctx context.Context, token string) ([]string, error) {
	const op = "gateway.storyapi.ListSubscribers"

	req, err := c.newRequest(ctx, http.MethodGet, "/subscribers", token, nil, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var resp struct {
		Subscribers []string `json:"subscribers"`
	}
	if err := c.do(req, "list_subscribers", &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return resp.Subscribers, nil
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

func (c *Client) do(req *http.Request, operation string, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(operation, "error").Inc()
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.BackendRequestsTotal.WithLabelValues(operation, "error").Inc()
		return decodeError(resp)
	}

	metrics.BackendRequestsTotal.WithLabelValues(operation, "ok").Inc()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	message := "request failed"
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			message = payload.Message
		case payload.Error != "":
			message = payload.Error
		}
	}

	return &BackendError{
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}

func encodeForm(encode func(w *multipart.Writer) error) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := encode(w); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
