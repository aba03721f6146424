package storyapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storyadmin/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(slog.Default(), srv.URL, 5*time.Second)
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		w.Write([]byte(`{"token":"opaque-token"}`))
	})

	token, err := c.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)
}

func TestClient_ListStories_BearerAuth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer opaque-token", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id":"s1","name":{"en":"The Fox"},"languages":["en"]}]`))
	})

	stories, err := c.ListStories(context.Background(), "opaque-token")
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "s1", stories[0].ID)
	assert.Equal(t, "The Fox", stories[0].Name["en"])
}

func TestClient_DeleteStory_NoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/stories/s1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.DeleteStory(context.Background(), "token", "s1"))
}

func TestClient_BackendErrorPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"cover image is required"}`))
	})

	_, err := c.CreateStory(context.Background(), "token", StorySubmission{})
	require.Error(t, err)

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusBadRequest, backendErr.StatusCode)
	assert.Equal(t, "cover image is required", backendErr.Message)
}

func TestClient_BackendErrorGenericMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`boom`))
	})

	err := c.DeletePart(context.Background(), "token", "s1", "p1")
	require.Error(t, err)

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "request failed", backendErr.Message)
}

func TestClient_SavePart_Multipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "s1", r.FormValue("storyId"))
		assert.Equal(t, "Part One", r.FormValue("titleEn"))
		w.Write([]byte(`{"message":"part saved","story":{"id":"s1"}}`))
	})

	story, err := c.SavePart(context.Background(), "token", PartSubmission{
		StoryID: "s1",
		Title:   models.LangMap{models.LangEnglish: "Part One"},
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", story.ID)
}

func TestClient_ListSubscribers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscribers", r.URL.Path)
		w.Write([]byte(`{"subscribers":["a@example.com","b@example.com"]}`))
	})

	subs, err := c.ListSubscribers(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, subs)
}
