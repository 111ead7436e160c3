package watch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardtrack/internal/ledger/models"
)

func TestWebhookNotifierPostsContent(t *testing.T) {
	var payload webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	err := n.Notify(context.Background(), models.Operation{
		ID:            7,
		Actor:         "operator",
		CardName:      "alpha",
		GeoStatus:     "ON SITE",
		OffloadStatus: "TO BACKUP",
	})
	require.NoError(t, err)

	assert.Contains(t, payload.Content, "TO BACKUP")
	assert.Contains(t, payload.Content, "alpha")
	assert.Contains(t, payload.Content, "operator")
}

func TestWebhookNotifierRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	err := n.Notify(context.Background(), models.Operation{CardName: "alpha"})
	assert.Error(t, err)
}

func TestWebhookNotifierUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	n := NewWebhookNotifier(srv.URL)
	err := n.Notify(context.Background(), models.Operation{CardName: "alpha"})
	assert.Error(t, err)
}
