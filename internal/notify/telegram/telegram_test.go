package telegram

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotifySendsMarkdownMessage(t *testing.T) {
	t.Parallel()

	var got sendMessageRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`)) //nolint:errcheck
	}))
	defer srv.Close()

	n := New(Config{
		BotToken: "token-123",
		ChatID:   "chat-456",
		BaseURL:  srv.URL,
	}, zap.NewNop())

	ok := n.Notify(t.Context(), "https://chat.whatsapp.com/AAA", "Campaign A")
	assert.True(t, ok)
	assert.Equal(t, "/bottoken-123/sendMessage", path)
	assert.Equal(t, "chat-456", got.ChatID)
	assert.Equal(t, "Markdown", got.ParseMode)
	assert.Contains(t, got.Text, "New group found!")
	assert.Contains(t, got.Text, "Campaign A")
	assert.Contains(t, got.Text, "https://chat.whatsapp.com/AAA")
}

func TestNotifyWithoutCredentials(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected without credentials")
	}))
	defer srv.Close()

	n := New(Config{BaseURL: srv.URL}, zap.NewNop())
	assert.False(t, n.Notify(t.Context(), "https://chat.whatsapp.com/AAA", "Campaign A"))
}

func TestNotifyReportsRejection(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := New(Config{
		BotToken: "bad-token",
		ChatID:   "chat-456",
		BaseURL:  srv.URL,
	}, zap.NewNop())

	assert.False(t, n.Notify(t.Context(), "https://chat.whatsapp.com/AAA", "Campaign A"))
}
