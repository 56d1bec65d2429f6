package discord

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGrantRole_Request(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(Config{
		APIBase:   srv.URL + "/",
		BotToken:  "secret-token",
		UserAgent: UserAgent("DiscordBot", "https://example.com/bot", "1.2.3"),
	}, WithLogger(quietLogger()))

	status, err := c.GrantRole(context.Background(), "290926798626357999", "53908232506183680", "646518404030922772")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, status)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/guilds/290926798626357999/members/53908232506183680/roles/646518404030922772", got.URL.Path)
	assert.Equal(t, "Bot secret-token", got.Header.Get("Authorization"))
	assert.Equal(t, "DiscordBot (https://example.com/bot, 1.2.3)", got.Header.Get("User-Agent"))
}

func TestGrantRole_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Missing Permissions","code":50013}`))
	}))
	defer srv.Close()

	c := New(Config{APIBase: srv.URL, BotToken: "t"}, WithLogger(quietLogger()))

	status, err := c.GrantRole(context.Background(), "1", "2", "3")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestGrantRole_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(Config{APIBase: url, BotToken: "t", Timeout: time.Second}, WithLogger(quietLogger()))

	_, err := c.GrantRole(context.Background(), "1", "2", "3")
	assert.Error(t, err)
}

func TestGrantRole_CustomHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(Config{APIBase: srv.URL}, WithHTTPClient(srv.Client()), WithLogger(quietLogger()))
	status, err := c.GrantRole(context.Background(), "1", "2", "3")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestUserAgent(t *testing.T) {
	assert.Equal(t, "DiscordBot (https://x, 0.1.0)", UserAgent("", "https://x", "0.1.0"))
	assert.Equal(t, "RoleBot (https://x, 2)", UserAgent("RoleBot", "https://x", "2"))
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, DefaultAPIBase, c.apiBase)
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
}
