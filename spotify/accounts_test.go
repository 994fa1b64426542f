package spotify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bserrors "badstats/internal/errors"
	"badstats/spotify"
)

func TestAuthorizeURL(t *testing.T) {
	client := spotify.NewAccountsClient("app-id", "app-secret")

	raw := client.AuthorizeURL("http://127.0.0.1:8080/auth/spotify/callback", "playlist-read-private", "state-token")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "accounts.spotify.com", parsed.Host)
	assert.Equal(t, "/authorize", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "app-id", q.Get("client_id"))
	assert.Equal(t, "http://127.0.0.1:8080/auth/spotify/callback", q.Get("redirect_uri"))
	assert.Equal(t, "playlist-read-private", q.Get("scope"))
	assert.Equal(t, "state-token", q.Get("state"))
	assert.Equal(t, "true", q.Get("show_dialog"))
}

func TestClientCredentialsGrant(t *testing.T) {
	serverNow := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "token requests must carry Basic auth")
		assert.Equal(t, "app-id", user)
		assert.Equal(t, "app-secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))

		w.Header().Set("Date", serverNow.Format(http.TimeFormat))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "app-credential",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	client := spotify.NewAccountsClient("app-id", "app-secret", spotify.WithAccountsURL(srv.URL))

	grant, err := client.ClientCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "app-credential", grant.AccessToken)
	assert.Empty(t, grant.RefreshToken)
	assert.Equal(t, serverNow.Add(time.Hour), grant.Expires, "expiry anchors on the Date response header, not local time")
}

func TestExchangeSendsCodeAndRedirectURI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, "the-code", r.FormValue("code"))
		assert.Equal(t, "http://127.0.0.1/cb", r.FormValue("redirect_uri"))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "user-credential",
			"refresh_token": "user-refresh",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	client := spotify.NewAccountsClient("app-id", "app-secret", spotify.WithAccountsURL(srv.URL))

	grant, err := client.Exchange(context.Background(), "the-code", "http://127.0.0.1/cb")
	require.NoError(t, err)
	assert.Equal(t, "user-credential", grant.AccessToken)
	assert.Equal(t, "user-refresh", grant.RefreshToken)
}

func TestRefreshGrantFailureIsTokenRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := spotify.NewAccountsClient("app-id", "app-secret", spotify.WithAccountsURL(srv.URL))

	_, err := client.RefreshGrant(context.Background(), "stale-refresh")
	assert.True(t, bserrors.Is(err, bserrors.ErrTokenRefresh))
}

func TestTokenRequestFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := spotify.NewAccountsClient("bad-id", "bad-secret", spotify.WithAccountsURL(srv.URL))

	_, err := client.ClientCredentials(context.Background())
	assert.True(t, bserrors.Is(err, bserrors.ErrTokenRequest))
}
