package creds_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"badstats/creds"
	bserrors "badstats/internal/errors"
	"badstats/spotify"
	"badstats/token"
	"badstats/token/repofake"
)

// fakeAccounts is a canned authorization-server token endpoint. It records
// how many requests arrived and with which grant type.
type fakeAccounts struct {
	requests     int
	lastGrant    string
	status       int
	accessToken  string
	refreshToken string
	expiresIn    int
	date         time.Time
}

func (f *fakeAccounts) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.requests++
		_ = r.ParseForm()
		f.lastGrant = r.FormValue("grant_type")

		if f.status >= 300 {
			w.WriteHeader(f.status)
			return
		}

		w.Header().Set("Date", f.date.UTC().Format(http.TimeFormat))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  f.accessToken,
			"token_type":    "Bearer",
			"expires_in":    f.expiresIn,
			"refresh_token": f.refreshToken,
		})
	}
}

func newAccountsClient(t *testing.T, fake *fakeAccounts) *spotify.AccountsClient {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	return spotify.NewAccountsClient("app-id", "app-secret", spotify.WithAccountsURL(srv.URL))
}

func withFrozenNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := token.NowFunc
	token.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { token.NowFunc = prev })
}

func TestClientManagerServesCachedToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFrozenNow(t, now)

	fake := &fakeAccounts{}
	repo := repofake.NewFakeTokenRepo()
	require.NoError(t, repo.Insert(context.Background(), &token.Record{
		Kind:    token.KindClient,
		Value:   "cached-credential",
		Expires: now.Add(time.Hour),
	}))

	manager := creds.NewClientManager(repo, newAccountsClient(t, fake))

	credential, err := manager.Credential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached-credential", credential)
	assert.Zero(t, fake.requests, "a valid cached token must not hit the token endpoint")
}

func TestClientManagerMintsWhenCacheEmpty(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFrozenNow(t, now)

	fake := &fakeAccounts{accessToken: "fresh-credential", expiresIn: 3600, date: now}
	repo := repofake.NewFakeTokenRepo()
	manager := creds.NewClientManager(repo, newAccountsClient(t, fake))

	credential, err := manager.Credential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-credential", credential)
	assert.Equal(t, 1, fake.requests)
	assert.Equal(t, "client_credentials", fake.lastGrant)

	rec, err := repo.FindClient(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), rec.Expires, "expiry must anchor on the server's Date header")
}

func TestClientManagerPrunesExpiredRow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFrozenNow(t, now)

	fake := &fakeAccounts{accessToken: "replacement", expiresIn: 3600, date: now}
	repo := repofake.NewFakeTokenRepo()
	require.NoError(t, repo.Insert(context.Background(), &token.Record{
		Kind:    token.KindClient,
		Value:   "stale",
		Expires: now.Add(-time.Minute),
	}))

	manager := creds.NewClientManager(repo, newAccountsClient(t, fake))

	credential, err := manager.Credential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "replacement", credential)
	assert.Equal(t, 1, fake.requests)
	assert.Equal(t, 1, repo.Count(token.KindClient), "the stale row must be pruned, not accumulated")
}

func TestUserManagerNoRowIsNotAuthenticated(t *testing.T) {
	repo := repofake.NewFakeTokenRepo()
	manager := creds.NewUserManager(repo, newAccountsClient(t, &fakeAccounts{}))

	_, err := manager.Credential(context.Background(), "nobody")
	assert.True(t, bserrors.Is(err, bserrors.ErrNotAuthenticated))
}

func TestUserManagerRefreshesExpiredToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFrozenNow(t, now)

	fake := &fakeAccounts{accessToken: "renewed", expiresIn: 3600, date: now}
	repo := repofake.NewFakeTokenRepo()
	require.NoError(t, repo.Insert(context.Background(), &token.Record{
		Kind:      token.KindUser,
		Value:     "stale",
		Expires:   now.Add(-time.Minute),
		Refresh:   "refresh-credential",
		SessionID: "session-1",
	}))

	manager := creds.NewUserManager(repo, newAccountsClient(t, fake))

	credential, err := manager.Credential(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, "renewed", credential)
	assert.Equal(t, "refresh_token", fake.lastGrant)

	rec, err := repo.FindBySession(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, "renewed", rec.Value)
	assert.Equal(t, now.Add(time.Hour), rec.Expires)
	assert.Equal(t, "refresh-credential", rec.Refresh, "an unrotated refresh credential must be retained")
	assert.Equal(t, 1, repo.Count(token.KindUser), "refresh updates the row in place")
}

func TestUserManagerRefreshRotatesCredential(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFrozenNow(t, now)

	fake := &fakeAccounts{accessToken: "renewed", refreshToken: "rotated", expiresIn: 3600, date: now}
	repo := repofake.NewFakeTokenRepo()
	require.NoError(t, repo.Insert(context.Background(), &token.Record{
		Kind:      token.KindUser,
		Value:     "stale",
		Expires:   now.Add(-time.Minute),
		Refresh:   "old-refresh",
		SessionID: "session-1",
	}))

	manager := creds.NewUserManager(repo, newAccountsClient(t, fake))

	_, err := manager.Credential(context.Background(), "session-1")
	require.NoError(t, err)

	rec, err := repo.FindBySession(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, "rotated", rec.Refresh)
}

func TestUserManagerRefreshFailureLeavesRowUntouched(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFrozenNow(t, now)

	fake := &fakeAccounts{status: http.StatusBadRequest}
	repo := repofake.NewFakeTokenRepo()
	require.NoError(t, repo.Insert(context.Background(), &token.Record{
		Kind:      token.KindUser,
		Value:     "stale",
		Expires:   now.Add(-time.Minute),
		Refresh:   "refresh-credential",
		SessionID: "session-1",
	}))

	manager := creds.NewUserManager(repo, newAccountsClient(t, fake))

	_, err := manager.Credential(context.Background(), "session-1")
	assert.True(t, bserrors.Is(err, bserrors.ErrTokenRefresh))

	rec, findErr := repo.FindBySession(context.Background(), "session-1")
	require.NoError(t, findErr)
	assert.Equal(t, "stale", rec.Value)
	assert.Equal(t, "refresh-credential", rec.Refresh, "a failed refresh must not lose the refresh credential")
}

func TestUserManagerExchangeSeedsSession(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFrozenNow(t, now)

	fake := &fakeAccounts{accessToken: "user-credential", refreshToken: "user-refresh", expiresIn: 3600, date: now}
	repo := repofake.NewFakeTokenRepo()
	manager := creds.NewUserManager(repo, newAccountsClient(t, fake))

	tok, err := manager.Exchange(context.Background(), "auth-code", "http://127.0.0.1/cb", "session-9")
	require.NoError(t, err)
	assert.Equal(t, "user-credential", tok.Value())
	assert.Equal(t, "authorization_code", fake.lastGrant)

	ok, err := manager.HasSession(context.Background(), "session-9")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserManagerDisconnectDeletesRow(t *testing.T) {
	repo := repofake.NewFakeTokenRepo()
	require.NoError(t, repo.Insert(context.Background(), &token.Record{
		Kind:      token.KindUser,
		Value:     "credential",
		Expires:   time.Now().Add(time.Hour),
		SessionID: "session-1",
	}))

	manager := creds.NewUserManager(repo, newAccountsClient(t, &fakeAccounts{}))
	require.NoError(t, manager.Disconnect(context.Background(), "session-1"))

	ok, err := manager.HasSession(context.Background(), "session-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
