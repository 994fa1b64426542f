// Package creds orchestrates "get a currently valid bearer credential":
// serve a cached store row, request a fresh token from the authorization
// server, or refresh an expired user token on demand. All expiry checks are
// lazy; nothing here runs in the background.
package creds

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	bserrors "badstats/internal/errors"
	"badstats/spotify"
	"badstats/token"
)

// ClientManager serves the app-wide client-credentials token.
//
// The lookup/request/insert sequence is not atomic against concurrent
// callers: two requests that both miss the cache will both mint a token and
// insert a row. The duplicate is harmless since expired rows are pruned on
// read, so no locking is taken.
type ClientManager struct {
	repo     token.Repo
	accounts *spotify.AccountsClient
}

func NewClientManager(repo token.Repo, accounts *spotify.AccountsClient) *ClientManager {
	return &ClientManager{repo: repo, accounts: accounts}
}

var _ spotify.CredentialSource = (*ClientManager)(nil)

// Credential returns a currently valid app-level credential, minting one via
// the client_credentials grant when the cache is empty or stale. A failed
// token request is fatal to the caller; there is no retry.
func (m *ClientManager) Credential(ctx context.Context) (string, error) {
	rec, err := m.repo.FindClient(ctx)
	switch {
	case err == nil:
		tok := token.ClientFromRecord(rec)
		if !tok.IsExpired() {
			return tok.Value(), nil
		}
		if err := tok.Remove(ctx, m.repo); err != nil {
			return "", errors.Wrap(err, "ClientManager.Credential Remove")
		}
		log.Debug().Msg("expired client token pruned")
	case bserrors.Is(err, bserrors.ErrNotFound):
		// fall through to a fresh request
	default:
		return "", errors.Wrap(err, "ClientManager.Credential FindClient")
	}

	grant, err := m.accounts.ClientCredentials(ctx)
	if err != nil {
		return "", errors.Wrap(err, "ClientManager.Credential")
	}

	tok, err := token.NewClientToken(grant.AccessToken, grant.Expires)
	if err != nil {
		return "", errors.Wrap(err, "ClientManager.Credential NewClientToken")
	}
	if err := tok.Store(ctx, m.repo); err != nil {
		return "", errors.Wrap(err, "ClientManager.Credential Store")
	}

	log.Debug().Time("expires", grant.Expires).Msg("client token acquired")
	return tok.Value(), nil
}

// UserManager serves session-bound user tokens and seeds new ones during the
// authorization handshake.
//
// Concurrent refreshes of the same session are not mutually excluded; the
// last writer wins. This mirrors the store's per-statement commit discipline.
type UserManager struct {
	repo     token.Repo
	accounts *spotify.AccountsClient
}

func NewUserManager(repo token.Repo, accounts *spotify.AccountsClient) *UserManager {
	return &UserManager{repo: repo, accounts: accounts}
}

// Credential returns a currently valid credential for the session, refreshing
// the stored token in place when it has expired. The row is updated, never
// deleted-and-recreated: deleting would lose the only copy of the refresh
// credential.
func (m *UserManager) Credential(ctx context.Context, sessionID string) (string, error) {
	rec, err := m.repo.FindBySession(ctx, sessionID)
	if bserrors.Is(err, bserrors.ErrNotFound) {
		return "", errors.Wrap(bserrors.ErrNotAuthenticated, "UserManager.Credential")
	}
	if err != nil {
		return "", errors.Wrap(err, "UserManager.Credential FindBySession")
	}

	tok := token.UserFromRecord(rec)
	if !tok.IsExpired() {
		return tok.Value(), nil
	}

	// The stored row is left as-is on failure: an access-token-only failure
	// does not invalidate the refresh credential.
	grant, err := m.accounts.RefreshGrant(ctx, tok.RefreshCredential())
	if err != nil {
		return "", errors.Wrap(err, "UserManager.Credential")
	}

	if err := tok.Refresh(ctx, m.repo, grant.AccessToken, grant.Expires, grant.RefreshToken); err != nil {
		return "", errors.Wrap(err, "UserManager.Credential Refresh")
	}

	log.Debug().Str("session", sessionID).Msg("user token refreshed")
	return tok.Value(), nil
}

// Exchange swaps an authorization code for a user token and persists it
// bound to sessionID. It seeds the session during the handshake's final leg.
func (m *UserManager) Exchange(ctx context.Context, code, redirectURI, sessionID string) (*token.UserToken, error) {
	grant, err := m.accounts.Exchange(ctx, code, redirectURI)
	if err != nil {
		return nil, errors.Wrap(err, "UserManager.Exchange")
	}

	tok, err := token.NewUserToken(grant.AccessToken, grant.Expires, grant.RefreshToken, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "UserManager.Exchange NewUserToken")
	}
	if err := tok.Store(ctx, m.repo); err != nil {
		return nil, errors.Wrap(err, "UserManager.Exchange Store")
	}

	log.Debug().Str("session", sessionID).Msg("user token acquired")
	return tok, nil
}

// HasSession reports whether a token row exists for the session. The session
// validity guard uses it to reject orphaned cookies.
func (m *UserManager) HasSession(ctx context.Context, sessionID string) (bool, error) {
	_, err := m.repo.FindBySession(ctx, sessionID)
	if bserrors.Is(err, bserrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "UserManager.HasSession")
	}
	return true, nil
}

// Disconnect deletes the session's token row.
func (m *UserManager) Disconnect(ctx context.Context, sessionID string) error {
	if err := m.repo.DeleteBySession(ctx, sessionID); err != nil {
		return errors.Wrap(err, "UserManager.Disconnect")
	}
	log.Debug().Str("session", sessionID).Msg("user token deleted")
	return nil
}

// ForSession adapts the manager to a spotify.CredentialSource bound to one
// session.
func (m *UserManager) ForSession(sessionID string) spotify.CredentialSource {
	return sessionSource{manager: m, sessionID: sessionID}
}

type sessionSource struct {
	manager   *UserManager
	sessionID string
}

func (s sessionSource) Credential(ctx context.Context) (string, error) {
	return s.manager.Credential(ctx, s.sessionID)
}
