package token

import (
	"context"
	"time"

	"github.com/pkg/errors"

	bserrors "badstats/internal/errors"
)

// NowFunc returns the current time. It can be overridden in tests.
var NowFunc = time.Now

// Credential is the capability set shared by both token flavours. Value
// performs no validation; callers are expected to check IsExpired first.
type Credential interface {
	IsExpired() bool
	Value() string
}

// ClientToken is an app-level bearer credential obtained through the
// client_credentials grant. It carries no refresh credential: an expired
// client token is deleted and a fresh one requested.
type ClientToken struct {
	id      int64
	value   string
	expires time.Time
}

// NewClientToken builds a client token that has not been persisted yet.
func NewClientToken(value string, expires time.Time) (*ClientToken, error) {
	if value == "" {
		return nil, errors.New("NewClientToken empty value")
	}
	return &ClientToken{value: value, expires: expires}, nil
}

// ClientFromRecord rehydrates a client token from a stored row.
func ClientFromRecord(rec *Record) *ClientToken {
	return &ClientToken{id: rec.ID, value: rec.Value, expires: rec.Expires}
}

// IsExpired reports whether the current UTC instant is at or past the
// stored expiry.
func (t *ClientToken) IsExpired() bool {
	return !NowFunc().UTC().Before(t.expires)
}

func (t *ClientToken) Value() string { return t.value }

func (t *ClientToken) Expires() time.Time { return t.expires }

// Store persists the token as a new client-type row and records the
// assigned identity on the value object.
func (t *ClientToken) Store(ctx context.Context, repo Repo) error {
	rec := &Record{Value: t.value, Expires: t.expires, Kind: KindClient}
	if err := repo.Insert(ctx, rec); err != nil {
		return errors.Wrap(err, "ClientToken.Store Insert")
	}
	t.id = rec.ID
	return nil
}

// Remove deletes the backing row. A token never created via the store has
// no identity to delete.
func (t *ClientToken) Remove(ctx context.Context, repo Repo) error {
	if t.id == 0 {
		return errors.Wrap(bserrors.ErrNotPersisted, "ClientToken.Remove")
	}
	if err := repo.DeleteByID(ctx, t.id); err != nil {
		return errors.Wrap(err, "ClientToken.Remove DeleteByID")
	}
	return nil
}

// UserToken is a session-bound bearer credential obtained through the
// authorization_code grant. It carries the refresh credential used to renew
// it in place; the row is never deleted-and-recreated on refresh because
// that would lose the only copy of the refresh credential.
type UserToken struct {
	id        int64
	value     string
	expires   time.Time
	refresh   string
	sessionID string
}

// NewUserToken builds a user token that has not been persisted yet.
func NewUserToken(value string, expires time.Time, refresh, sessionID string) (*UserToken, error) {
	if value == "" {
		return nil, errors.New("NewUserToken empty value")
	}
	if sessionID == "" {
		return nil, errors.New("NewUserToken empty session id")
	}
	return &UserToken{value: value, expires: expires, refresh: refresh, sessionID: sessionID}, nil
}

// UserFromRecord rehydrates a user token from a stored row.
func UserFromRecord(rec *Record) *UserToken {
	return &UserToken{
		id:        rec.ID,
		value:     rec.Value,
		expires:   rec.Expires,
		refresh:   rec.Refresh,
		sessionID: rec.SessionID,
	}
}

// IsExpired reports whether the current UTC instant is at or past the
// stored expiry.
func (t *UserToken) IsExpired() bool {
	return !NowFunc().UTC().Before(t.expires)
}

func (t *UserToken) Value() string { return t.value }

func (t *UserToken) Expires() time.Time { return t.expires }

func (t *UserToken) RefreshCredential() string { return t.refresh }

func (t *UserToken) SessionID() string { return t.sessionID }

// Store persists the token as a new user-type row bound to its session and
// records the assigned identity on the value object.
func (t *UserToken) Store(ctx context.Context, repo Repo) error {
	rec := &Record{
		Value:     t.value,
		Expires:   t.expires,
		Refresh:   t.refresh,
		Kind:      KindUser,
		SessionID: t.sessionID,
	}
	if err := repo.Insert(ctx, rec); err != nil {
		return errors.Wrap(err, "UserToken.Store Insert")
	}
	t.id = rec.ID
	return nil
}

// Refresh updates the backing row for this session and the in-memory object
// together. An empty newRefresh retains the stored refresh credential.
func (t *UserToken) Refresh(ctx context.Context, repo Repo, newValue string, newExpires time.Time, newRefresh string) error {
	if t.id == 0 {
		return errors.Wrap(bserrors.ErrNotPersisted, "UserToken.Refresh")
	}
	if newRefresh == "" {
		newRefresh = t.refresh
	}
	if err := repo.UpdateBySession(ctx, t.sessionID, newValue, newExpires, newRefresh); err != nil {
		return errors.Wrap(err, "UserToken.Refresh UpdateBySession")
	}
	t.value = newValue
	t.expires = newExpires
	t.refresh = newRefresh
	return nil
}

// Remove deletes the backing row for this session.
func (t *UserToken) Remove(ctx context.Context, repo Repo) error {
	if t.id == 0 {
		return errors.Wrap(bserrors.ErrNotPersisted, "UserToken.Remove")
	}
	if err := repo.DeleteBySession(ctx, t.sessionID); err != nil {
		return errors.Wrap(err, "UserToken.Remove DeleteBySession")
	}
	return nil
}
