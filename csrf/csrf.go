// Package csrf issues and validates the anti-forgery tokens that double as
// the OAuth2 state parameter during the authorization handshake.
package csrf

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/pkg/errors"

	bserrors "badstats/internal/errors"
)

// Validity is the window within which an issued token may be used.
const Validity = 2 * time.Minute

const tokenLength = 32 // 256 bits

// NowFunc returns the current time. It can be overridden in tests.
var NowFunc = time.Now

// Record is a persisted CSRF token.
type Record struct {
	Token   string
	Created time.Time
}

// Repo manages persisted CSRF tokens. Get returns errors.ErrNotFound for an
// unknown token.
type Repo interface {
	Insert(ctx context.Context, rec *Record) error
	Get(ctx context.Context, tokenValue string) (*Record, error)
	Delete(ctx context.Context, tokenValue string) error
}

// Manager issues random URL-safe tokens and checks them lazily: an expired
// token is deleted the moment a check finds it. A still-valid token is NOT
// consumed on use and may be presented again within its window.
type Manager struct {
	repo Repo
}

func NewManager(repo Repo) *Manager {
	return &Manager{repo: repo}
}

// Issue mints and persists a fresh token.
func (m *Manager) Issue(ctx context.Context) (string, error) {
	raw := make([]byte, tokenLength)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "Manager.Issue rand.Read")
	}

	tokenValue := base64.RawURLEncoding.EncodeToString(raw)
	if err := m.repo.Insert(ctx, &Record{Token: tokenValue, Created: NowFunc().UTC()}); err != nil {
		return "", errors.Wrap(err, "Manager.Issue Insert")
	}
	return tokenValue, nil
}

// Validate checks that the token exists and is inside its validity window.
// Any failure comes back as ErrInvalidCSRF; callers must not expose why a
// check failed.
func (m *Manager) Validate(ctx context.Context, tokenValue string) error {
	if tokenValue == "" {
		return errors.Wrap(bserrors.ErrInvalidCSRF, "Manager.Validate empty token")
	}

	rec, err := m.repo.Get(ctx, tokenValue)
	if bserrors.Is(err, bserrors.ErrNotFound) {
		return errors.Wrap(bserrors.ErrInvalidCSRF, "Manager.Validate unknown token")
	}
	if err != nil {
		return errors.Wrap(err, "Manager.Validate Get")
	}

	if !NowFunc().UTC().Before(rec.Created.Add(Validity)) {
		if err := m.repo.Delete(ctx, tokenValue); err != nil {
			return errors.Wrap(err, "Manager.Validate Delete")
		}
		return errors.Wrap(bserrors.ErrInvalidCSRF, "Manager.Validate expired token")
	}
	return nil
}
