// Package sessions models the cookie-backed browser session that keys a
// user's token row. The session has its own fixed lifetime, independent of
// token expiry.
package sessions

import (
	"time"

	"github.com/google/uuid"

	"badstats/internal/errors"
)

// Lifetime is the absolute bound on a session's age, measured from its
// creation instant.
const Lifetime = 30 * time.Minute

// NowFunc returns the current time. It can be overridden in tests.
var NowFunc = time.Now

// Session identifies one authenticated browser. ID keys the user token row
// in the store.
type Session struct {
	ID      string    `json:"id"`
	Created time.Time `json:"created"`
}

// New mints a session with a fresh identifier and creation instant.
func New() Session {
	return Session{ID: uuid.New().String(), Created: NowFunc().UTC()}
}

// Valid applies the session guard's timing checks: the creation instant must
// be present, at most Lifetime in the past, and not in the future. A future
// instant means a forged or clock-tampered cookie and is rejected outright.
// Whether a token row still backs the session is checked separately.
func (s Session) Valid() error {
	if s.ID == "" || s.Created.IsZero() {
		return errors.ErrSessionInvalid
	}

	now := NowFunc().UTC()
	if s.Created.After(now) {
		return errors.ErrSessionInvalid
	}
	if now.Sub(s.Created) > Lifetime {
		return errors.ErrSessionExpired
	}
	return nil
}
