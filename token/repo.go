package token

import (
	"context"
	"time"
)

// Kind distinguishes app-level rows from session-bound user rows.
type Kind string

const (
	// KindClient marks rows created through the client_credentials grant.
	KindClient Kind = "client"
	// KindUser marks rows created through the authorization_code grant.
	// The stored value matches the original schema's "auth" token_type.
	KindUser Kind = "auth"
)

// Record is a persisted token row. Refresh and SessionID are only populated
// for user-type rows.
type Record struct {
	ID        int64
	Value     string
	Expires   time.Time
	Refresh   string
	Kind      Kind
	SessionID string
}

// Repo manages the persisted token rows. Lookups that find nothing return
// errors.ErrNotFound. There is no multi-statement transaction discipline:
// each call commits on its own, and concurrent writers of the same session
// row race last-writer-wins.
type Repo interface {
	// Insert stores a new row and assigns rec.ID.
	Insert(ctx context.Context, rec *Record) error

	// FindClient returns a client-type row if one exists.
	FindClient(ctx context.Context) (*Record, error)

	// FindBySession returns the user-type row bound to sessionID.
	FindBySession(ctx context.Context, sessionID string) (*Record, error)

	// UpdateBySession rewrites value, expiry and refresh credential of the
	// row bound to sessionID, leaving its identity in place.
	UpdateBySession(ctx context.Context, sessionID, value string, expires time.Time, refresh string) error

	// DeleteByID removes a row by its identity.
	DeleteByID(ctx context.Context, id int64) error

	// DeleteBySession removes the row bound to sessionID.
	DeleteBySession(ctx context.Context, sessionID string) error
}
