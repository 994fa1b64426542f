package sessions

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"

	bserrors "badstats/internal/errors"
)

// CookieName is the session cookie.
const CookieName = "badstats_session"

// Codec seals sessions into tamper-proof cookie values. The browser cannot
// read or forge the session contents; a cookie that fails to open is simply
// an invalid session.
type Codec struct {
	key [32]byte
}

func NewCodec(secret string) *Codec {
	return &Codec{key: sha256.Sum256([]byte(secret))}
}

// Encode seals a session into a URL-safe cookie value.
func (c *Codec) Encode(s Session) (string, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return "", errors.Wrap(err, "Codec.Encode Marshal")
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", errors.Wrap(err, "Codec.Encode rand.Read")
	}

	sealed := secretbox.Seal(nonce[:], payload, &nonce, &c.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode opens a cookie value back into a session. Any failure is
// ErrSessionInvalid; no distinction is made between garbage, truncation and
// tampering.
func (c *Codec) Decode(value string) (Session, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(sealed) < 24 {
		return Session{}, errors.Wrap(bserrors.ErrSessionInvalid, "Codec.Decode")
	}

	var nonce [24]byte
	copy(nonce[:], sealed[:24])

	payload, ok := secretbox.Open(nil, sealed[24:], &nonce, &c.key)
	if !ok {
		return Session{}, errors.Wrap(bserrors.ErrSessionInvalid, "Codec.Decode Open")
	}

	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return Session{}, errors.Wrap(bserrors.ErrSessionInvalid, "Codec.Decode Unmarshal")
	}
	return s, nil
}

// Write sets the session cookie on the response.
func (c *Codec) Write(w http.ResponseWriter, r *http.Request, s Session) error {
	value, err := c.Encode(s)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(Lifetime.Seconds()),
	})
	return nil
}

// Read extracts and opens the session cookie from the request.
func (c *Codec) Read(r *http.Request) (Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Session{}, errors.Wrap(bserrors.ErrSessionInvalid, "Codec.Read no cookie")
	}
	return c.Decode(cookie.Value)
}

// Clear expires the session cookie.
func (c *Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
