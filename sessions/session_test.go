package sessions_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bserrors "badstats/internal/errors"
	"badstats/sessions"
)

func withFrozenNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := sessions.NowFunc
	sessions.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { sessions.NowFunc = prev })
}

func TestNewSession(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFrozenNow(t, now)

	s := sessions.New()
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, now, s.Created)
	assert.NoError(t, s.Valid())

	other := sessions.New()
	assert.NotEqual(t, s.ID, other.ID)
}

func TestSessionValid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		session sessions.Session
		wantErr error
	}{
		{
			name:    "fresh session",
			session: sessions.Session{ID: "a", Created: now.Add(-time.Minute)},
		},
		{
			name:    "just inside lifetime",
			session: sessions.Session{ID: "a", Created: now.Add(-sessions.Lifetime)},
		},
		{
			name:    "past lifetime",
			session: sessions.Session{ID: "a", Created: now.Add(-sessions.Lifetime - time.Second)},
			wantErr: bserrors.ErrSessionExpired,
		},
		{
			name:    "created in the future",
			session: sessions.Session{ID: "a", Created: now.Add(time.Second)},
			wantErr: bserrors.ErrSessionInvalid,
		},
		{
			name:    "missing id",
			session: sessions.Session{Created: now},
			wantErr: bserrors.ErrSessionInvalid,
		},
		{
			name:    "zero creation instant",
			session: sessions.Session{ID: "a"},
			wantErr: bserrors.ErrSessionInvalid,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			withFrozenNow(t, now)
			err := tc.session.Valid()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, bserrors.Is(err, tc.wantErr))
			}
		})
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codec := sessions.NewCodec("test-secret")
	original := sessions.Session{ID: "session-1", Created: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	value, err := codec.Encode(original)
	require.NoError(t, err)

	decoded, err := codec.Decode(value)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestCodecRejectsTampering(t *testing.T) {
	codec := sessions.NewCodec("test-secret")
	value, err := codec.Encode(sessions.Session{ID: "session-1", Created: time.Now().UTC()})
	require.NoError(t, err)

	tampered := value[:len(value)-2] + "xx"
	_, err = codec.Decode(tampered)
	assert.True(t, bserrors.Is(err, bserrors.ErrSessionInvalid))
}

func TestCodecRejectsForeignKey(t *testing.T) {
	value, err := sessions.NewCodec("secret-a").Encode(sessions.Session{ID: "session-1", Created: time.Now().UTC()})
	require.NoError(t, err)

	_, err = sessions.NewCodec("secret-b").Decode(value)
	assert.True(t, bserrors.Is(err, bserrors.ErrSessionInvalid))
}

func TestCodecRejectsGarbage(t *testing.T) {
	codec := sessions.NewCodec("test-secret")

	for _, value := range []string{"", "!!!", "c2hvcnQ"} {
		_, err := codec.Decode(value)
		assert.True(t, bserrors.Is(err, bserrors.ErrSessionInvalid), "value %q", value)
	}
}
