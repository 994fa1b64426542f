package csrf_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"badstats/csrf"
	"badstats/csrf/repofake"
	bserrors "badstats/internal/errors"
)

func withFrozenNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := csrf.NowFunc
	csrf.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { csrf.NowFunc = prev })
}

func TestIssueAndValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFrozenNow(t, now)

	repo := repofake.NewFakeCSRFRepo()
	manager := csrf.NewManager(repo)

	tokenValue, err := manager.Issue(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, tokenValue)
	assert.Equal(t, 1, repo.Len())

	assert.NoError(t, manager.Validate(context.Background(), tokenValue))
}

func TestValidateDoesNotConsumeToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFrozenNow(t, now)

	repo := repofake.NewFakeCSRFRepo()
	manager := csrf.NewManager(repo)

	tokenValue, err := manager.Issue(context.Background())
	require.NoError(t, err)

	// The same token serves both handshake legs: the form submission and the
	// state round-trip on the callback.
	require.NoError(t, manager.Validate(context.Background(), tokenValue))
	assert.NoError(t, manager.Validate(context.Background(), tokenValue))
}

func TestValidateWindow(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		checkAt time.Time
		wantErr bool
	}{
		{name: "immediately", checkAt: issued, wantErr: false},
		{name: "just inside window", checkAt: issued.Add(csrf.Validity - time.Second), wantErr: false},
		{name: "exactly at window", checkAt: issued.Add(csrf.Validity), wantErr: true},
		{name: "past window", checkAt: issued.Add(csrf.Validity + time.Second), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			withFrozenNow(t, issued)
			repo := repofake.NewFakeCSRFRepo()
			manager := csrf.NewManager(repo)

			tokenValue, err := manager.Issue(context.Background())
			require.NoError(t, err)

			csrf.NowFunc = func() time.Time { return tc.checkAt }
			err = manager.Validate(context.Background(), tokenValue)
			if tc.wantErr {
				assert.True(t, bserrors.Is(err, bserrors.ErrInvalidCSRF))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDeletesExpiredToken(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFrozenNow(t, issued)

	repo := repofake.NewFakeCSRFRepo()
	manager := csrf.NewManager(repo)

	tokenValue, err := manager.Issue(context.Background())
	require.NoError(t, err)

	csrf.NowFunc = func() time.Time { return issued.Add(csrf.Validity + time.Minute) }
	err = manager.Validate(context.Background(), tokenValue)
	assert.True(t, bserrors.Is(err, bserrors.ErrInvalidCSRF))
	assert.Zero(t, repo.Len(), "an expired token is deleted the moment a check finds it")
}

func TestValidateUnknownAndEmptyTokens(t *testing.T) {
	repo := repofake.NewFakeCSRFRepo()
	manager := csrf.NewManager(repo)

	assert.True(t, bserrors.Is(manager.Validate(context.Background(), "never-issued"), bserrors.ErrInvalidCSRF))
	assert.True(t, bserrors.Is(manager.Validate(context.Background(), ""), bserrors.ErrInvalidCSRF))
}

func TestIssuedTokensAreUnique(t *testing.T) {
	repo := repofake.NewFakeCSRFRepo()
	manager := csrf.NewManager(repo)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tokenValue, err := manager.Issue(context.Background())
		require.NoError(t, err)
		require.False(t, seen[tokenValue])
		seen[tokenValue] = true
	}
}
