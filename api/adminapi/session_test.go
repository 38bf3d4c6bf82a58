package adminapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zachmann/go-utils/duration"
)

func TestSessionIssueAndVerify(t *testing.T) {
	s, err := NewSessionIssuer(SessionConf{Secret: "test-secret"})
	require.NoError(t, err)

	tok, expiry, err := s.Issue()
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), expiry, time.Minute)

	assert.NoError(t, s.Verify(tok))
}

func TestSessionVerifyRejectsGarbage(t *testing.T) {
	s, err := NewSessionIssuer(SessionConf{Secret: "test-secret"})
	require.NoError(t, err)

	assert.Error(t, s.Verify(""))
	assert.Error(t, s.Verify("not-a-token"))
}

func TestSessionVerifyRejectsForeignKey(t *testing.T) {
	a, err := NewSessionIssuer(SessionConf{Secret: "secret-a"})
	require.NoError(t, err)
	b, err := NewSessionIssuer(SessionConf{Secret: "secret-b"})
	require.NoError(t, err)

	tok, _, err := a.Issue()
	require.NoError(t, err)
	assert.Error(t, b.Verify(tok))
}

func TestSessionVerifyRejectsExpired(t *testing.T) {
	s, err := NewSessionIssuer(SessionConf{Secret: "test-secret"})
	require.NoError(t, err)
	s.lifetime = -time.Minute

	tok, _, err := s.Issue()
	require.NoError(t, err)
	assert.Error(t, s.Verify(tok))
}

func TestSessionConfiguredLifetime(t *testing.T) {
	s, err := NewSessionIssuer(
		SessionConf{
			Secret:   "test-secret",
			Lifetime: duration.DurationOption(30 * time.Minute),
		},
	)
	require.NoError(t, err)

	_, expiry, err := s.Issue()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiry, time.Minute)
}

func TestSessionRandomKeyWhenUnconfigured(t *testing.T) {
	a, err := NewSessionIssuer(SessionConf{})
	require.NoError(t, err)
	b, err := NewSessionIssuer(SessionConf{})
	require.NoError(t, err)

	tok, _, err := a.Issue()
	require.NoError(t, err)
	assert.NoError(t, a.Verify(tok))
	assert.Error(t, b.Verify(tok), "two issuers without a secret share a key")
}
