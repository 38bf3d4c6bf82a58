package adminapi

import (
	"crypto/rand"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/duration"
)

const sessionSubject = "admin"

// SessionConf configures the admin sessions issued on login.
type SessionConf struct {
	// Secret is the HMAC key for session tokens. When empty, a random
	// per-process key is generated and sessions do not survive restarts.
	Secret string `yaml:"session_secret"`
	// Lifetime is how long an issued session stays valid.
	Lifetime duration.DurationOption `yaml:"session_lifetime"`
}

// SessionIssuer issues and verifies the signed session tokens the admin API
// hands out after a successful admin login.
type SessionIssuer struct {
	key      []byte
	lifetime time.Duration
}

// NewSessionIssuer creates a SessionIssuer for the passed SessionConf.
func NewSessionIssuer(conf SessionConf) (*SessionIssuer, error) {
	key := []byte(conf.Secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, errors.Wrap(err, "adminapi: failed to generate session key")
		}
		log.Warn("no session secret configured, admin sessions will not survive a restart")
	}
	lifetime := conf.Lifetime.Duration()
	if lifetime == 0 {
		lifetime = 12 * time.Hour
	}
	return &SessionIssuer{
		key:      key,
		lifetime: lifetime,
	}, nil
}

// Issue returns a fresh signed session token and its expiry time.
func (s *SessionIssuer) Issue() (string, time.Time, error) {
	now := time.Now()
	expiry := now.Add(s.lifetime)
	tok, err := jwt.NewBuilder().
		Subject(sessionSubject).
		IssuedAt(now).
		Expiration(expiry).
		Build()
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "adminapi: failed to build session token")
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), s.key))
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "adminapi: failed to sign session token")
	}
	return string(signed), expiry, nil
}

// Verify checks signature, expiry and subject of a session token.
func (s *SessionIssuer) Verify(raw string) error {
	_, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.HS256(), s.key),
		jwt.WithValidate(true),
		jwt.WithSubject(sessionSubject),
	)
	return err
}
