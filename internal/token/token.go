// Package token generates the random identifiers and bearer tokens used by
// the user store.
package token

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// accessTokenBytes is the entropy of an access token. 32 bytes give a
// collision probability low enough that token uniqueness is not re-checked
// against existing users.
const accessTokenBytes = 32

// NewUserID returns a fresh opaque user id.
func NewUserID() string {
	return uuid.NewString()
}

// NewAccessToken returns a fresh high-entropy url-safe bearer token.
func NewAccessToken() (string, error) {
	b := make([]byte, accessTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "token: failed to read random bytes")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
