// Package pwhash implements salted password hashing with argon2id using the
// PHC string format: $argon2id$v=19$m=<KiB>,t=<time>,p=<par>$<saltB64>$<hashB64>
package pwhash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

// Params configures the argon2id hashing parameters.
type Params struct {
	Time        uint32 `yaml:"time"`
	MemoryKiB   uint32 `yaml:"memory_kib"`
	Parallelism uint8  `yaml:"parallelism"`
	KeyLen      uint32 `yaml:"key_len"`
	SaltLen     uint32 `yaml:"salt_len"`
}

// DefaultParams returns the parameters used when none are configured.
func DefaultParams() Params {
	return Params{
		Time:        1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		KeyLen:      32,
		SaltLen:     16,
	}
}

// IsZero reports whether p carries no configured values.
func (p Params) IsZero() bool {
	return p.Time == 0
}

// Equal reports whether both parameter sets describe the same cost.
func (p Params) Equal(o Params) bool {
	return p.Time == o.Time && p.MemoryKiB == o.MemoryKiB &&
		p.Parallelism == o.Parallelism && p.KeyLen == o.KeyLen && p.SaltLen == o.SaltLen
}

// Hash returns a PHC-formatted argon2id hash of password with a fresh salt.
func Hash(password string, p Params) (string, error) {
	if p.IsZero() {
		p = DefaultParams()
	}
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "pwhash: failed to generate salt")
	}
	dk := argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Parallelism, p.KeyLen)
	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		p.MemoryKiB, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

// Verify checks password against a PHC-formatted argon2id hash in constant
// time. A wrong password yields (false, nil); only a malformed hash yields an
// error.
func Verify(encoded, password string) (bool, error) {
	p, salt, hash, err := parse(encoded)
	if err != nil {
		return false, err
	}
	dk := argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Parallelism, uint32(len(hash)))
	return subtle.ConstantTimeCompare(dk, hash) == 1, nil
}

// ExtractParams returns the parameters encoded in a PHC-formatted hash.
func ExtractParams(encoded string) (Params, error) {
	p, _, _, err := parse(encoded)
	return p, err
}

func parse(encoded string) (Params, []byte, []byte, error) {
	var p Params
	if !strings.HasPrefix(encoded, "$argon2id$") {
		return p, nil, nil, errors.New("pwhash: unsupported password hash format")
	}
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return p, nil, nil, errors.New("pwhash: invalid argon2id hash format")
	}
	if parts[2] != "v=19" {
		return p, nil, nil, errors.New("pwhash: unsupported argon2 version")
	}
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, found := strings.Cut(kv, "=")
		if !found {
			return p, nil, nil, errors.Errorf("pwhash: malformed parameter '%s'", kv)
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return p, nil, nil, errors.Wrapf(err, "pwhash: malformed parameter '%s'", kv)
		}
		switch k {
		case "m":
			p.MemoryKiB = uint32(n)
		case "t":
			p.Time = uint32(n)
		case "p":
			if n > 255 {
				return p, nil, nil, errors.Errorf("pwhash: parallelism out of range")
			}
			p.Parallelism = uint8(n)
		}
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, errors.Wrap(err, "pwhash: malformed salt")
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, errors.Wrap(err, "pwhash: malformed hash")
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(hash))
	return p, salt, hash, nil
}
