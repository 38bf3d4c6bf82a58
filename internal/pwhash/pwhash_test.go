package pwhash

import (
	"strings"
	"testing"
)

var testParams = Params{
	Time:        1,
	MemoryKiB:   8 * 1024,
	Parallelism: 1,
	KeyLen:      32,
	SaltLen:     16,
}

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("secret", testParams)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
		t.Errorf("hash is not in PHC format: %s", encoded)
	}

	ok, err := Verify(encoded, "secret")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Error("correct password was rejected")
	}

	ok, err = Verify(encoded, "wrong")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Error("wrong password was accepted")
	}
}

func TestHashIsSalted(t *testing.T) {
	a, err := Hash("secret", testParams)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	b, err := Hash("secret", testParams)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical, salt is not random")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$not*base64$aGFzaA",
		"$argon2id$v=19$m=8192,t=1$c2FsdA$aGFzaA$extra",
	} {
		if _, err := Verify(encoded, "secret"); err == nil {
			t.Errorf("Verify accepted malformed hash %q", encoded)
		}
	}
}

func TestExtractParams(t *testing.T) {
	encoded, err := Hash("secret", testParams)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	p, err := ExtractParams(encoded)
	if err != nil {
		t.Fatalf("ExtractParams failed: %v", err)
	}
	if !p.Equal(testParams) {
		t.Errorf("extracted params %+v, want %+v", p, testParams)
	}
}

func TestHashZeroParamsUsesDefaults(t *testing.T) {
	encoded, err := Hash("secret", Params{})
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	p, err := ExtractParams(encoded)
	if err != nil {
		t.Fatalf("ExtractParams failed: %v", err)
	}
	if !p.Equal(DefaultParams()) {
		t.Errorf("zero params did not fall back to defaults, got %+v", p)
	}
}
