package security

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func fastParams() Argon2Params {
	return Argon2Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func TestArgon2HashAndVerify(t *testing.T) {
	h := NewArgon2Hasher(fastParams())

	encoded, err := h.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected encoding %q", encoded)
	}
	if !h.Verify("correct horse battery", encoded) {
		t.Fatal("expected password to verify")
	}
	if h.Verify("wrong", encoded) {
		t.Fatal("wrong password must not verify")
	}

	again, _ := h.Hash("correct horse battery")
	if again == encoded {
		t.Fatal("salts must differ between hashes")
	}
}

func TestArgon2VerifyUsesStoredParams(t *testing.T) {
	encoded, err := NewArgon2Hasher(fastParams()).Hash("pw-123456")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !NewArgon2Hasher(DefaultArgon2Params()).Verify("pw-123456", encoded) {
		t.Fatal("verification must use parameters from the encoded hash")
	}
}

func TestArgon2VerifyRejectsGarbage(t *testing.T) {
	h := NewArgon2Hasher(fastParams())
	for _, encoded := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$AA$AA", "$argon2id$v=1$m=1,t=1,p=1$AA$AA"} {
		if h.Verify("x", encoded) {
			t.Fatalf("garbage %q must not verify", encoded)
		}
	}
}

func TestSessionIssuerRoundTrip(t *testing.T) {
	issuer, err := NewSessionIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	now := time.Now()
	session, err := issuer.Issue("principal-1", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !session.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", session.ExpiresAt)
	}
	id, err := issuer.Validate(session.Token)
	if err != nil || id != "principal-1" {
		t.Fatalf("expected principal-1, got %q err=%v", id, err)
	}
}

func TestSessionIssuerRejects(t *testing.T) {
	issuer, _ := NewSessionIssuer(testSecret, time.Hour)
	other, _ := NewSessionIssuer(strings.Repeat("z", 32), time.Hour)

	expired, _ := issuer.Issue("p", time.Now().Add(-2*time.Hour))
	foreign, _ := other.Issue("p", time.Now())

	for name, token := range map[string]string{"expired": expired.Token, "foreign": foreign.Token, "garbage": "a.b.c"} {
		if _, err := issuer.Validate(token); err == nil {
			t.Fatalf("%s token must be rejected", name)
		}
	}
}

func TestSessionIssuerWeakSecret(t *testing.T) {
	if _, err := NewSessionIssuer("short", time.Hour); err == nil {
		t.Fatal("expected weak secret error")
	}
}
