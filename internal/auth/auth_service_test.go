package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newKeyPair(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	return key, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

func TestVerify_RoundTrip(t *testing.T) {
	key, pub := newKeyPair(t)
	issuer := NewIssuerFromKey(key, "https://id.example.com", time.Hour)
	verifier, err := NewVerifier(pub, "https://id.example.com")
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	token, err := issuer.Issue(Identity{Subject: "kp_123", GivenName: "Ada", FamilyName: "Lovelace", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	id, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.Subject != "kp_123" || id.Email != "ada@example.com" {
		t.Fatalf("unexpected identity %+v", id)
	}
	if id.DisplayName() != "Ada Lovelace" {
		t.Fatalf("display name = %q", id.DisplayName())
	}
}

func TestVerify_Rejects(t *testing.T) {
	key, pub := newKeyPair(t)
	otherKey, _ := newKeyPair(t)
	verifier, err := NewVerifier(pub, "https://id.example.com")
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	expired, _ := NewIssuerFromKey(key, "https://id.example.com", -time.Minute).Issue(Identity{Subject: "kp_1"})
	wrongIssuer, _ := NewIssuerFromKey(key, "https://evil.example.com", time.Hour).Issue(Identity{Subject: "kp_1"})
	wrongKey, _ := NewIssuerFromKey(otherKey, "https://id.example.com", time.Hour).Issue(Identity{Subject: "kp_1"})
	noSubject, _ := NewIssuerFromKey(key, "https://id.example.com", time.Hour).Issue(Identity{})
	hs256, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "kp_1",
		Issuer:    "https://id.example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"expired":      expired,
		"wrong issuer": wrongIssuer,
		"wrong key":    wrongKey,
		"no subject":   noSubject,
		"hs256":        hs256,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestVerify_NoIssuerCheck(t *testing.T) {
	key, pub := newKeyPair(t)
	verifier, err := NewVerifier(pub, "")
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	token, err := NewIssuerFromKey(key, "anyone", time.Hour).Issue(Identity{Subject: "kp_9"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(token); err != nil {
		t.Fatalf("verify: %v", err)
	}
}
