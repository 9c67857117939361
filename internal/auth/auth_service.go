// Package auth verifies the bearer tokens issued by the identity provider.
package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the caller as asserted by a verified token.
type Identity struct {
	Subject    string
	GivenName  string
	FamilyName string
	Email      string
}

// DisplayName joins the given and family names.
func (i Identity) DisplayName() string {
	return strings.TrimSpace(i.GivenName + " " + i.FamilyName)
}

// TokenClaims are the claims read from provider tokens.
type TokenClaims struct {
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Email      string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks RS256 signatures against the provider's public key.
type Verifier struct {
	publicKey *rsa.PublicKey
	issuer    string
}

// NewVerifier parses the PEM public key. An empty issuer disables the iss check.
func NewVerifier(publicKeyPEM []byte, issuer string) (*Verifier, error) {
	if len(publicKeyPEM) == 0 {
		return nil, errors.New("public key pem is required")
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse rsa public key: %w", err)
	}
	return &Verifier{publicKey: publicKey, issuer: issuer}, nil
}

// NewVerifierFromFile reads the public key from path.
func NewVerifierFromFile(path, issuer string) (*Verifier, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	return NewVerifier(pem, issuer)
}

// Verify parses the token and returns the identity it asserts.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Identity{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.publicKey, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		Subject:    claims.Subject,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
		Email:      claims.Email,
	}, nil
}

// Issuer signs tokens with the matching private key. It backs the admin CLI
// for local development and tests; production tokens come from the provider.
type Issuer struct {
	privateKey *rsa.PrivateKey
	issuer     string
	ttl        time.Duration
}

// NewIssuer parses the PEM private key.
func NewIssuer(privateKeyPEM []byte, issuer string, ttl time.Duration) (*Issuer, error) {
	if len(privateKeyPEM) == 0 {
		return nil, errors.New("private key pem is required")
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse rsa private key: %w", err)
	}
	return NewIssuerFromKey(privateKey, issuer, ttl), nil
}

// NewIssuerFromKey wraps an already parsed key.
func NewIssuerFromKey(privateKey *rsa.PrivateKey, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{privateKey: privateKey, issuer: issuer, ttl: ttl}
}

// Issue signs a token asserting id.
func (i *Issuer) Issue(id Identity) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		GivenName:  id.GivenName,
		FamilyName: id.FamilyName,
		Email:      id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			Issuer:    i.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
