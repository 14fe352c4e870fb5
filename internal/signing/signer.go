// Package signing mints and verifies expiring, HMAC-signed media URLs.
// Every source and subtitle URL handed out in a play grant carries a token
// binding the object key, the issuing grant, and an expiry instant, so a
// leaked URL is useless once the grant lapses.
package signing

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// tokenVersion is the wire version prefix of media tokens.
	tokenVersion = "v1"

	// allowedClockSkew tolerates minor clock drift between issuer instances.
	allowedClockSkew = 15 * time.Second

	// generatedKeyLength is the size of an auto-generated dev key.
	generatedKeyLength = 32
)

// Verification errors.
var (
	// ErrMalformedToken indicates a token that does not parse.
	ErrMalformedToken = errors.New("malformed media token")
	// ErrBadSignature indicates a token whose signature does not verify.
	ErrBadSignature = errors.New("media token signature mismatch")
	// ErrTokenExpired indicates a token past its expiry.
	ErrTokenExpired = errors.New("media token expired")
	// ErrKeyMismatch indicates a token presented for a different object key.
	ErrKeyMismatch = errors.New("media token bound to a different key")
)

// mediaClaims is the signed payload of a media token.
type mediaClaims struct {
	StorageKey string `json:"key"`
	GrantID    string `json:"grantId,omitempty"`
	IssuedAt   int64  `json:"iat"`
	ExpiresAt  int64  `json:"exp"`
}

// Signer mints and verifies media tokens with a single HMAC-SHA256 key.
type Signer struct {
	key     []byte
	baseURL string
}

// NewSigner creates a Signer rooted at baseURL. An empty key generates an
// ephemeral random key: fine for development, useless for multi-instance
// deployments since each instance would mint unverifiable URLs.
func NewSigner(key, baseURL string) (*Signer, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("media base URL is required")
	}

	raw := []byte(key)
	if len(raw) == 0 {
		raw = make([]byte, generatedKeyLength)
		if _, err := rand.Read(raw); err != nil {
			return nil, fmt.Errorf("generating signing key: %w", err)
		}
	}

	return &Signer{key: raw, baseURL: baseURL}, nil
}

// SignedURL mints an expiring URL for the given object key, bound to the
// issuing grant.
func (s *Signer) SignedURL(storageKey, grantID string, issuedAt, expiresAt time.Time) (string, error) {
	storageKey = strings.TrimLeft(strings.TrimSpace(storageKey), "/")
	if storageKey == "" {
		return "", fmt.Errorf("storage key is required")
	}

	claims := mediaClaims{
		StorageKey: storageKey,
		GrantID:    grantID,
		IssuedAt:   issuedAt.UTC().Unix(),
		ExpiresAt:  expiresAt.UTC().Unix(),
	}
	payloadRaw, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshaling media claims: %w", err)
	}

	encodedPayload := base64.RawURLEncoding.EncodeToString(payloadRaw)
	sig := s.signature(encodedPayload)
	token := tokenVersion + "." + encodedPayload + "." + base64.RawURLEncoding.EncodeToString(sig)

	return s.baseURL + "/" + storageKey + "?token=" + url.QueryEscape(token), nil
}

// Verify checks a token against the object key it is being redeemed for.
func (s *Signer) Verify(token, storageKey string, now time.Time) error {
	storageKey = strings.TrimLeft(strings.TrimSpace(storageKey), "/")

	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 || parts[0] != tokenVersion {
		return ErrMalformedToken
	}

	payloadRaw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ErrMalformedToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return ErrMalformedToken
	}

	if !hmac.Equal(sig, s.signature(parts[1])) {
		return ErrBadSignature
	}

	var claims mediaClaims
	if err := json.Unmarshal(payloadRaw, &claims); err != nil {
		return ErrMalformedToken
	}

	if claims.IssuedAt <= 0 || claims.ExpiresAt <= claims.IssuedAt {
		return ErrMalformedToken
	}

	nowUnix := now.UTC().Unix()
	if claims.ExpiresAt < nowUnix {
		return ErrTokenExpired
	}
	if claims.IssuedAt > nowUnix+int64(allowedClockSkew/time.Second) {
		return ErrMalformedToken
	}
	if claims.StorageKey != storageKey {
		return ErrKeyMismatch
	}

	return nil
}

func (s *Signer) signature(encodedPayload string) []byte {
	mac := hmac.New(sha256.New, s.key)
	_, _ = mac.Write([]byte(encodedPayload))
	return mac.Sum(nil)
}
