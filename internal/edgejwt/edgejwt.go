// Package edgejwt verifies HS256 tokens with the standard library only.
//
// It is used where the full token library is not loaded, such as the
// forward-auth endpoint consulted by a reverse proxy, and accepts exactly
// the tokens the primary token service accepts.
package edgejwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Algorithm is the only accepted signing algorithm.
const Algorithm = "HS256"

// ErrInvalidToken is returned for every rejected token.
var ErrInvalidToken = errors.New("edgejwt: invalid token")

// Payload holds the claims read from a verified token.
type Payload struct {
	UserID    int      `json:"user_id"`
	Email     string   `json:"email"`
	Role      string   `json:"role"`
	ID        string   `json:"jti,omitempty"`
	Subject   string   `json:"sub,omitempty"`
	Issuer    string   `json:"iss,omitempty"`
	IssuedAt  *float64 `json:"iat,omitempty"`
	ExpiresAt *float64 `json:"exp,omitempty"`
	NotBefore *float64 `json:"nbf,omitempty"`

	// Audience is not enforced, but it must be a string, null or an array
	// of strings for the token to be well formed.
	Audience json.RawMessage `json:"aud,omitempty"`
}

// Expiry returns the expiry time, or the zero time when the claim is absent.
func (p *Payload) Expiry() time.Time {
	if p.ExpiresAt == nil {
		return time.Time{}
	}
	return secondsToTime(*p.ExpiresAt)
}

type header struct {
	Alg string `json:"alg"`
}

// Verify checks the signature and time claims of token under secret.
// Every failure yields ErrInvalidToken.
func Verify(token, secret string) (*Payload, error) {
	return VerifyAt(token, secret, time.Now())
}

// VerifyAt is Verify with an explicit clock.
func VerifyAt(token, secret string, now time.Time) (*Payload, error) {
	if secret == "" {
		return nil, ErrInvalidToken
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}

	rawHeader, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}
	var h header
	if err := json.Unmarshal(rawHeader, &h); err != nil {
		return nil, ErrInvalidToken
	}
	if h.Alg != Algorithm {
		return nil, ErrInvalidToken
	}

	rawPayload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}
	var p Payload
	if err := json.Unmarshal(rawPayload, &p); err != nil {
		return nil, ErrInvalidToken
	}
	if !wellFormedAudience(p.Audience) {
		return nil, ErrInvalidToken
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, ErrInvalidToken
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(parts[0] + "." + parts[1]))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, ErrInvalidToken
	}

	// Time claims are compared at whole-second precision.
	if p.ExpiresAt != nil && !now.Before(secondsToTime(*p.ExpiresAt)) {
		return nil, ErrInvalidToken
	}
	if p.NotBefore != nil && now.Before(secondsToTime(*p.NotBefore)) {
		return nil, ErrInvalidToken
	}

	return &p, nil
}

func secondsToTime(s float64) time.Time {
	return time.Unix(int64(s), 0)
}

func wellFormedAudience(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch aud := v.(type) {
	case nil, string:
		return true
	case []interface{}:
		for _, e := range aud {
			if _, ok := e.(string); !ok {
				return false
			}
		}
		return true
	}
	return false
}
