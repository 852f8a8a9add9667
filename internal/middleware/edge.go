package middleware

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/smsi-platform/smsi-backend/internal/edgejwt"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/service"
)

// EdgeVerifier adapts edgejwt to the TokenVerifier interface.
type EdgeVerifier struct {
	secret string
	now    func() time.Time
}

// NewEdgeVerifier creates an EdgeVerifier for the shared secret.
func NewEdgeVerifier(secret string) *EdgeVerifier {
	return &EdgeVerifier{secret: secret, now: time.Now}
}

// WithClock replaces the time source.
func (v *EdgeVerifier) WithClock(now func() time.Time) *EdgeVerifier {
	v.now = now
	return v
}

// VerifyToken implements TokenVerifier.
func (v *EdgeVerifier) VerifyToken(token string) (*service.Claims, error) {
	p, err := edgejwt.VerifyAt(token, v.secret, v.now())
	if err != nil {
		return nil, service.ErrTokenInvalid
	}
	return ClaimsFromPayload(p), nil
}

// ClaimsFromPayload converts an edge payload into service claims.
func ClaimsFromPayload(p *edgejwt.Payload) *service.Claims {
	claims := &service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        p.ID,
			Subject:   p.Subject,
			Issuer:    p.Issuer,
			IssuedAt:  numericDate(p.IssuedAt),
			ExpiresAt: numericDate(p.ExpiresAt),
			NotBefore: numericDate(p.NotBefore),
		},
		UserID: p.UserID,
		Email:  p.Email,
		Role:   model.Role(p.Role),
	}
	return claims
}

func numericDate(seconds *float64) *jwt.NumericDate {
	if seconds == nil {
		return nil
	}
	return jwt.NewNumericDate(time.Unix(int64(*seconds), 0))
}
