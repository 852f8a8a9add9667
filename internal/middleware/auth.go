package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/response"
	"github.com/smsi-platform/smsi-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for verified JWT claims.
	ContextKeyClaims = "claims"
	// ContextKeyPrincipal is the Gin context key for the resolved identity.
	ContextKeyPrincipal = "principal"

	// AuthCookieName is the cookie carrying the session token.
	AuthCookieName = "auth-token"
)

// TokenVerifier validates a raw token and returns its claims.
// Implemented by service.AuthService and EdgeVerifier.
type TokenVerifier interface {
	VerifyToken(token string) (*service.Claims, error)
}

// Authenticate verifies the request token once and stores the claims and
// principal on the context. Missing and invalid tokens get the same 401.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ExtractToken(c)
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
			return
		}

		claims, err := verifier.VerifyToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyPrincipal, claims.Principal())
		c.Next()
	}
}

// AuthenticateWS verifies a token passed as ?token=... on WebSocket upgrades,
// where browsers cannot set headers. Cookies are still honoured first.
func AuthenticateWS(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ExtractToken(c)
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
			return
		}

		claims, err := verifier.VerifyToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyPrincipal, claims.Principal())
		c.Next()
	}
}

// ExtractToken returns the request token. A non-empty auth cookie wins over
// the Authorization header; only one source is ever used.
func ExtractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetPrincipal retrieves the authenticated identity from the Gin context.
func GetPrincipal(c *gin.Context) *model.Principal {
	val, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return nil
	}
	p, ok := val.(*model.Principal)
	if !ok {
		return nil
	}
	return p
}
