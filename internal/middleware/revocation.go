package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/response"
)

// RevocationChecker reports whether a token ID was revoked at logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RejectRevoked runs after Authenticate and refuses tokens on the denylist.
// Lookup errors let the request through; the signature check already passed.
func RejectRevoked(checker RevocationChecker, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "revocation").Logger()
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
			return
		}

		revoked, err := checker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Warn().Err(err).Msg("revocation lookup failed")
			c.Next()
			return
		}
		if revoked {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
			return
		}

		c.Next()
	}
}
