package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/response"
)

// RequireAuthenticated only checks that Authenticate resolved a principal.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetPrincipal(c) == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
			return
		}
		c.Next()
	}
}

// RequireRole rejects a principal whose role differs from required, unless
// required is the base "user" role, which every authenticated principal holds.
func RequireRole(required model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
			return
		}

		if p.Role != required && required != model.RoleUser {
			response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}

		c.Next()
	}
}
