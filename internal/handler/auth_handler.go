package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/middleware"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/response"
	"github.com/smsi-platform/smsi-backend/internal/service"
	"github.com/smsi-platform/smsi-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	edge        middleware.TokenVerifier
	audit       Auditor
	cfg         *config.Config
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler. edge verifies tokens on the
// forward-auth endpoint.
func NewAuthHandler(
	authService *service.AuthService,
	edge middleware.TokenVerifier,
	audit Auditor,
	cfg *config.Config,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		edge:        edge,
		audit:       audit,
		cfg:         cfg,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// Register godoc
// POST /api/v1/auth/register
// Creates a learner account with recorded consent.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	record(c, h.audit, auditEvent{
		Action:     model.AuditRegister,
		Resource:   "user",
		ResourceID: user.ID,
		UserID:     user.ID,
	})

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password, returns a JWT and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.authService.VerifyCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failFromService(c, err)
		return
	}

	token, claims, err := h.authService.IssueToken(user.Principal())
	if err != nil {
		failFromService(c, err)
		return
	}

	h.setSessionCookie(c, token, int(h.cfg.JWTExpiry.Seconds()))

	record(c, h.audit, auditEvent{Action: model.AuditLogin, UserID: user.ID})

	response.Success(c, http.StatusOK, model.LoginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      *user,
	})
}

// Logout godoc
// POST /api/v1/auth/logout
// Revokes the current token and clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
		return
	}

	if err := h.authService.Revoke(c.Request.Context(), claims); err != nil {
		h.log.Warn().Err(err).Int("user_id", claims.UserID).Msg("token revocation failed")
	}

	h.setSessionCookie(c, "", -1)

	record(c, h.audit, auditEvent{Action: model.AuditLogout})

	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the currently authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
		return
	}

	user, err := h.authService.GetProfile(c.Request.Context(), p.ID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// Forward godoc
// GET /api/v1/auth/forward
// Forward-auth for the reverse proxy: 200 with identity headers when the
// token verifies, 401 otherwise.
func (h *AuthHandler) Forward(c *gin.Context) {
	tokenStr := middleware.ExtractToken(c)
	if tokenStr == "" {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
		return
	}

	claims, err := h.edge.VerifyToken(tokenStr)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
		return
	}

	if revoked, err := h.authService.IsRevoked(c.Request.Context(), claims.ID); err != nil {
		h.log.Warn().Err(err).Msg("revocation lookup failed")
	} else if revoked {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
		return
	}

	c.Header("X-User-Id", strconv.Itoa(claims.UserID))
	c.Header("X-User-Role", string(claims.Role))
	c.Header("X-User-Email", claims.Email)
	c.Status(http.StatusOK)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	setSessionCookie(c, h.cfg, token, maxAge)
}

// setSessionCookie writes or clears (maxAge < 0) the auth cookie.
func setSessionCookie(c *gin.Context, cfg *config.Config, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AuthCookieName, token, maxAge, "/", "", cfg.CookieSecure, true)
}
