package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/response"
	"github.com/smsi-platform/smsi-backend/internal/service"
)

const testSecret = "middleware-test-secret-long-enough-for-hs256"

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthService(t *testing.T, rdb *redis.Client) *service.AuthService {
	t.Helper()
	cfg := &config.Config{JWTSecret: testSecret, JWTExpiry: time.Hour, BcryptCost: 4}
	return service.NewAuthService(cfg, nil, rdb, zerolog.Nop())
}

func issue(t *testing.T, svc *service.AuthService, role model.Role) (string, *service.Claims) {
	t.Helper()
	token, claims, err := svc.IssueToken(&model.Principal{ID: 3, Email: "x@example.com", Role: role})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return token, claims
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	if body.Error == nil {
		return ""
	}
	return body.Error.Code
}

// gatedRouter mounts one route behind Authenticate and RequireRole.
func gatedRouter(v TokenVerifier, required model.Role) *gin.Engine {
	r := gin.New()
	r.GET("/resource", Authenticate(v), RequireRole(required), func(c *gin.Context) {
		p := GetPrincipal(c)
		c.String(http.StatusOK, string(p.Role))
	})
	return r
}

func TestAuthorizationGate(t *testing.T) {
	svc := newAuthService(t, nil)
	userToken, _ := issue(t, svc, model.RoleUser)
	adminToken, _ := issue(t, svc, model.RoleAdmin)

	tests := []struct {
		name     string
		required model.Role
		token    string
		want     int
		wantCode response.ErrCode
	}{
		{"no token", model.RoleUser, "", http.StatusUnauthorized, response.ErrUnauthenticated},
		{"garbage token", model.RoleUser, "abc.def.ghi", http.StatusUnauthorized, response.ErrUnauthenticated},
		{"user on user route", model.RoleUser, userToken, http.StatusOK, ""},
		{"admin on user route", model.RoleUser, adminToken, http.StatusOK, ""},
		{"user on admin route", model.RoleAdmin, userToken, http.StatusForbidden, response.ErrForbidden},
		{"admin on admin route", model.RoleAdmin, adminToken, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gatedRouter(svc, tt.required)
			req := httptest.NewRequest(http.MethodGet, "/resource", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
			if tt.wantCode != "" {
				if got := errorCode(t, w); got != tt.wantCode {
					t.Fatalf("code = %q, want %q", got, tt.wantCode)
				}
			}
		})
	}
}

func TestCookieWinsOverHeader(t *testing.T) {
	svc := newAuthService(t, nil)
	userToken, _ := issue(t, svc, model.RoleUser)
	adminToken, _ := issue(t, svc, model.RoleAdmin)

	tests := []struct {
		name   string
		cookie string
		header string
		want   int
	}{
		{"valid cookie beats admin header", userToken, "Bearer " + adminToken, http.StatusForbidden},
		{"invalid cookie is not rescued by header", "broken", "Bearer " + adminToken, http.StatusUnauthorized},
		{"empty cookie falls back to header", "", "Bearer " + adminToken, http.StatusOK},
		{"lowercase scheme accepted", "", "bearer " + adminToken, http.StatusOK},
		{"other scheme ignored", "", "Basic " + adminToken, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gatedRouter(svc, model.RoleAdmin)
			req := httptest.NewRequest(http.MethodGet, "/resource", nil)
			req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: tt.cookie})
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRequireAuthenticated(t *testing.T) {
	r := gin.New()
	r.GET("/open", RequireAuthenticated(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthenticateWSQueryToken(t *testing.T) {
	svc := newAuthService(t, nil)
	token, _ := issue(t, svc, model.RoleAdmin)

	r := gin.New()
	r.GET("/ws", AuthenticateWS(svc), RequireRole(model.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

type failingChecker struct{}

func (failingChecker) IsRevoked(context.Context, string) (bool, error) {
	return false, redis.ErrClosed
}

func TestRejectRevoked(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	svc := newAuthService(t, rdb)
	token, claims := issue(t, svc, model.RoleUser)

	route := func(checker RevocationChecker) *gin.Engine {
		r := gin.New()
		r.GET("/me", Authenticate(svc), RejectRevoked(checker, zerolog.Nop()), func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}
	call := func(r *gin.Engine) int {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if got := call(route(svc)); got != http.StatusOK {
		t.Fatalf("before logout status = %d, want 200", got)
	}

	if err := svc.Revoke(context.Background(), claims); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if got := call(route(svc)); got != http.StatusUnauthorized {
		t.Fatalf("after logout status = %d, want 401", got)
	}

	if got := call(route(failingChecker{})); got != http.StatusOK {
		t.Fatalf("lookup failure status = %d, want 200", got)
	}
}
