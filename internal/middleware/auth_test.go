package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"converso-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(t *testing.T, jwtManager *token.JWTManager) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(jwtManager))
	r.GET("/whoami", func(c *gin.Context) {
		claims := c.MustGet("claims").(*token.SessionClaims)
		c.JSON(http.StatusOK, gin.H{"userId": claims.UserID})
	})
	return r
}

func TestAuth_MissingHeaderRejected(t *testing.T) {
	r := newAuthRouter(t, token.NewJWTManager("test-secret", 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuth_MalformedHeaderRejected(t *testing.T) {
	r := newAuthRouter(t, token.NewJWTManager("test-secret", 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuth_InvalidTokenRejected(t *testing.T) {
	r := newAuthRouter(t, token.NewJWTManager("test-secret", 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuth_ValidTokenStoresClaims(t *testing.T) {
	jwtManager := token.NewJWTManager("test-secret", 1)
	r := newAuthRouter(t, jwtManager)

	tokenString, err := jwtManager.GenerateToken("user_1", "pro", nil)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body := w.Body.String(); !strings.Contains(body, `"userId":"user_1"`) {
		t.Fatalf("expected user id in body, got %s", body)
	}
}
