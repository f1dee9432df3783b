package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(env string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(env))
	r.GET("/api/v1/files", func(c *gin.Context) {
		c.String(http.StatusOK, UserIDFromContext(c))
	})
	r.GET("/api/v1/public/share/tok", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthGuestHeaderIsDevOnly(t *testing.T) {
	cases := []struct {
		env  string
		want int
	}{
		{"dev", http.StatusOK},
		{"local", http.StatusOK},
		{"staging", http.StatusUnauthorized},
		{"production", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		router := newAuthRouter(tc.env)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
		req.Header.Set("X-Guest-Id", "alice")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("env %q: expected %d, got %d", tc.env, tc.want, rec.Code)
		}
		if tc.want == http.StatusOK && rec.Body.String() != "guest:alice" {
			t.Fatalf("env %q: user id = %q", tc.env, rec.Body.String())
		}
	}
}

func TestAuthPublicPathsNeedNoIdentity(t *testing.T) {
	router := newAuthRouter("production")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/share/tok", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("public path: expected 200, got %d", rec.Code)
	}
}
