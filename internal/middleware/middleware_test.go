package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bpadilla17/radladder-game/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const testSecret = "test-secret-key"

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionAuth(t *testing.T) {
	r := gin.New()
	r.GET("/games/:id", SessionAuth(testSecret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextSessionID)+"/"+c.GetString(ContextPlayerName))
	})

	token, err := jwt.GenerateSessionToken("s1", "Dr. Ng", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"header", "/games/s1", "Bearer " + token, http.StatusOK},
		{"query", "/games/s1?token=" + token, "", http.StatusOK},
		{"missing", "/games/s1", "", http.StatusUnauthorized},
		{"wrong scheme", "/games/s1", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "/games/s1", "Bearer nope", http.StatusUnauthorized},
		{"other session", "/games/s2", "Bearer " + token, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			if w.Code != tt.want {
				t.Fatalf("got %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
			if tt.want == http.StatusOK && w.Body.String() != "s1/Dr. Ng" {
				t.Fatalf("unexpected context values: %s", w.Body.String())
			}
		})
	}
}

func TestAdminKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		sent string
		want int
	}{
		{"match", "secret", "secret", http.StatusOK},
		{"mismatch", "secret", "guess", http.StatusUnauthorized},
		{"missing", "secret", "", http.StatusUnauthorized},
		{"disabled", "", "anything", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin", AdminKey(tt.key), func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.sent != "" {
				req.Header.Set(AdminKeyHeader, tt.sent)
			}
			if w := serve(r, req); w.Code != tt.want {
				t.Fatalf("got %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/fail", func(c *gin.Context) {
		c.Status(http.StatusBadGateway)
		c.Error(http.ErrHandlerTimeout)
	})

	if w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil)); w.Code != http.StatusInternalServerError {
		t.Fatalf("panic: got %d", w.Code)
	}
	if w := serve(r, httptest.NewRequest(http.MethodGet, "/fail", nil)); w.Code != http.StatusBadGateway {
		t.Fatalf("attached error: got %d", w.Code)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := serve(r, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow origin header = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	if w := serve(r, req); w.Code != http.StatusForbidden {
		t.Fatalf("foreign origin: got %d", w.Code)
	}
}
