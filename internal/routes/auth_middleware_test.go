package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"room-access-control/internal/config"
	"room-access-control/internal/jwt"

	"github.com/gin-gonic/gin"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	config.Cfg = &config.Config{Secret: "test-secret", TokenTTL: 1}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/whoami", AuthMiddleware(), func(c *gin.Context) {
		id := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"email": id.Email, "role": id.Role})
	})
	return r
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	r := testRouter(t)

	token, err := jwt.GenerateJWT(jwt.NewAuthClaim("42", "student@kkumail.com", "user"))
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["email"] != "student@kkumail.com" || body["role"] != "user" {
		t.Errorf("identity = %v", body)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	r := testRouter(t)

	valid, _ := jwt.GenerateJWT(jwt.NewAuthClaim("42", "a@b.c", "user"))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"bare token without scheme", valid},
		{"garbage token", "Bearer not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestAuthMiddleware_TokenSignedWithOtherSecret(t *testing.T) {
	r := testRouter(t)

	// Sign with a different secret, then restore
	config.Cfg.Secret = "other-secret"
	token, _ := jwt.GenerateJWT(jwt.NewAuthClaim("42", "a@b.c", "user"))
	config.Cfg.Secret = "test-secret"

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestCurrentIdentity_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if id := CurrentIdentity(c); !id.IsZero() {
		t.Errorf("identity without auth = %+v, want zero", id)
	}
}
