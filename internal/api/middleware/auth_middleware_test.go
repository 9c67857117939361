package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kemalcalak/Resume-Builder/internal/auth"
)

type fakeVerifier map[string]auth.Identity

func (f fakeVerifier) Verify(token string) (auth.Identity, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return auth.Identity{}, auth.ErrInvalidToken
}

func newAuthRouter(reached *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	verifier := fakeVerifier{"good": {Subject: "kp_1", GivenName: "Ada"}}
	r.GET("/private", AuthMiddleware(verifier), func(c *gin.Context) {
		*reached = true
		owner, _ := OwnerID(c)
		c.String(http.StatusOK, owner+"|"+IdentityFromContext(c).GivenName)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"extra parts", "Bearer good extra", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
		{"case insensitive scheme", "bearer good", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reached := false
			r := newAuthRouter(&reached)

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Fatalf("expected %d got %d body=%s", tc.status, w.Code, w.Body.String())
			}
			if reached != (tc.status == http.StatusOK) {
				t.Fatalf("handler reached=%v for status %d", reached, tc.status)
			}
			if tc.status == http.StatusOK && w.Body.String() != "kp_1|Ada" {
				t.Fatalf("unexpected body %q", w.Body.String())
			}
		})
	}
}

func TestOwnerID_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := OwnerID(c); ok {
		t.Fatal("expected no owner id")
	}
}

func TestInternalSecretMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", InternalSecretMiddleware("s3cret"), func(c *gin.Context) { c.Status(http.StatusOK) })

	for header, want := range map[string]int{"": http.StatusUnauthorized, "nope": http.StatusUnauthorized, "s3cret": http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		if header != "" {
			req.Header.Set("X-Internal-Secret", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("secret %q: expected %d got %d", header, want, w.Code)
		}
	}
}
