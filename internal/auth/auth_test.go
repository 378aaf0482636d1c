package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/revisehub/revisehub/config"
	"github.com/revisehub/revisehub/internal/model"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newVerifier(secret string) *Verifier {
	return NewVerifier(&config.Config{Auth: config.Auth{JWTSecret: secret}})
}

func TestVerifyValidToken(t *testing.T) {
	v := newVerifier(testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-42",
		"email": "student@example.com",
		"name":  "Student",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	identity, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.UserID != "user-42" || identity.Email != "student@example.com" {
		t.Fatalf("identity = %+v", identity)
	}
	if !identity.Authenticated() {
		t.Fatal("identity not authenticated")
	}
}

func TestVerifyRejectsBadSignatureAndMissingSubject(t *testing.T) {
	v := newVerifier(testSecret)

	if _, err := v.Verify(signToken(t, "other-secret", jwt.MapClaims{"sub": "user-42"})); err == nil {
		t.Fatal("token signed with the wrong secret was accepted")
	}
	if _, err := v.Verify(signToken(t, testSecret, jwt.MapClaims{"email": "x@example.com"})); err == nil {
		t.Fatal("token without a subject was accepted")
	}
}

func middlewareIdentity(t *testing.T, v *Verifier, mutate func(*http.Request)) model.Identity {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware(v))

	var got model.Identity
	router.GET("/probe", func(c *gin.Context) {
		got = IdentityFrom(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	mutate(req)
	router.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestMiddlewareAuthenticated(t *testing.T) {
	v := newVerifier(testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "user-7", "exp": time.Now().Add(time.Hour).Unix()})

	identity := middlewareIdentity(t, v, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	if identity.UserID != "user-7" || identity.SessionID != "" {
		t.Fatalf("identity = %+v", identity)
	}
}

func TestMiddlewareInvalidTokenFallsBackToAnonymous(t *testing.T) {
	v := newVerifier(testSecret)

	identity := middlewareIdentity(t, v, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer not-a-token")
		r.Header.Set(SessionHeader, "session-9")
	})
	if identity.Authenticated() {
		t.Fatal("invalid token produced an authenticated identity")
	}
	if identity.SessionID != "session-9" {
		t.Fatalf("session id = %q, want the one from the header", identity.SessionID)
	}
}

func TestMiddlewareMintsSessionID(t *testing.T) {
	v := newVerifier(testSecret)

	identity := middlewareIdentity(t, v, func(*http.Request) {})
	if identity.Authenticated() || identity.SessionID == "" {
		t.Fatalf("identity = %+v, want anonymous with a fresh session id", identity)
	}
}
