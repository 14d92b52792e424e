package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return raw
}

func runIdentity(t *testing.T, authorization string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me/reservations", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seenUserID string
	next := func(c echo.Context) error {
		seenUserID, _ = c.Get("user_id").(string)
		return c.NoContent(http.StatusOK)
	}
	if err := Identity(testSecret)(next)(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	return rec, seenUserID
}

func TestIdentityAcceptsValidToken(t *testing.T) {
	rec, uid := runIdentity(t, "Bearer "+signToken(t, testSecret, "user-42"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if uid != "user-42" {
		t.Errorf("user_id = %q, want user-42", uid)
	}
}

func TestIdentityRejectsMissingHeader(t *testing.T) {
	rec, _ := runIdentity(t, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestIdentityRejectsWrongSecret(t *testing.T) {
	rec, _ := runIdentity(t, "Bearer "+signToken(t, "other-secret", "user-42"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestIdentityRejectsMissingSubject(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	rec, _ := runIdentity(t, "Bearer "+raw)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
