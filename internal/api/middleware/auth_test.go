package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

func signed(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func runAuth(t *testing.T, header string) (*httptest.ResponseRecorder, domain.Identity, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got domain.Identity
	called := false
	err := Auth("secret")(func(c echo.Context) error {
		called = true
		got, _ = IdentityFrom(c)
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, got, called, err
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := signed(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{
		"sub":         "acc-1",
		"username":    "alice",
		"role":        "Manager",
		"designation": "Lead",
		"exp":         time.Now().Add(time.Hour).Unix(),
	})

	rec, id, called, err := runAuth(t, "Bearer "+token)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := domain.Identity{AccountID: "acc-1", Username: "alice", Role: domain.RoleManager, Designation: "Lead"}
	if id != want {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestAuthMiddleware_LegacyAdminClaim(t *testing.T) {
	token := signed(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{"sub": "a", "role": "Admin"})

	_, id, _, err := runAuth(t, "Bearer "+token)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if id.Role != domain.RoleManager {
		t.Fatalf("expected Admin claim to map to Manager, got %s", id.Role)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired := signed(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{
		"sub": "a", "role": "CEO", "exp": time.Now().Add(-time.Minute).Unix(),
	})
	wrongKey := signed(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "a", "role": "CEO"})
	noSub := signed(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{"role": "CEO"})
	wrongAlg := signed(t, jwt.SigningMethodHS384, []byte("secret"), jwt.MapClaims{"sub": "a", "role": "CEO"})

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage":        "Bearer not-a-token",
		"expired":        "Bearer " + expired,
		"wrong key":      "Bearer " + wrongKey,
		"no subject":     "Bearer " + noSub,
		"wrong alg":      "Bearer " + wrongAlg,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, called, err := runAuth(t, header)
			if called {
				t.Fatal("next must not be called")
			}
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401 HTTPError, got %v", err)
			}
		})
	}
}
