package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var testSigningKey = []byte("integration-test-signing-key")

func testAuthConfig() AuthConfig {
	return AuthConfig{
		Issuer:     "https://login.example.com/contoso",
		Audience:   "api://forecast-service",
		SigningKey: testSigningKey,
	}
}

// mintToken signs an HS256 token with the given claims mutations applied
// on top of a valid issuer/audience/expiry set.
func mintToken(t *testing.T, key []byte, method jwt.SigningMethod, mutate func(jwt.MapClaims)) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss": "https://login.example.com/contoso",
		"aud": "api://forecast-service",
		"sub": "portal-client",
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	if mutate != nil {
		mutate(claims)
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return signed
}

func TestBearerAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		authHeader func(t *testing.T) string
		wantStatus int
	}{
		{
			name: "valid token",
			authHeader: func(t *testing.T) string {
				return "Bearer " + mintToken(t, testSigningKey, jwt.SigningMethodHS256, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			authHeader: func(t *testing.T) string { return "" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "non-bearer scheme",
			authHeader: func(t *testing.T) string { return "Basic dXNlcjpwYXNz" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty bearer token",
			authHeader: func(t *testing.T) string { return "Bearer " },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong signing key",
			authHeader: func(t *testing.T) string {
				return "Bearer " + mintToken(t, []byte("some-other-key"), jwt.SigningMethodHS256, nil)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong signing algorithm",
			authHeader: func(t *testing.T) string {
				return "Bearer " + mintToken(t, testSigningKey, jwt.SigningMethodHS384, nil)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong issuer",
			authHeader: func(t *testing.T) string {
				return "Bearer " + mintToken(t, testSigningKey, jwt.SigningMethodHS256, func(c jwt.MapClaims) {
					c["iss"] = "https://login.example.com/fabrikam"
				})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong audience",
			authHeader: func(t *testing.T) string {
				return "Bearer " + mintToken(t, testSigningKey, jwt.SigningMethodHS256, func(c jwt.MapClaims) {
					c["aud"] = "api://some-other-service"
				})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			authHeader: func(t *testing.T) string {
				return "Bearer " + mintToken(t, testSigningKey, jwt.SigningMethodHS256, func(c jwt.MapClaims) {
					c["exp"] = time.Now().Add(-time.Minute).Unix()
				})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "missing expiry claim",
			authHeader: func(t *testing.T) string {
				return "Bearer " + mintToken(t, testSigningKey, jwt.SigningMethodHS256, func(c jwt.MapClaims) {
					delete(c, "exp")
				})
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reachedHandler bool
			protected := BearerAuthMiddleware(testAuthConfig(), zap.NewNop())(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					reachedHandler = true
					w.WriteHeader(http.StatusOK)
				}))

			req := httptest.NewRequest("GET", "/weatherforecast", nil)
			if h := tt.authHeader(t); h != "" {
				req.Header.Set("Authorization", h)
			}
			w := httptest.NewRecorder()
			protected.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && !reachedHandler {
				t.Error("expected request to reach the protected handler")
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if reachedHandler {
					t.Error("unauthorized request must not reach the protected handler")
				}
				if got := w.Header().Get("WWW-Authenticate"); got == "" {
					t.Error("401 response should carry WWW-Authenticate")
				}
				var body struct {
					Error struct {
						Code string `json:"code"`
					} `json:"error"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("unmarshal error body: %v", err)
				}
				if body.Error.Code != "UNAUTHORIZED" {
					t.Errorf("error code = %q, want UNAUTHORIZED", body.Error.Code)
				}
			}
		})
	}
}
