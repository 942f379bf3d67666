package http

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/jmcallister/forecast-service/internal/observability"
)

// AuthConfig holds the token validation settings for the bearer middleware.
type AuthConfig struct {
	Issuer   string
	Audience string
	// SigningKey is the HS256 shared key tokens must be signed with.
	SigningKey []byte
}

// BearerAuthMiddleware rejects requests that do not carry a valid bearer
// token. Tokens must be HS256-signed with the configured key and carry the
// expected issuer, audience, and an expiry.
func BearerAuthMiddleware(cfg AuthConfig, logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				rejectUnauthorized(w, r, "missing bearer token")
				return
			}

			_, err := jwt.Parse(raw,
				func(t *jwt.Token) (interface{}, error) { return cfg.SigningKey, nil },
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
				jwt.WithIssuer(cfg.Issuer),
				jwt.WithAudience(cfg.Audience),
				jwt.WithExpirationRequired(),
			)
			if err != nil {
				if logger != nil {
					logger.Debug("bearer token rejected", zap.Error(err))
				}
				rejectUnauthorized(w, r, "invalid bearer token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

func rejectUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	observability.AuthRejectedTotal.Inc()
	w.Header().Set("WWW-Authenticate", `Bearer realm="forecast-service"`)
	writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", message)
}
