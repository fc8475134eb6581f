package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/tournament-api/models"
	"github.com/Dosada05/tournament-api/services"
)

// TokenParser validates a bearer token and returns its claims.
type TokenParser interface {
	ParseAccessToken(token string) (*services.Claims, error)
}

// Authenticate attaches claims of a valid bearer token to the request.
// Requests without a usable token continue anonymously; RequireAuth and
// RequireRole decide whether that is acceptable.
func Authenticate(parser TokenParser, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := parser.ParseAccessToken(token)
			if err != nil {
				logger.DebugContext(r.Context(), "rejected bearer token", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="tournament-api"`)
	_ = WriteProblem(w, http.StatusUnauthorized, "Authentication is required to access this resource.", nil)
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole допускает запрос, если у токена есть хотя бы одна из ролей.
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				unauthorized(w)
				return
			}
			for _, role := range roles {
				if claims.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			_ = WriteProblem(w, http.StatusForbidden, "You do not have permission to perform this action.", nil)
		})
	}
}
